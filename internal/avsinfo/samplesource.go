package avsinfo

// SampleSource abstracts an external demuxer: it yields one compressed
// sample per track of interest, tagged by its codec fourCC. The scanner
// only interprets the AVS tags; anything else is reported as observed.
type SampleSource interface {
	// NextSample returns the next (track id, codec tag, sample bytes)
	// triple, or ok=false when the source is exhausted.
	NextSample() (trackID uint32, codecTag string, sample []byte, ok bool)
}

// AnalyzeSamples drives the codec parsers over an abstract sample
// source. The first sample seen for each track is the one analyzed.
func AnalyzeSamples(source SampleSource) ([]Stream, []string) {
	var streams []Stream
	var observed []string
	seen := map[uint32]bool{}
	for {
		trackID, codecTag, sample, ok := source.NextSample()
		if !ok {
			break
		}
		if seen[trackID] {
			continue
		}
		seen[trackID] = true
		observed = append(observed, codecTag)

		avsKind, ok := avsFourCCs[codecTag]
		if !ok {
			continue
		}
		track := &bmffTrack{id: trackID, fourCC: codecTag, avsKind: avsKind}
		if avsKind.isVideo() {
			track.kind = StreamVideo
			analyzer := newAVSVideoAnalyzer(avsKind.generation())
			analyzer.feed(sample)
			if analyzer.finish() {
				track.videoInfo = analyzer.result()
			}
		} else {
			track.kind = StreamAudio
			analyzer := newAV3AAnalyzer()
			analyzer.feed(sample)
			if analyzer.finish() {
				track.audioInfo = analyzer.result()
			}
		}
		switch avsKind {
		case codecAVS2:
			track.format = "AVS2 Video"
		case codecAVS3Video:
			track.format = "AVS3 Video"
		default:
			track.format = "Audio Vivid"
		}
		streams = append(streams, buildBMFFStream(track))
	}
	return streams, observed
}

// AnalyzeRawES parses a bare elementary stream of a known codec kind.
func AnalyzeRawES(data []byte, kind codecKind) (Stream, bool) {
	stream := Stream{}
	switch {
	case kind.isVideo():
		analyzer := newAVSVideoAnalyzer(kind.generation())
		analyzer.feed(data)
		if !analyzer.finish() {
			return stream, false
		}
		info := analyzer.result()
		stream.Kind = StreamVideo
		stream.VideoInfo = info
		stream.Fields = append([]Field{{Name: "Format", Value: info.Generation}}, videoInfoFields(info)...)
	case kind == codecAV3AAudio:
		analyzer := newAV3AAnalyzer()
		analyzer.feed(data)
		if !analyzer.finish() {
			return stream, false
		}
		info := analyzer.result()
		stream.Kind = StreamAudio
		stream.AudioInfo = info
		stream.Fields = append([]Field{{Name: "Format", Value: "Audio Vivid"}}, audioInfoFields(info)...)
	default:
		return stream, false
	}
	return stream, true
}
