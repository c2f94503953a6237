package avsinfo

import (
	"encoding/binary"
	"io"
)

// ISO BMFF scanning: enumerate moov tracks, recognize the AVS sample
// entries and extract the first compressed sample of each for the
// bitstream parsers.

const (
	maxMoovSize   = int64(16 << 20)
	maxSampleSize = int64(8 << 20)
)

// avsFourCCs maps the registered AVS sample-entry types. The track kind
// is forced from the fourCC, regardless of the container's handler.
var avsFourCCs = map[string]codecKind{
	"avst": codecAVS2,
	"avs3": codecAVS3Video,
	"av3a": codecAV3AAudio,
}

// genericFourCCs labels the non-AVS tracks the scanner reports but does
// not parse.
var genericFourCCs = map[string]struct {
	kind   StreamKind
	format string
}{
	"avc1": {StreamVideo, "AVC"},
	"avc3": {StreamVideo, "AVC"},
	"hvc1": {StreamVideo, "HEVC"},
	"hev1": {StreamVideo, "HEVC"},
	"av01": {StreamVideo, "AV1"},
	"vp09": {StreamVideo, "VP9"},
	"mp4v": {StreamVideo, "MPEG-4 Visual"},
	"mp4a": {StreamAudio, "AAC"},
	"ac-3": {StreamAudio, "AC-3"},
	"ec-3": {StreamAudio, "E-AC-3"},
	"dtsc": {StreamAudio, "DTS"},
	"fLaC": {StreamAudio, "FLAC"},
	"Opus": {StreamAudio, "Opus"},
	"tx3g": {StreamText, "Timed Text"},
}

type bmffTrack struct {
	id      uint32
	fourCC  string
	kind    StreamKind
	format  string
	avsKind codecKind

	sampleSizes  []uint32
	chunkOffsets []uint64
	sampleChunks []stscEntry
	firstSync    uint32

	videoInfo *AVSVideoInfo
	audioInfo *AVSAudioInfo
}

type stscEntry struct {
	firstChunk       uint32
	samplesPerChunk  uint32
	descriptionIndex uint32
}

// ParseBMFF walks the file's top-level boxes, parses moov and analyzes
// the first sample of every AVS track.
func ParseBMFF(r io.ReaderAt, size int64) ([]Stream, []Field, []string, bool) {
	var tracks []*bmffTrack
	var offset int64
	for offset+8 <= size {
		boxSize, boxType, headerSize, ok := readBoxHeader(r, offset, size)
		if !ok || boxSize <= 0 {
			break
		}
		if boxType == "moov" {
			moovSize := boxSize - headerSize
			if moovSize > maxMoovSize {
				return nil, nil, nil, false
			}
			buf := make([]byte, moovSize)
			if _, err := r.ReadAt(buf, offset+headerSize); err != nil && err != io.EOF {
				return nil, nil, nil, false
			}
			tracks = parseMoovTracks(buf)
		}
		offset += boxSize
	}
	if len(tracks) == 0 {
		return nil, nil, nil, false
	}

	var streams []Stream
	var observed []string
	for _, track := range tracks {
		observed = append(observed, track.fourCC)
		if track.avsKind != codecNone {
			analyzeBMFFTrack(r, track)
		}
		if track.kind == "" {
			continue
		}
		streams = append(streams, buildBMFFStream(track))
	}
	general := []Field{{Name: "Format", Value: "MPEG-4"}}
	return streams, general, observed, true
}

func readBoxHeader(r io.ReaderAt, offset, fileSize int64) (boxSize int64, boxType string, headerSize int64, ok bool) {
	header := make([]byte, 8)
	if _, err := r.ReadAt(header, offset); err != nil {
		return 0, "", 0, false
	}
	size32 := binary.BigEndian.Uint32(header[0:4])
	boxType = string(header[4:8])
	switch {
	case size32 == 0:
		return fileSize - offset, boxType, 8, true
	case size32 == 1:
		larger := make([]byte, 8)
		if _, err := r.ReadAt(larger, offset+8); err != nil {
			return 0, "", 0, false
		}
		size64 := binary.BigEndian.Uint64(larger)
		if size64 < 16 {
			return 0, "", 0, false
		}
		return int64(size64), boxType, 16, true
	case size32 < 8:
		return 0, "", 0, false
	default:
		return int64(size32), boxType, 8, true
	}
}

func readBoxHeaderFrom(buf []byte, offset int64) (boxSize int64, boxType string, headerSize int64) {
	if offset+8 > int64(len(buf)) {
		return 0, "", 0
	}
	size32 := binary.BigEndian.Uint32(buf[offset : offset+4])
	boxType = string(buf[offset+4 : offset+8])
	switch {
	case size32 == 0:
		return int64(len(buf)) - offset, boxType, 8
	case size32 == 1:
		if offset+16 > int64(len(buf)) {
			return 0, "", 0
		}
		return int64(binary.BigEndian.Uint64(buf[offset+8 : offset+16])), boxType, 16
	default:
		return int64(size32), boxType, 8
	}
}

func sliceBox(buf []byte, offset, length int64) []byte {
	if offset < 0 || length < 0 {
		return nil
	}
	end := offset + length
	if end > int64(len(buf)) {
		end = int64(len(buf))
	}
	if offset > end {
		return nil
	}
	return buf[offset:end]
}

func parseMoovTracks(buf []byte) []*bmffTrack {
	var tracks []*bmffTrack
	walkBoxes(buf, func(boxType string, payload []byte) {
		if boxType != "trak" {
			return
		}
		if track := parseTrak(payload); track != nil {
			tracks = append(tracks, track)
		}
	})
	return tracks
}

func walkBoxes(buf []byte, fn func(boxType string, payload []byte)) {
	var offset int64
	for offset+8 <= int64(len(buf)) {
		boxSize, boxType, headerSize := readBoxHeaderFrom(buf, offset)
		if boxSize <= 0 {
			return
		}
		fn(boxType, sliceBox(buf, offset+headerSize, boxSize-headerSize))
		offset += boxSize
	}
}

func parseTrak(buf []byte) *bmffTrack {
	track := &bmffTrack{firstSync: 1}
	walkBoxes(buf, func(boxType string, payload []byte) {
		switch boxType {
		case "tkhd":
			track.id = parseTkhdTrackID(payload)
		case "mdia":
			walkBoxes(payload, func(boxType string, payload []byte) {
				if boxType != "minf" {
					return
				}
				walkBoxes(payload, func(boxType string, payload []byte) {
					if boxType != "stbl" {
						return
					}
					parseStbl(payload, track)
				})
			})
		}
	})
	if track.fourCC == "" {
		return nil
	}
	if avsKind, ok := avsFourCCs[track.fourCC]; ok {
		track.avsKind = avsKind
		// The fourCC is authoritative: avst/avs3 are video, av3a is
		// audio, whatever the handler claims.
		if avsKind.isVideo() {
			track.kind = StreamVideo
		} else {
			track.kind = StreamAudio
		}
		switch avsKind {
		case codecAVS2:
			track.format = "AVS2 Video"
		case codecAVS3Video:
			track.format = "AVS3 Video"
		default:
			track.format = "Audio Vivid"
		}
	} else if known, ok := genericFourCCs[track.fourCC]; ok {
		track.kind = known.kind
		track.format = known.format
	}
	return track
}

func parseTkhdTrackID(payload []byte) uint32 {
	if len(payload) < 4 {
		return 0
	}
	version := payload[0]
	if version == 1 {
		if len(payload) < 24 {
			return 0
		}
		return binary.BigEndian.Uint32(payload[20:24])
	}
	if len(payload) < 16 {
		return 0
	}
	return binary.BigEndian.Uint32(payload[12:16])
}

func parseStbl(buf []byte, track *bmffTrack) {
	walkBoxes(buf, func(boxType string, payload []byte) {
		switch boxType {
		case "stsd":
			if len(payload) >= 16 {
				// First sample entry: 8 bytes version/flags/count, then
				// a box whose type is the codec fourCC.
				track.fourCC = string(payload[12:16])
			}
		case "stsz":
			track.sampleSizes = parseStsz(payload)
		case "stsc":
			track.sampleChunks = parseStsc(payload)
		case "stco":
			track.chunkOffsets = parseStco(payload, false)
		case "co64":
			track.chunkOffsets = parseStco(payload, true)
		case "stss":
			if len(payload) >= 12 {
				track.firstSync = binary.BigEndian.Uint32(payload[8:12])
			}
		}
	})
}

func parseStsz(payload []byte) []uint32 {
	if len(payload) < 12 {
		return nil
	}
	uniform := binary.BigEndian.Uint32(payload[4:8])
	count := binary.BigEndian.Uint32(payload[8:12])
	if count == 0 || count > 1<<22 {
		return nil
	}
	if uniform != 0 {
		sizes := make([]uint32, count)
		for i := range sizes {
			sizes[i] = uniform
		}
		return sizes
	}
	if len(payload) < 12+int(count)*4 {
		return nil
	}
	sizes := make([]uint32, count)
	for i := range sizes {
		sizes[i] = binary.BigEndian.Uint32(payload[12+i*4 : 16+i*4])
	}
	return sizes
}

func parseStsc(payload []byte) []stscEntry {
	if len(payload) < 8 {
		return nil
	}
	count := binary.BigEndian.Uint32(payload[4:8])
	if len(payload) < 8+int(count)*12 {
		return nil
	}
	entries := make([]stscEntry, count)
	for i := range entries {
		base := 8 + i*12
		entries[i] = stscEntry{
			firstChunk:       binary.BigEndian.Uint32(payload[base : base+4]),
			samplesPerChunk:  binary.BigEndian.Uint32(payload[base+4 : base+8]),
			descriptionIndex: binary.BigEndian.Uint32(payload[base+8 : base+12]),
		}
	}
	return entries
}

func parseStco(payload []byte, large bool) []uint64 {
	if len(payload) < 8 {
		return nil
	}
	count := binary.BigEndian.Uint32(payload[4:8])
	entrySize := 4
	if large {
		entrySize = 8
	}
	if len(payload) < 8+int(count)*entrySize {
		return nil
	}
	offsets := make([]uint64, count)
	for i := range offsets {
		base := 8 + i*entrySize
		if large {
			offsets[i] = binary.BigEndian.Uint64(payload[base : base+8])
		} else {
			offsets[i] = uint64(binary.BigEndian.Uint32(payload[base : base+4]))
		}
	}
	return offsets
}

// sampleLocation resolves the file offset and size of a 1-based sample
// number from the chunk tables.
func (t *bmffTrack) sampleLocation(sample uint32) (offset uint64, size int64, ok bool) {
	if sample == 0 || int(sample) > len(t.sampleSizes) ||
		len(t.sampleChunks) == 0 || len(t.chunkOffsets) == 0 {
		return 0, 0, false
	}
	// Walk the sample-to-chunk runs until the run holding the sample.
	var firstSampleOfChunk uint32 = 1
	for i, entry := range t.sampleChunks {
		lastChunk := uint32(len(t.chunkOffsets))
		if i+1 < len(t.sampleChunks) {
			lastChunk = t.sampleChunks[i+1].firstChunk - 1
		}
		if entry.samplesPerChunk == 0 || entry.firstChunk == 0 || lastChunk < entry.firstChunk {
			return 0, 0, false
		}
		runChunks := lastChunk - entry.firstChunk + 1
		runSamples := runChunks * entry.samplesPerChunk
		if sample < firstSampleOfChunk+runSamples {
			indexInRun := sample - firstSampleOfChunk
			chunk := entry.firstChunk + indexInRun/entry.samplesPerChunk
			if int(chunk) > len(t.chunkOffsets) {
				return 0, 0, false
			}
			offset = t.chunkOffsets[chunk-1]
			firstInChunk := sample - indexInRun%entry.samplesPerChunk
			for s := firstInChunk; s < sample; s++ {
				offset += uint64(t.sampleSizes[s-1])
			}
			return offset, int64(t.sampleSizes[sample-1]), true
		}
		firstSampleOfChunk += runSamples
	}
	return 0, 0, false
}

// analyzeBMFFTrack extracts the track's first sample (the first sync
// sample when stss is present) and runs the matching codec parser.
func analyzeBMFFTrack(r io.ReaderAt, track *bmffTrack) {
	sample := track.firstSync
	offset, size, ok := track.sampleLocation(sample)
	if !ok && sample != 1 {
		offset, size, ok = track.sampleLocation(1)
	}
	if !ok || size <= 0 || size > maxSampleSize {
		return
	}
	buf := make([]byte, size)
	if _, err := r.ReadAt(buf, int64(offset)); err != nil && err != io.EOF {
		return
	}

	if track.avsKind.isVideo() {
		analyzer := newAVSVideoAnalyzer(track.avsKind.generation())
		analyzer.feed(buf)
		if analyzer.finish() {
			track.videoInfo = analyzer.result()
		}
	} else {
		analyzer := newAV3AAnalyzer()
		analyzer.feed(buf)
		if analyzer.finish() {
			track.audioInfo = analyzer.result()
		}
	}
}

func buildBMFFStream(track *bmffTrack) Stream {
	stream := Stream{
		Kind:      track.kind,
		TrackID:   track.id,
		FourCC:    track.fourCC,
		VideoInfo: track.videoInfo,
		AudioInfo: track.audioInfo,
	}
	fields := []Field{}
	if track.id > 0 {
		fields = appendField(fields, "ID", formatID(uint64(track.id)))
	}
	format := track.format
	if track.videoInfo != nil {
		format = track.videoInfo.Generation
	}
	fields = appendField(fields, "Format", format)
	if track.videoInfo != nil {
		fields = append(fields, videoInfoFields(track.videoInfo)...)
	}
	if track.audioInfo != nil {
		fields = append(fields, audioInfoFields(track.audioInfo)...)
	}
	fields = appendField(fields, "Codec ID", track.fourCC)
	stream.Fields = fields
	return stream
}
