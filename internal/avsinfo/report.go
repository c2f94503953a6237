package avsinfo

type StreamKind string

const (
	StreamGeneral StreamKind = "General"
	StreamVideo   StreamKind = "Video"
	StreamAudio   StreamKind = "Audio"
	StreamText    StreamKind = "Text"
	StreamMenu    StreamKind = "Menu"
)

type Field struct {
	Name  string
	Value string
}

// Stream is one reported elementary stream or track. Fields carry the
// rendered name/value pairs; the typed records below are the parsed data
// they were rendered from, kept for programmatic callers.
type Stream struct {
	Kind StreamKind

	Fields []Field

	ProgramNumber uint16
	PID           uint16
	TrackID       uint32
	StreamType    byte
	FourCC        string
	Language      string
	Registration  string

	VideoInfo       *AVSVideoInfo
	AudioInfo       *AVSAudioInfo
	VideoDescriptor *AVSVideoDescriptor
	AudioDescriptor *AVSAudioDescriptor
}

type Report struct {
	Ref     string
	General Stream
	Streams []Stream

	// ObservedTypes lists the stream types and fourCCs seen in the
	// container. The text renderer prints them when no AVS content was
	// recognized.
	ObservedTypes []string
}

// HasAVSContent reports whether any stream yielded an AVS codec record,
// in band or from a container descriptor.
func (r Report) HasAVSContent() bool {
	for _, stream := range r.Streams {
		if stream.VideoInfo != nil || stream.AudioInfo != nil ||
			stream.VideoDescriptor != nil || stream.AudioDescriptor != nil {
			return true
		}
	}
	return false
}
