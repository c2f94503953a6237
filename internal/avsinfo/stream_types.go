package avsinfo

// AVS stream types registered for MPEG-TS program maps.
const (
	streamTypeAVS1Video = 0x42
	streamTypeAVS2Video = 0xD2
	streamTypeAVS3Video = 0xD4
	streamTypeAVS3Audio = 0xD5
)

type codecKind uint8

const (
	codecNone codecKind = iota
	codecAVS1
	codecAVS2
	codecAVS3Video
	codecAV3AAudio
)

func (k codecKind) isVideo() bool {
	return k == codecAVS1 || k == codecAVS2 || k == codecAVS3Video
}

func (k codecKind) generation() avsGeneration {
	switch k {
	case codecAVS1:
		return genAVS1
	case codecAVS2:
		return genAVS2
	default:
		return genAVS3
	}
}

// avsKindFromStreamType derives the AVS codec kind from a PMT stream
// type.
func avsKindFromStreamType(streamType byte) codecKind {
	switch streamType {
	case streamTypeAVS1Video:
		return codecAVS1
	case streamTypeAVS2Video:
		return codecAVS2
	case streamTypeAVS3Video:
		return codecAVS3Video
	case streamTypeAVS3Audio:
		return codecAV3AAudio
	default:
		return codecNone
	}
}

// mapStreamType labels a PMT stream type with its kind and format name.
// Unknown types yield an empty kind and are reported only as observed
// types.
func mapStreamType(streamType byte) (StreamKind, string) {
	switch streamType {
	case 0x01:
		return StreamVideo, "MPEG-1 Video"
	case 0x02:
		return StreamVideo, "MPEG Video"
	case 0x03, 0x04:
		return StreamAudio, "MPEG Audio"
	case 0x0F, 0x11:
		return StreamAudio, "AAC"
	case 0x10:
		return StreamVideo, "MPEG-4 Visual"
	case 0x1B:
		return StreamVideo, "AVC"
	case 0x24:
		return StreamVideo, "HEVC"
	case 0x42:
		return StreamVideo, "AVS Video"
	case 0x06:
		return StreamText, "Private"
	case 0x80:
		return StreamAudio, "LPCM"
	case 0x81:
		return StreamAudio, "AC-3"
	case 0x82:
		return StreamAudio, "DTS"
	case 0x83:
		return StreamAudio, "TrueHD"
	case 0x84, 0x87, 0xA1:
		return StreamAudio, "E-AC-3"
	case 0x85:
		return StreamAudio, "DTS-HD High Resolution"
	case 0x86:
		return StreamAudio, "DTS-HD Master Audio"
	case 0xA2:
		return StreamAudio, "DTS Express"
	case 0x90:
		return StreamText, "PGS"
	case 0x92:
		return StreamText, "Blu-ray Text"
	case 0xD1:
		return StreamVideo, "Dirac"
	case 0xD2:
		return StreamVideo, "AVS2 Video"
	case 0xD4:
		return StreamVideo, "AVS3 Video"
	case 0xD5:
		return StreamAudio, "Audio Vivid"
	case 0xEA:
		return StreamVideo, "VC-1"
	default:
		return "", ""
	}
}
