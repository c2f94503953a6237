package avsinfo

// PMT elementary-stream descriptor parsing.

const (
	descriptorTagRegistration   = 0x05
	descriptorTagISO639         = 0x0A
	descriptorTagMaximumBitrate = 0x0E
	descriptorTagAVS1Video      = 0x3F
	descriptorTagAVS2Video      = 0x40
	descriptorTagAVS3Video      = 0xD1
	descriptorTagAVS3Audio      = 0xD2
)

// AVSVideoDescriptor is the container-side AVS video signaling carried in
// the PMT. It is smaller than the in-band sequence header and may coexist
// with it for the same elementary stream.
type AVSVideoDescriptor struct {
	Generation string
	ProfileID  byte
	Profile    string
	LevelID    byte
	Level      string

	MultipleFrameRate bool
	FrameRateCode     uint8
	FrameRate         float64
	AVSStillPresent   bool
	Chroma            chromaFormat
	SamplePrecision   uint8
	LumaDepth         int

	// AVS3 additions.
	TemporalIDFlag       bool
	TDModeFlag           bool
	LibraryStreamFlag    bool
	LibraryPictureEnable bool
	Primaries            string
	Transfer             string
	Matrix               string
}

// AVSAudioDescriptor is the container-side Audio Vivid signaling.
type AVSAudioDescriptor struct {
	CodecID           string
	SamplingFrequency uint32
	ContentType       string

	ChannelConfiguration string
	ChannelNumber        int
	ObjectChannelNumber  int
	HOAOrder             int
	HasHOAOrder          bool

	TotalBitrate uint64
	Resolution   int
}

// esDescriptors aggregates everything recognized in one elementary
// stream's descriptor block.
type esDescriptors struct {
	language        string
	registration    string
	maxBitrate      uint64
	codecName       string
	codecKindHint   StreamKind
	videoDescriptor *AVSVideoDescriptor
	audioDescriptor *AVSAudioDescriptor
}

// descriptorNames labels well-known descriptor tags with the codec or
// service they announce; used to identify streams muxed under private
// stream types.
var descriptorNames = map[byte]struct {
	name string
	kind StreamKind
}{
	0x28: {"AVC", StreamVideo},
	0x2B: {"AAC", StreamAudio},
	0x38: {"HEVC", StreamVideo},
	0x56: {"Teletext", StreamText},
	0x59: {"DVB Subtitle", StreamText},
	0x6A: {"AC-3", StreamAudio},
	0x7A: {"E-AC-3", StreamAudio},
	0x7B: {"DTS", StreamAudio},
	0x7C: {"AAC", StreamAudio},
	0x81: {"AC-3", StreamAudio},
	0x86: {"Caption Service", StreamText},
}

// parseESDescriptors walks one es_info descriptor block.
func parseESDescriptors(buf []byte, streamType byte) esDescriptors {
	var out esDescriptors
	pos := 0
	for pos+2 <= len(buf) {
		tag := buf[pos]
		length := int(buf[pos+1])
		dataStart := pos + 2
		dataEnd := dataStart + length
		if dataEnd > len(buf) {
			break
		}
		data := buf[dataStart:dataEnd]

		switch tag {
		case descriptorTagRegistration:
			if len(data) >= 4 {
				out.registration = string(data[:4])
			}
		case descriptorTagISO639:
			if len(data) >= 3 {
				out.language = string(data[:3])
			}
		case descriptorTagMaximumBitrate:
			if len(data) >= 3 {
				value := uint32(data[0]&0x3F)<<16 | uint32(data[1])<<8 | uint32(data[2])
				out.maxBitrate = uint64(value) * 400
			}
		case descriptorTagAVS1Video:
			if streamType == streamTypeAVS1Video {
				out.videoDescriptor = parseAVSVideoDescriptor(data, genAVS1)
			}
		case descriptorTagAVS2Video:
			if streamType == streamTypeAVS2Video {
				out.videoDescriptor = parseAVSVideoDescriptor(data, genAVS2)
			}
		case descriptorTagAVS3Video:
			if streamType == streamTypeAVS3Video {
				out.videoDescriptor = parseAVS3VideoDescriptor(data)
			}
		case descriptorTagAVS3Audio:
			if streamType == streamTypeAVS3Audio {
				out.audioDescriptor = parseAVS3AudioDescriptor(data)
			}
		default:
			if known, ok := descriptorNames[tag]; ok {
				out.codecName = known.name
				out.codecKindHint = known.kind
			}
		}
		pos = dataEnd
	}
	return out
}

// parseAVSVideoDescriptor decodes the AVS1/AVS2 video descriptor; the two
// share a layout and differ only in their profile/level code spaces.
func parseAVSVideoDescriptor(data []byte, gen avsGeneration) *AVSVideoDescriptor {
	if len(data) < 4 {
		return nil
	}
	br := newBitReader(data)
	desc := &AVSVideoDescriptor{}
	desc.ProfileID = byte(br.readBits(8))
	desc.LevelID = byte(br.readBits(8))
	desc.MultipleFrameRate = br.readFlag()
	desc.FrameRateCode = uint8(br.readBits(4))
	desc.AVSStillPresent = br.readFlag()
	desc.Chroma = chromaFormat(br.readBits(2))
	desc.SamplePrecision = uint8(br.readBits(3))
	br.skipBits(5)
	if br.err() != nil {
		return nil
	}

	if gen == genAVS1 {
		if desc.ProfileID == avs1ProfileBroadcasting {
			desc.Generation = "AVS+"
		} else {
			desc.Generation = "AVS"
		}
	} else {
		desc.Generation = "AVS2"
	}
	desc.Profile = profileName(gen, desc.ProfileID)
	desc.Level = levelName(gen, desc.LevelID)
	desc.FrameRate = frameRateFor(gen, uint32(desc.FrameRateCode))
	desc.LumaDepth = bitDepthFromPrecision(uint32(desc.SamplePrecision))
	return desc
}

func parseAVS3VideoDescriptor(data []byte) *AVSVideoDescriptor {
	if len(data) < 7 {
		return nil
	}
	br := newBitReader(data)
	desc := &AVSVideoDescriptor{Generation: "AVS3"}
	desc.ProfileID = byte(br.readBits(8))
	desc.LevelID = byte(br.readBits(8))
	desc.MultipleFrameRate = br.readFlag()
	desc.FrameRateCode = uint8(br.readBits(4))
	desc.SamplePrecision = uint8(br.readBits(3))
	desc.Chroma = chromaFormat(br.readBits(2))
	desc.TemporalIDFlag = br.readFlag()
	desc.TDModeFlag = br.readFlag()
	desc.LibraryStreamFlag = br.readFlag()
	desc.LibraryPictureEnable = br.readFlag()
	br.skipBits(2)
	primaries := br.readBits(8)
	transfer := br.readBits(8)
	matrix := br.readBits(8)
	if br.err() != nil {
		return nil
	}

	// The descriptor only registers 4:2:0; anything else is reserved.
	if desc.Chroma != chroma420 {
		desc.Chroma = chromaReserved
	}
	desc.Profile = profileName(genAVS3, desc.ProfileID)
	desc.Level = levelName(genAVS3, desc.LevelID)
	desc.FrameRate = frameRateFor(genAVS3, uint32(desc.FrameRateCode))
	desc.LumaDepth = bitDepthFromPrecision(uint32(desc.SamplePrecision))
	if name, ok := colourValue(primaries, colourPrimariesNames, 9); ok {
		desc.Primaries = name
	}
	if name, ok := colourValue(transfer, transferCharacteristicsNames, 12); ok {
		desc.Transfer = name
	}
	if name, ok := colourValue(matrix, matrixCoefficientsNames, 9); ok {
		desc.Matrix = name
	}
	return desc
}

const (
	av3aContentChannel       = 0
	av3aContentObject        = 1
	av3aContentChannelObject = 2
	av3aContentHOA           = 3
)

func parseAVS3AudioDescriptor(data []byte) *AVSAudioDescriptor {
	if len(data) < 3 {
		return nil
	}
	br := newBitReader(data)
	desc := &AVSAudioDescriptor{}
	codecID := br.readBits(4)
	if name, ok := av3aCodecNames[codecID]; ok {
		desc.CodecID = name
	} else {
		desc.CodecID = reservedToken
	}
	samplingIndex := br.readBits(4)
	if samplingIndex == 0xF {
		desc.SamplingFrequency = br.readBits(24)
	} else {
		desc.SamplingFrequency = av3aSamplingFrequencies[samplingIndex]
	}

	contentType := br.readBits(4)
	switch contentType {
	case av3aContentChannel:
		desc.ContentType = "Channel"
		applyDescriptorChannelConfig(desc, br.readBits(7))
		br.skipBits(1)
	case av3aContentObject:
		desc.ContentType = "Object"
		desc.ObjectChannelNumber = int(br.readBits(7)) + 1
		br.skipBits(1)
	case av3aContentChannelObject:
		desc.ContentType = "Channel + Object"
		applyDescriptorChannelConfig(desc, br.readBits(7))
		br.skipBits(1)
		desc.ObjectChannelNumber = int(br.readBits(7)) + 1
		br.skipBits(1)
	case av3aContentHOA:
		desc.ContentType = "HOA"
		desc.HOAOrder = int(br.readBits(4))
		desc.HasHOAOrder = true
		br.skipBits(4)
	}

	desc.TotalBitrate = uint64(br.readBits(16)) * 1000
	resolution := av3aResolutions[br.readBits(2)]
	if br.err() != nil {
		return nil
	}
	desc.Resolution = resolution
	return desc
}

func applyDescriptorChannelConfig(desc *AVSAudioDescriptor, configIndex uint32) {
	if int(configIndex) < len(av3aChannelConfigs) {
		config := av3aChannelConfigs[configIndex]
		desc.ChannelConfiguration = config.name
		desc.ChannelNumber = config.channels
	} else {
		desc.ChannelConfiguration = reservedToken
	}
}
