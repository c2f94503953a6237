package avsinfo

// Audio Vivid (AV3A, T/AI 109.3 / GY/T 363) constant tables.

const (
	av3aCodecLossless = 1
	av3aCodecGeneral  = 2
)

var av3aCodecNames = map[uint32]string{
	av3aCodecLossless: "Lossless",
	av3aCodecGeneral:  "General",
}

const (
	av3aProfileBasic          = 0
	av3aProfileObjectMetadata = 1
	av3aProfileFOAHOA         = 2
)

var av3aProfileNames = map[uint32]string{
	av3aProfileBasic:          "Basic",
	av3aProfileObjectMetadata: "Object metadata",
	av3aProfileFOAHOA:         "HOA",
}

var av3aNNTypeNames = map[uint32]string{
	0: "Basic neural network",
	1: "Low-complexity neural network",
}

// av3aSamplingFrequencies is indexed by sampling_frequency_index; index
// 0xF escapes to an explicit 24-bit frequency (lossless only).
var av3aSamplingFrequencies = [16]uint32{
	192000, 96000, 48000, 44100, 32000, 24000, 22050, 16000, 8000,
}

// av3aResolutions is indexed by the 2-bit resolution field.
var av3aResolutions = [4]int{8, 16, 24, 0}

type av3aChannelConfig struct {
	name     string
	channels int
}

// av3aChannelConfigs is indexed by channel_number_index.
var av3aChannelConfigs = []av3aChannelConfig{
	{"Mono", 1},
	{"Stereo", 2},
	{"5.1", 6},
	{"7.1", 8},
	{"10.2", 12},
	{"22.2", 24},
	{"4.0", 4},
	{"5.1.2", 8},
	{"5.1.4", 10},
	{"7.1.2", 10},
	{"7.1.4", 12},
	{"First-order HOA", 4},
	{"Second-order HOA", 9},
	{"Third-order HOA", 16},
}

// av3aBitrates maps channel_number_index to the per-configuration bitrate
// table in kbps, indexed by bitrate_index. Object channels are priced by
// the mono table.
var av3aBitrates = [][]uint32{
	{16, 32, 44, 56, 64, 72, 80, 96, 128, 144, 164, 192},
	{24, 32, 48, 64, 80, 96, 128, 144, 192, 256, 320},
	{192, 256, 320, 384, 448, 512, 640, 720, 144, 96, 128, 160},
	{192, 480, 256, 384, 576, 640, 128, 160},
	nil,
	nil,
	{48, 96, 128, 192, 256},
	{152, 320, 480, 576},
	{176, 384, 576, 704, 256, 448},
	{216, 480, 576, 384, 768},
	{240, 608, 384, 512, 832},
	{48, 96, 128, 192, 256},
	{192, 256, 320, 384, 480, 512, 640},
	{256, 320, 384, 512, 640, 896},
}

func av3aBitrateKbps(configIndex, bitrateIndex uint32) uint32 {
	if int(configIndex) >= len(av3aBitrates) {
		return 0
	}
	table := av3aBitrates[configIndex]
	if int(bitrateIndex) >= len(table) {
		return 0
	}
	return table[bitrateIndex]
}

const av3aMonoConfigIndex = 0
