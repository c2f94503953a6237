package avsinfo

// Shared numeric tables for the AVS video family. All of these are pure
// data lifted from the normative syntax annexes; parsers treat them as
// immutable.

// frameRates is indexed by frame_rate_code. Entry 0 is forbidden; entries
// past 13 are reserved. AVS1 uses only codes 1..8.
var frameRates = [16]float64{
	0,
	24000.0 / 1001.0,
	24,
	25,
	30000.0 / 1001.0,
	30,
	50,
	60000.0 / 1001.0,
	60,
	100,
	120,
	200,
	240,
	300,
	0,
	0,
}

const avs1MaxFrameRateCode = 8

type chromaFormat uint8

const (
	chromaReserved chromaFormat = iota
	chroma420
	chroma422
	chroma444
)

func (c chromaFormat) String() string {
	switch c {
	case chroma420:
		return "4:2:0"
	case chroma422:
		return "4:2:2"
	case chroma444:
		return "4:4:4"
	default:
		return "Reserved"
	}
}

// aspectRatios maps aspect_ratio_info to (SAR, DAR). Code 1 is square
// sample with no fixed display ratio; codes 2..4 fix the display ratio.
var aspectRatios = [16]struct{ sar, dar string }{
	1: {sar: "1:1"},
	2: {dar: "4:3"},
	3: {dar: "16:9"},
	4: {dar: "2.21:1"},
}

// bitDepthFromPrecision maps sample_precision / encoding_precision to a
// bit depth; zero means reserved or forbidden.
func bitDepthFromPrecision(precision uint32) int {
	switch precision {
	case 1:
		return 8
	case 3:
		return 10
	case 5:
		return 12
	default:
		return 0
	}
}

var videoFormatNames = [8]string{
	"Component", "PAL", "NTSC", "SECAM", "MAC", "Unspecified", "", "",
}

// Colour code spaces. A value of 0 is forbidden and reported as absent;
// values past the per-codec valid range collapse to "Reserved".
var colourPrimariesNames = map[uint32]string{
	1: "BT.709",
	2: "Unspecified",
	3: "Reserved",
	4: "BT.470 System M",
	5: "BT.601 625",
	6: "BT.601 525",
	7: "SMPTE 240M",
	8: "Generic film",
	9: "BT.2020",
}

var transferCharacteristicsNames = map[uint32]string{
	1:  "BT.709",
	2:  "Unspecified",
	3:  "Reserved",
	4:  "Gamma 2.2",
	5:  "Gamma 2.8",
	6:  "BT.601",
	7:  "SMPTE 240M",
	8:  "Linear",
	9:  "Log 100:1",
	10: "Log 316:1",
	11: "PQ",
	12: "HLG",
}

var matrixCoefficientsNames = map[uint32]string{
	1: "BT.709",
	2: "Unspecified",
	3: "Reserved",
	4: "FCC",
	5: "BT.601 625",
	6: "BT.601 525",
	7: "SMPTE 240M",
	8: "BT.2020 non-constant",
	9: "BT.2020 constant",
}

const reservedToken = "Reserved"

// colourValue resolves a colour code against its name table and valid
// range: 0 yields absent, in-range yields the name, anything else yields
// the reserved token so downstream logic stays total.
func colourValue(code uint32, names map[uint32]string, max uint32) (string, bool) {
	if code == 0 {
		return "", false
	}
	if code > max {
		return reservedToken, true
	}
	if name, ok := names[code]; ok {
		return name, true
	}
	return reservedToken, true
}

// combinedColourNames names the combined description when primaries,
// transfer and matrix carry the same code.
var combinedColourNames = map[uint32]string{
	1: "BT.709",
	4: "BT.470 System M",
	5: "BT.601 625",
	6: "BT.601 525",
	7: "SMPTE 240M",
	8: "Generic film",
	9: "BT.2020",
}

// combinedColourDescription reports the single-name colour description.
// BT.709 streams conventionally signal transfer code 6 (the BT.601 curve,
// identical to BT.709's), so (1,6,1) short-circuits to BT.709.
func combinedColourDescription(primaries, transfer, matrix uint32) (string, bool) {
	if primaries == 1 && transfer == 6 && matrix == 1 {
		return "BT.709", true
	}
	if primaries == transfer && transfer == matrix {
		if name, ok := combinedColourNames[primaries]; ok {
			return name, true
		}
	}
	return "", false
}

type packingMode uint8

const (
	packingMono packingMode = iota
	packingSideBySide
	packingOverUnder
	packingQuad
	packingTemporalOverUnder
	packingTemporalSideBySide
	packingReserved
)

func (m packingMode) String() string {
	switch m {
	case packingMono:
		return "2D"
	case packingSideBySide:
		return "Side by Side"
	case packingOverUnder:
		return "Over Under"
	case packingQuad:
		return "Quadruple"
	case packingTemporalOverUnder:
		return "Temporal Over Under"
	case packingTemporalSideBySide:
		return "Temporal Side by Side"
	default:
		return reservedToken
	}
}

// packingModeFromCode maps a codec packing code onto the unified enum;
// values past limit are reserved.
func packingModeFromCode(code uint32, limit uint32) packingMode {
	if code > limit {
		return packingReserved
	}
	return packingMode(code)
}

// Default weight-quantization matrices, applied when
// weight_quant_enable_flag is 1 and load_seq_weight_quant_data_flag is 0.
var defaultWQM4x4 = [4][4]uint32{
	{64, 64, 64, 68},
	{64, 64, 68, 72},
	{64, 68, 76, 80},
	{72, 76, 84, 96},
}

var defaultWQM8x8 = [8][8]uint32{
	{64, 64, 64, 64, 68, 68, 72, 76},
	{64, 64, 64, 68, 72, 76, 84, 92},
	{64, 64, 68, 72, 76, 80, 88, 100},
	{64, 68, 72, 80, 84, 92, 100, 112},
	{68, 72, 80, 84, 92, 104, 112, 128},
	{76, 80, 84, 92, 104, 116, 132, 152},
	{96, 100, 104, 116, 124, 140, 164, 188},
	{104, 108, 116, 128, 152, 172, 192, 216},
}

// readWeightQuantMatrix consumes the optional in-stream matrices or
// returns the defaults.
func readWeightQuantMatrix(br *bitReader) (m4 [4][4]uint32, m8 [8][8]uint32, loaded bool) {
	load := br.readFlag()
	if !load {
		return defaultWQM4x4, defaultWQM8x8, false
	}
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			m4[i][j] = br.readUE()
		}
	}
	for i := 0; i < 8; i++ {
		for j := 0; j < 8; j++ {
			m8[i][j] = br.readUE()
		}
	}
	return m4, m8, true
}
