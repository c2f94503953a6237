package avsinfo

import "fmt"

// Start-code suffixes shared by the AVS video generations.
const (
	startCodeSequenceHeader = 0xB0
	startCodeIPicture       = 0xB3
	startCodeExtension      = 0xB5
	startCodePBPicture      = 0xB6
)

// Extension ids carried in the nibble after an 0xB5 start code.
const (
	extIDSequenceDisplay = 0x2
	extIDHDRDynamicMeta  = 0x5
)

type avsGeneration uint8

const (
	genAVS1 avsGeneration = iota
	genAVS2
	genAVS3
)

// AVSVideoInfo is the sequence-level record decoded from an AVS1, AVS2 or
// AVS3 elementary stream.
type AVSVideoInfo struct {
	Generation string
	ProfileID  byte
	Profile    string
	LevelID    byte
	Level      string

	Width       uint32
	Height      uint32
	Progressive bool
	Chroma      chromaFormat
	LumaDepth   int
	ChromaDepth int
	FrameRate   float64
	BitRate     uint64
	LowDelay    bool
	SAR         string
	DAR         string

	// Populated only when the sequence display extension was present.
	HasDisplayExt  bool
	VideoFormat    string
	SampleRange    string
	ColourDesc     string
	Primaries      string
	Transfer       string
	Matrix         string
	DisplayWidth   uint32
	DisplayHeight  uint32
	HasPackingMode bool
	PackingMode    packingMode

	// AVS3 HDR dynamic metadata extension.
	HDRMetadata string
}

// avsVideoAnalyzer feeds reassembled elementary-stream bytes through the
// start-code scan of §4.2/§4.3/§4.4: sequence header, then optional
// extensions, terminating at the first picture header.
type avsVideoAnalyzer struct {
	gen  avsGeneration
	buf  []byte
	next int
	info *AVSVideoInfo
	done bool
}

const maxVideoScanBytes = 1 << 20

func newAVSVideoAnalyzer(gen avsGeneration) *avsVideoAnalyzer {
	return &avsVideoAnalyzer{gen: gen}
}

// feed appends elementary-stream bytes and advances the scan. It reports
// true once the sequence-level data is complete.
func (a *avsVideoAnalyzer) feed(data []byte) bool {
	if a.done {
		return true
	}
	if len(a.buf)+len(data) > maxVideoScanBytes {
		data = data[:max(0, maxVideoScanBytes-len(a.buf))]
	}
	a.buf = append(a.buf, data...)
	a.scan()
	if a.done {
		a.buf = nil
	}
	return a.done
}

// finish accepts whatever sequence-level data was captured when the input
// ends before a picture header is seen.
func (a *avsVideoAnalyzer) finish() bool {
	if !a.done && a.info != nil {
		a.done = true
		a.buf = nil
	}
	return a.done
}

func (a *avsVideoAnalyzer) result() *AVSVideoInfo {
	if !a.done {
		return nil
	}
	return a.info
}

func (a *avsVideoAnalyzer) scan() {
	for i := a.next; i+4 <= len(a.buf); i++ {
		if a.buf[i] != 0x00 || a.buf[i+1] != 0x00 || a.buf[i+2] != 0x01 {
			continue
		}
		code := a.buf[i+3]
		payload := a.buf[i+4:]
		switch code {
		case startCodeSequenceHeader:
			info, err := a.parseSequenceHeader(payload)
			if err == ErrTruncated && len(payload) < 256 {
				// The header may straddle a PES boundary; wait for more.
				a.next = i
				return
			}
			if err == nil {
				a.info = info
			}
		case startCodeExtension:
			if a.info == nil || len(payload) == 0 {
				break
			}
			if err := a.parseExtension(payload); err == ErrTruncated && len(payload) < 64 {
				a.next = i
				return
			}
		case startCodeIPicture, startCodePBPicture:
			if a.info != nil {
				a.done = true
				a.next = i
				return
			}
		}
		a.next = i + 1
	}
	if len(a.buf) >= 3 {
		a.next = max(a.next, len(a.buf)-3)
	}
}

func (a *avsVideoAnalyzer) parseSequenceHeader(payload []byte) (*AVSVideoInfo, error) {
	switch a.gen {
	case genAVS1:
		return parseAVS1SequenceHeader(payload)
	case genAVS2:
		return parseAVS2SequenceHeader(payload)
	default:
		return parseAVS3SequenceHeader(payload)
	}
}

func (a *avsVideoAnalyzer) parseExtension(payload []byte) error {
	extID := payload[0] >> 4
	switch {
	case extID == extIDSequenceDisplay:
		switch a.gen {
		case genAVS1:
			return parseAVS1DisplayExtension(payload, a.info)
		case genAVS2:
			return parseAVS2DisplayExtension(payload, a.info)
		default:
			return parseAVS3DisplayExtension(payload, a.info)
		}
	case extID == extIDHDRDynamicMeta && a.gen == genAVS3:
		return parseAVS3HDRExtension(payload, a.info)
	}
	return nil
}

// frameRateFor looks up frame_rate_code within the generation's valid
// range.
func frameRateFor(gen avsGeneration, code uint32) float64 {
	if gen == genAVS1 && code > avs1MaxFrameRateCode {
		return 0
	}
	if int(code) >= len(frameRates) {
		return 0
	}
	return frameRates[code]
}

func unknownName(kind string, id byte) string {
	return fmt.Sprintf("Unknown %s (0x%02X)", kind, id)
}

var avs1Profiles = map[byte]string{
	0x20: "Jizhun",
	0x24: "Shenzhan",
	0x28: "Yidong",
	0x48: "Broadcasting",
}

var avs1Levels = map[byte]string{
	0x10: "2.0",
	0x20: "4.0",
	0x22: "4.2",
	0x40: "6.0",
	0x42: "6.2",
}

var avs2Profiles = map[byte]string{
	0x12: "Main Picture",
	0x20: "Main",
	0x22: "Main 10bit",
	0x30: "Multi-view",
	0x32: "Multi-view 10bit",
}

var avs3Profiles = map[byte]string{
	0x20: "Main 8bit",
	0x22: "Main 10bit",
	0x30: "High 8bit",
	0x32: "High 10bit",
}

// avs2Levels also serves AVS3; both standards use x.y.fps level names on
// the same code grid.
var avs2Levels = map[byte]string{
	0x10: "2.0.15",
	0x12: "2.0.30",
	0x14: "2.0.60",
	0x20: "4.0.30",
	0x22: "4.0.60",
	0x40: "6.0.30",
	0x42: "6.2.30",
	0x44: "6.0.60",
	0x46: "6.2.60",
	0x48: "6.0.120",
	0x4A: "6.2.120",
	0x50: "8.0.30",
	0x52: "8.2.30",
	0x54: "8.0.60",
	0x56: "8.2.60",
	0x58: "8.0.120",
	0x5A: "8.2.120",
	0x60: "10.0.30",
	0x62: "10.2.30",
	0x64: "10.0.60",
	0x66: "10.2.60",
	0x68: "10.0.120",
	0x6A: "10.2.120",
}

func profileName(gen avsGeneration, id byte) string {
	var name string
	switch gen {
	case genAVS1:
		name = avs1Profiles[id]
	case genAVS2:
		name = avs2Profiles[id]
	default:
		name = avs3Profiles[id]
	}
	if name == "" {
		return unknownName("profile", id)
	}
	return name + " profile"
}

func levelName(gen avsGeneration, id byte) string {
	var name string
	if gen == genAVS1 {
		name = avs1Levels[id]
	} else {
		name = avs2Levels[id]
	}
	if name == "" {
		return unknownName("level", id)
	}
	return name
}

// applyCommonDerivations fills the fields every generation derives the
// same way from the raw header values.
func applyCommonDerivations(info *AVSVideoInfo, aspect, frameRateCode, bitRateLower, bitRateUpper, precision uint32, gen avsGeneration) {
	info.SAR = aspectRatios[aspect&0x0F].sar
	info.DAR = aspectRatios[aspect&0x0F].dar
	info.FrameRate = frameRateFor(gen, frameRateCode)
	// The 18-bit lower and 12-bit upper halves combine in 30 bits; widen
	// before the x400 scale.
	info.BitRate = uint64(bitRateUpper<<18|bitRateLower) * 400
	depth := bitDepthFromPrecision(precision)
	info.LumaDepth = depth
	info.ChromaDepth = depth
}

// applyDisplayColour resolves the three colour codes against the
// generation's valid ranges and derives the combined description.
func applyDisplayColour(info *AVSVideoInfo, primaries, transfer, matrix uint32, maxP, maxT, maxM uint32) {
	pName, pOK := colourValue(primaries, colourPrimariesNames, maxP)
	tName, tOK := colourValue(transfer, transferCharacteristicsNames, maxT)
	mName, mOK := colourValue(matrix, matrixCoefficientsNames, maxM)
	if pOK {
		info.Primaries = pName
	}
	if tOK {
		info.Transfer = tName
	}
	if mOK {
		info.Matrix = mName
	}
	if pOK && tOK && mOK && pName != reservedToken && tName != reservedToken && mName != reservedToken {
		if name, ok := combinedColourDescription(primaries, transfer, matrix); ok {
			info.ColourDesc = name
		}
	}
}

func sampleRangeName(full bool) string {
	if full {
		return "Full"
	}
	return "Limited"
}
