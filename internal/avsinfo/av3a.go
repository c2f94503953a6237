package avsinfo

import "errors"

// AV3A elementary streams are sequences of AATF frames introduced by a
// 12-bit 0xFFF syncword aligned to a byte boundary.

var errInvalidSyncword = errors.New("avsinfo: invalid AATF syncword")

// AVSAudioInfo is the record decoded from an AATF frame header.
type AVSAudioInfo struct {
	CodecID       string
	CodingProfile string

	SamplingFrequency uint32
	Resolution        int

	// Optional, depending on the codec id / profile branch.
	NNType               string
	ChannelNumber        int
	ChannelConfiguration string
	ObjectChannelNumber  int
	HOAOrder             int
	HasHOAOrder          bool
	BitRate              uint64
}

type av3aAnalyzer struct {
	buf  []byte
	info *AVSAudioInfo
	done bool
}

const maxAudioScanBytes = 1 << 18

func newAV3AAnalyzer() *av3aAnalyzer {
	return &av3aAnalyzer{}
}

func (a *av3aAnalyzer) feed(data []byte) bool {
	if a.done {
		return true
	}
	if len(a.buf)+len(data) > maxAudioScanBytes {
		data = data[:max(0, maxAudioScanBytes-len(a.buf))]
	}
	a.buf = append(a.buf, data...)

	for i := 0; i+2 <= len(a.buf); i++ {
		if a.buf[i] != 0xFF || a.buf[i+1]&0xF0 != 0xF0 {
			continue
		}
		info, err := parseAATFFrameHeader(a.buf[i:])
		if err == ErrTruncated && len(a.buf)-i < 64 {
			// Header split across the feed boundary; retry with more data.
			a.buf = append(a.buf[:0], a.buf[i:]...)
			return false
		}
		if err != nil {
			continue
		}
		a.info = info
		a.done = true
		a.buf = nil
		return true
	}
	if len(a.buf) > 1 {
		a.buf = append(a.buf[:0], a.buf[len(a.buf)-1:]...)
	}
	return false
}

func (a *av3aAnalyzer) finish() bool {
	return a.done
}

func (a *av3aAnalyzer) result() *AVSAudioInfo {
	if !a.done {
		return nil
	}
	return a.info
}

// parseAATFFrameHeader decodes the AATF frame header at data[0], which
// must hold the 12-bit syncword.
func parseAATFFrameHeader(data []byte) (*AVSAudioInfo, error) {
	br := newBitReader(data)
	br.skipBits(12) // syncword, checked by the caller

	codecID := br.readBits(4)
	if codecID != av3aCodecLossless && codecID != av3aCodecGeneral {
		return nil, errInvalidSyncword
	}
	_ = br.readBit() // anc_data_index

	info := &AVSAudioInfo{CodecID: av3aCodecNames[codecID]}
	if codecID == av3aCodecGeneral {
		nnType := br.readBits(3)
		if name, ok := av3aNNTypeNames[nnType]; ok {
			info.NNType = name
		} else {
			info.NNType = reservedToken
		}
	}
	codingProfile := br.readBits(3)
	if name, ok := av3aProfileNames[codingProfile]; ok {
		info.CodingProfile = name
	} else {
		info.CodingProfile = reservedToken
	}

	samplingIndex := br.readBits(4)
	if codecID == av3aCodecLossless && samplingIndex == 0xF {
		info.SamplingFrequency = br.readBits(24)
	} else {
		info.SamplingFrequency = av3aSamplingFrequencies[samplingIndex]
	}
	if codecID != av3aCodecGeneral {
		_ = br.readBits(16) // raw_frame_length
	}
	br.skipBits(8) // aatf_error_check CRC

	var bitRateKbps uint32
	hasBitRate := false
	switch {
	case codecID == av3aCodecLossless:
		channels := br.readBits(4)
		if channels == 15 {
			channels = br.readBits(8)
		}
		info.ChannelNumber = int(channels)

	case codingProfile == av3aProfileBasic:
		configIndex := br.readBits(7)
		applyAV3AChannelConfig(info, configIndex)
		resolution, err := readAV3AResolution(br)
		if err != nil {
			return nil, err
		}
		info.Resolution = resolution
		bitRateKbps = av3aBitrateKbps(configIndex, br.readBits(4))
		hasBitRate = true

	case codingProfile == av3aProfileObjectMetadata:
		soundBedType := br.readBits(2)
		switch soundBedType {
		case 0:
			objects := br.readBits(7) + 1
			info.ObjectChannelNumber = int(objects)
			bitRateKbps = av3aBitrateKbps(av3aMonoConfigIndex, br.readBits(4)) * objects
			hasBitRate = true
		case 1:
			configIndex := br.readBits(7)
			applyAV3AChannelConfig(info, configIndex)
			bedKbps := av3aBitrateKbps(configIndex, br.readBits(4))
			objects := br.readBits(7) + 1
			info.ObjectChannelNumber = int(objects)
			objKbps := av3aBitrateKbps(av3aMonoConfigIndex, br.readBits(4)) * objects
			bitRateKbps = bedKbps + objKbps
			hasBitRate = true
		}
		resolution, err := readAV3AResolution(br)
		if err != nil {
			return nil, err
		}
		info.Resolution = resolution

	case codingProfile == av3aProfileFOAHOA:
		info.HOAOrder = int(br.readBits(4))
		info.HasHOAOrder = true
		resolution, err := readAV3AResolution(br)
		if err != nil {
			return nil, err
		}
		info.Resolution = resolution
		bitrateIndex := br.readBits(4)
		if info.HOAOrder >= 1 && info.HOAOrder <= 3 {
			// HOA orders 1..3 share the channel-configuration bitrate
			// grid at indices 11..13.
			bitRateKbps = av3aBitrateKbps(uint32(10+info.HOAOrder), bitrateIndex)
			hasBitRate = true
		}

	default:
		resolution, err := readAV3AResolution(br)
		if err != nil {
			return nil, err
		}
		info.Resolution = resolution
		_ = br.readBits(4) // bitrate_index, no configuration to price it
	}

	if codecID == av3aCodecLossless {
		resolution, err := readAV3AResolution(br)
		if err != nil {
			return nil, err
		}
		info.Resolution = resolution
	}

	if err := br.err(); err != nil {
		return nil, err
	}
	if info.SamplingFrequency == 0 {
		return nil, errInvalidSyncword
	}
	if hasBitRate {
		info.BitRate = uint64(bitRateKbps) * 1000
	}
	return info, nil
}

func applyAV3AChannelConfig(info *AVSAudioInfo, configIndex uint32) {
	if int(configIndex) < len(av3aChannelConfigs) {
		config := av3aChannelConfigs[configIndex]
		info.ChannelConfiguration = config.name
		info.ChannelNumber = config.channels
	} else {
		info.ChannelConfiguration = reservedToken
	}
}

func readAV3AResolution(br *bitReader) (int, error) {
	resolution := av3aResolutions[br.readBits(2)]
	if err := br.err(); err != nil {
		return 0, err
	}
	if resolution == 0 {
		return 0, errInvalidSyncword
	}
	return resolution, nil
}
