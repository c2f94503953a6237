package avsinfo

import "testing"

type aatfParams struct {
	codecID       uint32
	nnType        uint32
	profile       uint32
	samplingIndex uint32
	samplingFreq  uint32 // explicit, when samplingIndex == 0xF
	channelIndex  uint32
	channelEscape uint32 // lossless escape count, when channelIndex == 15
	soundBedType  uint32
	objects       uint32 // coded value, objects-1
	bedBitrate    uint32
	objBitrate    uint32
	hoaOrder      uint32
	resolution    uint32
	bitrateIndex  uint32
}

func buildAATFFrame(p aatfParams) []byte {
	sink := &bitSink{}
	sink.writeBits(0xFFF, 12)
	sink.writeBits(p.codecID, 4)
	sink.writeBits(0, 1) // anc_data_index
	if p.codecID == av3aCodecGeneral {
		sink.writeBits(p.nnType, 3)
	}
	sink.writeBits(p.profile, 3)
	sink.writeBits(p.samplingIndex, 4)
	if p.codecID == av3aCodecLossless && p.samplingIndex == 0xF {
		sink.writeBits(p.samplingFreq, 24)
	}
	if p.codecID != av3aCodecGeneral {
		sink.writeBits(512, 16) // raw_frame_length
	}
	sink.writeBits(0xA5, 8) // aatf_error_check

	switch {
	case p.codecID == av3aCodecLossless:
		sink.writeBits(p.channelIndex, 4)
		if p.channelIndex == 15 {
			sink.writeBits(p.channelEscape, 8)
		}
	case p.profile == av3aProfileBasic:
		sink.writeBits(p.channelIndex, 7)
		sink.writeBits(p.resolution, 2)
		sink.writeBits(p.bitrateIndex, 4)
	case p.profile == av3aProfileObjectMetadata:
		sink.writeBits(p.soundBedType, 2)
		if p.soundBedType == 0 {
			sink.writeBits(p.objects, 7)
			sink.writeBits(p.objBitrate, 4)
		} else {
			sink.writeBits(p.channelIndex, 7)
			sink.writeBits(p.bedBitrate, 4)
			sink.writeBits(p.objects, 7)
			sink.writeBits(p.objBitrate, 4)
		}
		sink.writeBits(p.resolution, 2)
	case p.profile == av3aProfileFOAHOA:
		sink.writeBits(p.hoaOrder, 4)
		sink.writeBits(p.resolution, 2)
		sink.writeBits(p.bitrateIndex, 4)
	}
	if p.codecID == av3aCodecLossless {
		sink.writeBits(p.resolution, 2)
	}
	sink.writeBits(0, 16) // frame payload stub
	return sink.bytes()
}

// General profile, stereo, 48 kHz, 16-bit, bitrate index 7.
func TestParseAATFGeneralStereo(t *testing.T) {
	frame := buildAATFFrame(aatfParams{
		codecID:       av3aCodecGeneral,
		profile:       av3aProfileBasic,
		samplingIndex: 2,
		channelIndex:  1,
		resolution:    1,
		bitrateIndex:  7,
	})
	if frame[0] != 0xFF || frame[1]&0xF0 != 0xF0 {
		t.Fatalf("syncword not aligned: % X", frame[:2])
	}
	info, err := parseAATFFrameHeader(frame)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if info.CodecID != "General" {
		t.Errorf("codec: got %q", info.CodecID)
	}
	if info.CodingProfile != "Basic" {
		t.Errorf("profile: got %q", info.CodingProfile)
	}
	if info.SamplingFrequency != 48000 {
		t.Errorf("sampling frequency: got %d", info.SamplingFrequency)
	}
	if info.ChannelConfiguration != "Stereo" || info.ChannelNumber != 2 {
		t.Errorf("channels: got %q/%d", info.ChannelConfiguration, info.ChannelNumber)
	}
	if info.Resolution != 16 {
		t.Errorf("resolution: got %d", info.Resolution)
	}
	if info.BitRate != 144000 {
		t.Errorf("bit rate: got %d, want 144000", info.BitRate)
	}
}

func TestParseAATFLosslessEscapes(t *testing.T) {
	frame := buildAATFFrame(aatfParams{
		codecID:       av3aCodecLossless,
		samplingIndex: 0xF,
		samplingFreq:  96000,
		channelIndex:  15,
		channelEscape: 24,
		resolution:    2,
	})
	info, err := parseAATFFrameHeader(frame)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if info.CodecID != "Lossless" {
		t.Errorf("codec: got %q", info.CodecID)
	}
	if info.SamplingFrequency != 96000 {
		t.Errorf("explicit sampling frequency: got %d", info.SamplingFrequency)
	}
	if info.ChannelNumber != 24 {
		t.Errorf("escaped channel number: got %d", info.ChannelNumber)
	}
	if info.Resolution != 24 {
		t.Errorf("resolution: got %d", info.Resolution)
	}
	// No branch priced the stream: bit rate stays absent.
	if info.BitRate != 0 {
		t.Errorf("lossless bit rate must be absent, got %d", info.BitRate)
	}
}

func TestParseAATFLosslessDirectChannelCount(t *testing.T) {
	frame := buildAATFFrame(aatfParams{
		codecID:       av3aCodecLossless,
		samplingIndex: 1,
		channelIndex:  6,
		resolution:    1,
	})
	info, err := parseAATFFrameHeader(frame)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if info.ChannelNumber != 6 {
		t.Errorf("channel number: got %d, want 6", info.ChannelNumber)
	}
}

func TestParseAATFObjectsOnly(t *testing.T) {
	frame := buildAATFFrame(aatfParams{
		codecID:       av3aCodecGeneral,
		profile:       av3aProfileObjectMetadata,
		samplingIndex: 2,
		soundBedType:  0,
		objects:       2, // three objects
		objBitrate:    3, // mono table: 56 kbps
		resolution:    1,
	})
	info, err := parseAATFFrameHeader(frame)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if info.ObjectChannelNumber != 3 {
		t.Errorf("objects: got %d", info.ObjectChannelNumber)
	}
	if want := uint64(56*3) * 1000; info.BitRate != want {
		t.Errorf("bit rate: got %d, want %d", info.BitRate, want)
	}
}

func TestParseAATFBedPlusObjects(t *testing.T) {
	frame := buildAATFFrame(aatfParams{
		codecID:       av3aCodecGeneral,
		profile:       av3aProfileObjectMetadata,
		samplingIndex: 2,
		soundBedType:  1,
		channelIndex:  1, // stereo bed
		bedBitrate:    7, // 144 kbps
		objects:       0, // one object
		objBitrate:    0, // 16 kbps
		resolution:    1,
	})
	info, err := parseAATFFrameHeader(frame)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if info.ChannelConfiguration != "Stereo" {
		t.Errorf("bed: got %q", info.ChannelConfiguration)
	}
	if info.ObjectChannelNumber != 1 {
		t.Errorf("objects: got %d", info.ObjectChannelNumber)
	}
	if want := uint64(144+16) * 1000; info.BitRate != want {
		t.Errorf("bit rate: got %d, want %d", info.BitRate, want)
	}
}

func TestParseAATFHOA(t *testing.T) {
	frame := buildAATFFrame(aatfParams{
		codecID:       av3aCodecGeneral,
		profile:       av3aProfileFOAHOA,
		samplingIndex: 2,
		hoaOrder:      3,
		resolution:    2,
		bitrateIndex:  1,
	})
	info, err := parseAATFFrameHeader(frame)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if !info.HasHOAOrder || info.HOAOrder != 3 {
		t.Errorf("HOA order: got %d", info.HOAOrder)
	}
	if info.BitRate != 320000 {
		t.Errorf("bit rate: got %d, want 320000", info.BitRate)
	}
}

func TestParseAATFInvalidCodecID(t *testing.T) {
	frame := buildAATFFrame(aatfParams{
		codecID:       av3aCodecGeneral,
		profile:       av3aProfileBasic,
		samplingIndex: 2,
		channelIndex:  1,
		resolution:    1,
	})
	frame[1] = 0xF0 | 0x05 // codec id 5: reserved
	if _, err := parseAATFFrameHeader(frame); err == nil {
		t.Fatal("reserved codec id must not parse")
	}
}

// A false syncword is skipped byte-by-byte until a real frame parses.
func TestAV3AAnalyzerResync(t *testing.T) {
	frame := buildAATFFrame(aatfParams{
		codecID:       av3aCodecGeneral,
		profile:       av3aProfileBasic,
		samplingIndex: 2,
		channelIndex:  1,
		resolution:    1,
		bitrateIndex:  7,
	})
	stream := append([]byte{0x12, 0xFF, 0xF5, 0x00}, frame...)

	analyzer := newAV3AAnalyzer()
	if !analyzer.feed(stream) {
		t.Fatal("analyzer did not lock onto the frame")
	}
	info := analyzer.result()
	if info == nil || info.BitRate != 144000 {
		t.Fatalf("unexpected result: %+v", info)
	}
}

func TestAV3AAnalyzerSplitFeed(t *testing.T) {
	frame := buildAATFFrame(aatfParams{
		codecID:       av3aCodecGeneral,
		profile:       av3aProfileBasic,
		samplingIndex: 2,
		channelIndex:  1,
		resolution:    1,
		bitrateIndex:  7,
	})
	analyzer := newAV3AAnalyzer()
	for i := 0; i < len(frame); i += 3 {
		end := min(i+3, len(frame))
		analyzer.feed(frame[i:end])
	}
	if analyzer.result() == nil {
		t.Fatal("split feed lost the frame header")
	}
}
