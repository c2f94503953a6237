package avsinfo

import "testing"

func TestParseAVS1VideoDescriptor(t *testing.T) {
	sink := &bitSink{}
	sink.writeBits(0x48, 8)     // profile: broadcasting
	sink.writeBits(0x20, 8)     // level
	sink.writeFlag(false)       // multiple_frame_rate_flag
	sink.writeBits(3, 4)        // frame_rate_code: 25
	sink.writeFlag(true)        // AVS_still_present
	sink.writeBits(1, 2)        // chroma 4:2:0
	sink.writeBits(1, 3)        // sample_precision
	sink.writeBits(0, 5)

	block := append([]byte{descriptorTagAVS1Video, byte(len(sink.bytes()))}, sink.bytes()...)
	out := parseESDescriptors(block, streamTypeAVS1Video)
	desc := out.videoDescriptor
	if desc == nil {
		t.Fatal("descriptor not parsed")
	}
	if desc.Generation != "AVS+" {
		t.Errorf("generation: got %q", desc.Generation)
	}
	if desc.Profile != "Broadcasting profile" {
		t.Errorf("profile: got %q", desc.Profile)
	}
	if desc.FrameRate != 25 {
		t.Errorf("frame rate: got %v", desc.FrameRate)
	}
	if !desc.AVSStillPresent {
		t.Error("still flag lost")
	}
	if desc.Chroma != chroma420 || desc.LumaDepth != 8 {
		t.Errorf("chroma/depth: %v/%d", desc.Chroma, desc.LumaDepth)
	}
}

func TestAVS1DescriptorIgnoredOnWrongStreamType(t *testing.T) {
	block := []byte{descriptorTagAVS1Video, 4, 0x20, 0x20, 0x1A, 0x20}
	out := parseESDescriptors(block, streamTypeAVS2Video)
	if out.videoDescriptor != nil {
		t.Fatal("AVS1 descriptor must be gated by stream type 0x42")
	}
}

func TestParseAVS3VideoDescriptor(t *testing.T) {
	sink := &bitSink{}
	sink.writeBits(0x22, 8) // Main 10bit
	sink.writeBits(0x22, 8)
	sink.writeFlag(false) // multiple_frame_rate_flag
	sink.writeBits(8, 4)  // 60 fps
	sink.writeBits(3, 3)  // sample_precision: 10 bit
	sink.writeBits(1, 2)  // chroma 4:2:0
	sink.writeFlag(true)  // temporal_id_flag
	sink.writeFlag(false) // td_mode_flag
	sink.writeFlag(false) // library_stream_flag
	sink.writeFlag(true)  // library_picture_enable_flag
	sink.writeBits(0, 2)
	sink.writeBits(9, 8)  // primaries BT.2020
	sink.writeBits(11, 8) // transfer PQ
	sink.writeBits(8, 8)  // matrix BT.2020 NCL

	block := append([]byte{descriptorTagAVS3Video, byte(len(sink.bytes()))}, sink.bytes()...)
	out := parseESDescriptors(block, streamTypeAVS3Video)
	desc := out.videoDescriptor
	if desc == nil {
		t.Fatal("descriptor not parsed")
	}
	if desc.Generation != "AVS3" || desc.Profile != "Main 10bit profile" {
		t.Errorf("identity: %q %q", desc.Generation, desc.Profile)
	}
	if desc.FrameRate != 60 || desc.LumaDepth != 10 {
		t.Errorf("rate/depth: %v/%d", desc.FrameRate, desc.LumaDepth)
	}
	if !desc.TemporalIDFlag || desc.TDModeFlag || desc.LibraryStreamFlag || !desc.LibraryPictureEnable {
		t.Error("flag set mismatch")
	}
	if desc.Primaries != "BT.2020" || desc.Transfer != "PQ" || desc.Matrix != "BT.2020 non-constant" {
		t.Errorf("colour: %q %q %q", desc.Primaries, desc.Transfer, desc.Matrix)
	}
}

func TestAVS3VideoDescriptorChromaNormalized(t *testing.T) {
	sink := &bitSink{}
	sink.writeBits(0x20, 8)
	sink.writeBits(0x20, 8)
	sink.writeFlag(false)
	sink.writeBits(3, 4)
	sink.writeBits(1, 3)
	sink.writeBits(2, 2) // chroma 4:2:2: not registered for the descriptor
	sink.writeBits(0, 6)
	sink.writeBits(1, 8)
	sink.writeBits(1, 8)
	sink.writeBits(1, 8)

	block := append([]byte{descriptorTagAVS3Video, byte(len(sink.bytes()))}, sink.bytes()...)
	desc := parseESDescriptors(block, streamTypeAVS3Video).videoDescriptor
	if desc == nil {
		t.Fatal("descriptor not parsed")
	}
	if desc.Chroma != chromaReserved {
		t.Errorf("chroma: got %v, want reserved", desc.Chroma)
	}
}

func TestParseAVS3AudioDescriptor(t *testing.T) {
	sink := &bitSink{}
	sink.writeBits(av3aCodecGeneral, 4)
	sink.writeBits(2, 4) // 48 kHz
	sink.writeBits(av3aContentChannel, 4)
	sink.writeBits(1, 7) // stereo
	sink.writeBits(0, 1)
	sink.writeBits(144, 16) // total_bitrate kbps
	sink.writeBits(1, 2)    // 16 bit
	sink.writeBits(0, 6)

	block := append([]byte{descriptorTagAVS3Audio, byte(len(sink.bytes()))}, sink.bytes()...)
	desc := parseESDescriptors(block, streamTypeAVS3Audio).audioDescriptor
	if desc == nil {
		t.Fatal("descriptor not parsed")
	}
	if desc.CodecID != "General" || desc.ContentType != "Channel" {
		t.Errorf("identity: %q %q", desc.CodecID, desc.ContentType)
	}
	if desc.SamplingFrequency != 48000 {
		t.Errorf("sampling: got %d", desc.SamplingFrequency)
	}
	if desc.ChannelConfiguration != "Stereo" || desc.ChannelNumber != 2 {
		t.Errorf("channels: %q/%d", desc.ChannelConfiguration, desc.ChannelNumber)
	}
	if desc.TotalBitrate != 144000 {
		t.Errorf("bitrate: got %d", desc.TotalBitrate)
	}
	if desc.Resolution != 16 {
		t.Errorf("resolution: got %d", desc.Resolution)
	}
}

func TestParseAVS3AudioDescriptorHOA(t *testing.T) {
	sink := &bitSink{}
	sink.writeBits(av3aCodecGeneral, 4)
	sink.writeBits(0, 4) // 192 kHz
	sink.writeBits(av3aContentHOA, 4)
	sink.writeBits(2, 4) // order
	sink.writeBits(0, 4)
	sink.writeBits(512, 16)
	sink.writeBits(2, 2)
	sink.writeBits(0, 6)

	block := append([]byte{descriptorTagAVS3Audio, byte(len(sink.bytes()))}, sink.bytes()...)
	desc := parseESDescriptors(block, streamTypeAVS3Audio).audioDescriptor
	if desc == nil {
		t.Fatal("descriptor not parsed")
	}
	if !desc.HasHOAOrder || desc.HOAOrder != 2 {
		t.Errorf("order: got %d", desc.HOAOrder)
	}
	if desc.TotalBitrate != 512000 || desc.Resolution != 24 {
		t.Errorf("bitrate/resolution: %d/%d", desc.TotalBitrate, desc.Resolution)
	}
}

func TestWellKnownAndUnknownDescriptors(t *testing.T) {
	block := []byte{
		0x6A, 1, 0x00, // AC-3 descriptor
		0xC4, 3, 1, 2, 3, // unknown, skipped by length
		descriptorTagMaximumBitrate, 3, 0x00, 0x4E, 0x20, // 20000 * 400
	}
	out := parseESDescriptors(block, 0x06)
	if out.codecName != "AC-3" || out.codecKindHint != StreamAudio {
		t.Errorf("known tag: %q %q", out.codecName, out.codecKindHint)
	}
	if out.maxBitrate != 20000*400 {
		t.Errorf("max bitrate: got %d", out.maxBitrate)
	}
}

func TestDescriptorBlockTruncatedStops(t *testing.T) {
	block := []byte{descriptorTagISO639, 200, 'c'}
	out := parseESDescriptors(block, 0x06)
	if out.language != "" {
		t.Errorf("truncated descriptor parsed: %q", out.language)
	}
}

// For a well-formed stream, the PMT descriptor and the in-band sequence
// header agree on their overlapping fields.
func TestDescriptorInBandConsistency(t *testing.T) {
	es := buildAVS3SequenceHeader(defaultAVS3Params())
	info, err := parseAVS3SequenceHeader(es[4:])
	if err != nil {
		t.Fatalf("header: %v", err)
	}

	sink := &bitSink{}
	sink.writeBits(uint32(info.ProfileID), 8)
	sink.writeBits(uint32(info.LevelID), 8)
	sink.writeFlag(false)
	sink.writeBits(3, 4) // frame_rate_code: 25
	sink.writeBits(1, 3) // sample_precision: 8 bit
	sink.writeBits(1, 2) // chroma 4:2:0
	sink.writeBits(0, 6)
	sink.writeBits(1, 8)
	sink.writeBits(1, 8)
	sink.writeBits(1, 8)
	block := append([]byte{descriptorTagAVS3Video, byte(len(sink.bytes()))}, sink.bytes()...)
	desc := parseESDescriptors(block, streamTypeAVS3Video).videoDescriptor
	if desc == nil {
		t.Fatal("descriptor not parsed")
	}

	if desc.Profile != info.Profile {
		t.Errorf("profile: %q vs %q", desc.Profile, info.Profile)
	}
	if desc.Level != info.Level {
		t.Errorf("level: %q vs %q", desc.Level, info.Level)
	}
	if desc.Chroma != info.Chroma {
		t.Errorf("chroma: %v vs %v", desc.Chroma, info.Chroma)
	}
	if desc.LumaDepth != info.LumaDepth {
		t.Errorf("bit depth: %d vs %d", desc.LumaDepth, info.LumaDepth)
	}
	if desc.FrameRate != info.FrameRate {
		t.Errorf("frame rate: %v vs %v", desc.FrameRate, info.FrameRate)
	}
}
