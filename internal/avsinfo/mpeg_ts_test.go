package avsinfo

import (
	"bytes"
	"testing"
)

// tsTestPacket builds one 188-byte packet, using adaptation-field
// stuffing when the payload is short.
func tsTestPacket(pid uint16, pusi bool, cc byte, payload []byte) []byte {
	if len(payload) > 184 {
		panic("payload too large")
	}
	pkt := make([]byte, tsPacketSize)
	pkt[0] = tsSyncByte
	pkt[1] = byte(pid >> 8 & 0x1F)
	if pusi {
		pkt[1] |= 0x40
	}
	pkt[2] = byte(pid)
	if len(payload) == 184 {
		pkt[3] = 0x10 | cc&0x0F
		copy(pkt[4:], payload)
		return pkt
	}
	adaptLen := 183 - len(payload)
	pkt[3] = 0x30 | cc&0x0F
	pkt[4] = byte(adaptLen)
	if adaptLen > 0 {
		pkt[5] = 0x00
		for i := 6; i < 5+adaptLen; i++ {
			pkt[i] = 0xFF
		}
	}
	copy(pkt[5+adaptLen:], payload)
	return pkt
}

func psiPayload(section []byte) []byte {
	payload := append([]byte{0x00}, section...) // pointer_field
	for len(payload) < 184 {
		payload = append(payload, 0xFF)
	}
	return payload
}

func patSection(programNumber, pmtPID uint16) []byte {
	sectionLen := 13
	section := []byte{
		tableIDPAT,
		0xB0 | byte(sectionLen>>8), byte(sectionLen),
		0x00, 0x01, // transport_stream_id
		0xC1,       // version/current_next
		0x00, 0x00, // section/last section number
		byte(programNumber >> 8), byte(programNumber),
		0xE0 | byte(pmtPID>>8&0x1F), byte(pmtPID),
	}
	return append(section, 0xDE, 0xAD, 0xBE, 0xEF) // CRC placeholder
}

type pmtEntry struct {
	streamType  byte
	pid         uint16
	descriptors []byte
}

func pmtSection(programNumber, pcrPID uint16, entries []pmtEntry) []byte {
	var body []byte
	for _, entry := range entries {
		body = append(body,
			entry.streamType,
			0xE0|byte(entry.pid>>8&0x1F), byte(entry.pid),
			0xF0|byte(len(entry.descriptors)>>8), byte(len(entry.descriptors)))
		body = append(body, entry.descriptors...)
	}
	sectionLen := 9 + len(body) + 4
	section := []byte{
		tableIDPMT,
		0xB0 | byte(sectionLen>>8), byte(sectionLen),
		byte(programNumber >> 8), byte(programNumber),
		0xC1,
		0x00, 0x00,
		0xE0 | byte(pcrPID>>8&0x1F), byte(pcrPID),
		0xF0, 0x00, // program_info_length
	}
	section = append(section, body...)
	return append(section, 0xDE, 0xAD, 0xBE, 0xEF)
}

func pesPacket(streamID byte, es []byte) []byte {
	header := []byte{0x00, 0x00, 0x01, streamID, 0x00, 0x00, 0x80, 0x00, 0x00}
	return append(header, es...)
}

// packetizePES splits one PES packet into TS packets of at most
// chunkSize payload bytes each.
func packetizePES(pid uint16, pes []byte, chunkSize int, cc *byte) [][]byte {
	var packets [][]byte
	first := true
	for offset := 0; offset < len(pes); offset += chunkSize {
		end := min(offset+chunkSize, len(pes))
		packets = append(packets, tsTestPacket(pid, first, *cc, pes[offset:end]))
		*cc++
		first = false
	}
	return packets
}

func TestDetectTSPacketSize188(t *testing.T) {
	var file []byte
	for i := 0; i < probePackets+2; i++ {
		file = append(file, tsTestPacket(pidNull, false, byte(i), nil)...)
	}
	size, start, ok := detectTSPacketSize(file)
	if !ok || size != tsPacketSize || start != 0 {
		t.Fatalf("got size=%d start=%d ok=%v", size, start, ok)
	}

	shifted := append([]byte{0x00, 0x12, 0x00}, file...)
	size, start, ok = detectTSPacketSize(shifted)
	if !ok || size != tsPacketSize || start != 3 {
		t.Fatalf("shifted: got size=%d start=%d ok=%v", size, start, ok)
	}
}

func TestDetectTSPacketSize192(t *testing.T) {
	var file []byte
	for i := 0; i < probePackets+2; i++ {
		file = append(file, 0x00, 0x00, 0x00, 0x00)
		file = append(file, tsTestPacket(pidNull, false, byte(i), nil)...)
	}
	size, start, ok := detectTSPacketSize(file)
	if !ok || size != m2tsPacketSize || start != 0 {
		t.Fatalf("got size=%d start=%d ok=%v", size, start, ok)
	}
}

func TestDetectTSPacketSizeUnrecognized(t *testing.T) {
	file := []byte{0x00, 0x47, 0x00, 0x00}
	size, _, ok := detectTSPacketSize(file)
	if ok {
		t.Fatal("garbage must not validate")
	}
	if size != tsPacketSize {
		t.Fatalf("fallback size: got %d", size)
	}
}

func avs3TestES() []byte {
	es := buildAVS3SequenceHeader(defaultAVS3Params())
	return append(es, 0x00, 0x00, 0x01, startCodeIPicture, 0x00, 0x00)
}

// One program, AVS3 video on PID 0x0101, in-band sequence header in the
// first PES packet.
func TestParseMPEGTSSingleAVS3Program(t *testing.T) {
	var file []byte
	file = append(file, tsTestPacket(pidPAT, true, 0, psiPayload(patSection(1, 0x0100)))...)
	file = append(file, tsTestPacket(0x0100, true, 0, psiPayload(pmtSection(1, 0x0101, []pmtEntry{
		{streamType: streamTypeAVS3Video, pid: 0x0101},
	})))...)
	var cc byte
	for _, pkt := range packetizePES(0x0101, pesPacket(0xE0, avs3TestES()), 184, &cc) {
		file = append(file, pkt...)
	}
	// A second PES start finalizes the first packet.
	file = append(file, tsTestPacket(0x0101, true, cc, pesPacket(0xE0, []byte{0x00}))...)

	streams, general, _, ok := ParseMPEGTS(bytes.NewReader(file), true)
	if !ok {
		t.Fatal("parse failed")
	}
	if findField(general, "Format") != "MPEG-TS" {
		t.Errorf("general format: %q", findField(general, "Format"))
	}
	if len(streams) != 2 {
		t.Fatalf("streams: got %d, want ES + menu", len(streams))
	}
	if streams[1].Kind != StreamMenu {
		t.Errorf("second stream: got %q, want Menu", streams[1].Kind)
	}
	stream := streams[0]
	if stream.PID != 0x0101 || stream.ProgramNumber != 1 || stream.StreamType != streamTypeAVS3Video {
		t.Errorf("identity: pid=0x%X prog=%d type=0x%X", stream.PID, stream.ProgramNumber, stream.StreamType)
	}
	if stream.VideoInfo == nil {
		t.Fatal("no in-band info")
	}
	if stream.VideoInfo.Generation != "AVS3" || stream.VideoInfo.Width != 1920 ||
		stream.VideoInfo.Height != 1080 || stream.VideoInfo.FrameRate != 25 {
		t.Errorf("info: %+v", stream.VideoInfo)
	}
}

// Once all PMTs are parsed and every detection PID has yielded its
// header, the demuxer stops consuming packets.
func TestTSDemuxerEarlyTermination(t *testing.T) {
	demux := newTSDemuxer(false)
	demux.packetSize = tsPacketSize

	demux.handlePacket(tsTestPacket(pidPAT, true, 0, psiPayload(patSection(1, 0x0100))))
	if demux.finished() {
		t.Fatal("finished before PMT")
	}
	demux.handlePacket(tsTestPacket(0x0100, true, 0, psiPayload(pmtSection(1, 0x0101, []pmtEntry{
		{streamType: streamTypeAVS3Video, pid: 0x0101},
	}))))
	if demux.finished() {
		t.Fatal("finished before detection")
	}
	var cc byte
	for _, pkt := range packetizePES(0x0101, pesPacket(0xE0, avs3TestES()), 184, &cc) {
		demux.handlePacket(pkt)
	}
	demux.handlePacket(tsTestPacket(0x0101, true, cc, pesPacket(0xE0, []byte{0x00})))
	if !demux.finished() {
		t.Fatal("not finished after detection")
	}
	if len(demux.detectSet) != 0 {
		t.Fatalf("detection set not drained: %v", demux.detectSet)
	}
}

// Splitting the same PES payload across packets at any boundary yields
// the same reassembled stream and the same parse.
func TestPESReassemblyIdempotence(t *testing.T) {
	pes := pesPacket(0xE0, avs3TestES())
	for _, chunk := range []int{184, 100, 33, 7, 1} {
		demux := newTSDemuxer(false)
		demux.packetSize = tsPacketSize
		demux.handlePacket(tsTestPacket(pidPAT, true, 0, psiPayload(patSection(1, 0x0100))))
		demux.handlePacket(tsTestPacket(0x0100, true, 0, psiPayload(pmtSection(1, 0x0101, []pmtEntry{
			{streamType: streamTypeAVS3Video, pid: 0x0101},
		}))))
		var cc byte
		for _, pkt := range packetizePES(0x0101, pes, chunk, &cc) {
			demux.handlePacket(pkt)
		}
		demux.flush()
		state := demux.streams[0x0101]
		if state == nil || state.videoInfo == nil {
			t.Fatalf("chunk %d: no detection", chunk)
		}
		if state.videoInfo.Width != 1920 || state.videoInfo.FrameRate != 25 {
			t.Errorf("chunk %d: info differs: %+v", chunk, state.videoInfo)
		}
	}
}

// PES packets arriving before the PMT names their PID are retained
// (bounded) and replayed once the stream type is known.
func TestTSPESBeforePMT(t *testing.T) {
	demux := newTSDemuxer(false)
	demux.packetSize = tsPacketSize
	demux.handlePacket(tsTestPacket(pidPAT, true, 0, psiPayload(patSection(1, 0x0100))))

	var cc byte
	for _, pkt := range packetizePES(0x0101, pesPacket(0xE0, avs3TestES()), 184, &cc) {
		demux.handlePacket(pkt)
	}
	demux.handlePacket(tsTestPacket(0x0101, true, cc, pesPacket(0xE0, []byte{0x00})))

	demux.handlePacket(tsTestPacket(0x0100, true, 0, psiPayload(pmtSection(1, 0x0101, []pmtEntry{
		{streamType: streamTypeAVS3Video, pid: 0x0101},
	}))))
	demux.flush()
	state := demux.streams[0x0101]
	if state == nil || state.videoInfo == nil {
		t.Fatal("replayed PES not detected")
	}
}

func TestDuplicatePMTIgnored(t *testing.T) {
	demux := newTSDemuxer(false)
	demux.packetSize = tsPacketSize
	demux.handlePacket(tsTestPacket(pidPAT, true, 0, psiPayload(patSection(1, 0x0100))))
	pmt := tsTestPacket(0x0100, true, 0, psiPayload(pmtSection(1, 0x0101, []pmtEntry{
		{streamType: streamTypeAVS3Video, pid: 0x0101},
	})))
	demux.handlePacket(pmt)
	demux.handlePacket(pmt)
	if len(demux.streamOrder) != 1 {
		t.Fatalf("duplicate PMT re-added streams: %d", len(demux.streamOrder))
	}
}

// M2TS file carrying Audio Vivid: size detection picks 192 and the AATF
// header parses from the PES payload.
func TestParseM2TSAudioVivid(t *testing.T) {
	frame := buildAATFFrame(aatfParams{
		codecID:       av3aCodecGeneral,
		profile:       av3aProfileBasic,
		samplingIndex: 2,
		channelIndex:  1,
		resolution:    1,
		bitrateIndex:  7,
	})

	var packets [][]byte
	packets = append(packets, tsTestPacket(pidPAT, true, 0, psiPayload(patSection(1, 0x0100))))
	packets = append(packets, tsTestPacket(0x0100, true, 0, psiPayload(pmtSection(1, 0x0102, []pmtEntry{
		{streamType: streamTypeAVS3Audio, pid: 0x0102},
	}))))
	var cc byte
	packets = append(packets, packetizePES(0x0102, pesPacket(0xC0, frame), 184, &cc)...)
	packets = append(packets, tsTestPacket(0x0102, true, cc, pesPacket(0xC0, []byte{0x00})))

	var file []byte
	for _, pkt := range packets {
		file = append(file, 0x00, 0x01, 0x02, 0x03) // timecode header
		file = append(file, pkt...)
	}

	streams, general, _, ok := ParseMPEGTS(bytes.NewReader(file), true)
	if !ok {
		t.Fatal("parse failed")
	}
	if findField(general, "Format") != "BDAV" {
		t.Errorf("general format: %q", findField(general, "Format"))
	}
	if len(streams) != 2 || streams[1].Kind != StreamMenu {
		t.Fatalf("streams: got %d, want ES + menu", len(streams))
	}
	info := streams[0].AudioInfo
	if info == nil {
		t.Fatal("no in-band audio info")
	}
	if info.SamplingFrequency != 48000 || info.ChannelNumber != 2 ||
		info.Resolution != 16 || info.BitRate != 144000 {
		t.Errorf("info: %+v", info)
	}
}

// A wrong PES stream id keeps the payload away from the codec parser.
func TestStripPESHeaderStreamID(t *testing.T) {
	if _, ok := stripPESHeader(pesPacket(0xC0, []byte{1}), true); ok {
		t.Error("audio stream id accepted for video")
	}
	if _, ok := stripPESHeader(pesPacket(0xE0, []byte{1}), false); ok {
		t.Error("video stream id accepted for audio")
	}
	if es, ok := stripPESHeader(pesPacket(0xE0, []byte{0xAB}), true); !ok || len(es) != 1 || es[0] != 0xAB {
		t.Errorf("payload mangled: %v %v", es, ok)
	}
}

func TestParseMPEGTSLanguageAndRegistration(t *testing.T) {
	descriptors := []byte{
		descriptorTagISO639, 4, 'c', 'h', 'i', 0x00,
		descriptorTagRegistration, 4, 'A', 'V', 'S', '3',
	}
	var file []byte
	file = append(file, tsTestPacket(pidPAT, true, 0, psiPayload(patSection(1, 0x0100)))...)
	file = append(file, tsTestPacket(0x0100, true, 0, psiPayload(pmtSection(1, 0x0101, []pmtEntry{
		{streamType: streamTypeAVS3Video, pid: 0x0101, descriptors: descriptors},
	})))...)
	var cc byte
	for _, pkt := range packetizePES(0x0101, pesPacket(0xE0, avs3TestES()), 184, &cc) {
		file = append(file, pkt...)
	}

	streams, _, _, ok := ParseMPEGTS(bytes.NewReader(file), true)
	if !ok || len(streams) != 2 {
		t.Fatalf("streams: %d ok=%v", len(streams), ok)
	}
	if streams[0].Language != "chi" {
		t.Errorf("language: got %q", streams[0].Language)
	}
	if streams[0].Registration != "AVS3" {
		t.Errorf("registration: got %q", streams[0].Registration)
	}
	if findField(streams[0].Fields, "Language") != "Chinese" {
		t.Errorf("language field: got %q", findField(streams[0].Fields, "Language"))
	}
}

func sdtSection(serviceID uint16, provider, name string) []byte {
	descriptor := []byte{0x48, byte(3 + len(provider) + len(name)), 0x01, byte(len(provider))}
	descriptor = append(descriptor, provider...)
	descriptor = append(descriptor, byte(len(name)))
	descriptor = append(descriptor, name...)

	entry := []byte{
		byte(serviceID >> 8), byte(serviceID),
		0xFC,
		byte(len(descriptor) >> 8 & 0x0F), byte(len(descriptor)),
	}
	entry = append(entry, descriptor...)

	sectionLen := 8 + len(entry) + 4
	section := []byte{
		0x42,
		0xB0 | byte(sectionLen>>8), byte(sectionLen),
		0x00, 0x01, // transport_stream_id
		0xC1,
		0x00, 0x00,
		0x00, 0x01, // original_network_id
		0x00, // reserved
	}
	section = append(section, entry...)
	return append(section, 0xDE, 0xAD, 0xBE, 0xEF)
}

func TestParseSDTServiceName(t *testing.T) {
	var file []byte
	file = append(file, tsTestPacket(pidPAT, true, 0, psiPayload(patSection(1, 0x0100)))...)
	file = append(file, tsTestPacket(pidSDT, true, 0, psiPayload(sdtSection(1, "AVS Lab", "CCTV-16 4K")))...)
	file = append(file, tsTestPacket(0x0100, true, 0, psiPayload(pmtSection(1, 0x0101, []pmtEntry{
		{streamType: streamTypeAVS3Video, pid: 0x0101},
	})))...)
	var cc byte
	for _, pkt := range packetizePES(0x0101, pesPacket(0xE0, avs3TestES()), 184, &cc) {
		file = append(file, pkt...)
	}

	streams, _, _, ok := ParseMPEGTS(bytes.NewReader(file), true)
	if !ok || len(streams) != 2 {
		t.Fatalf("streams: %d ok=%v", len(streams), ok)
	}
	menu := streams[1]
	if menu.Kind != StreamMenu {
		t.Fatalf("menu kind: %q", menu.Kind)
	}
	if findField(menu.Fields, "Service name") != "CCTV-16 4K" {
		t.Errorf("service name: %q", findField(menu.Fields, "Service name"))
	}
	if findField(menu.Fields, "Service provider") != "AVS Lab" {
		t.Errorf("service provider: %q", findField(menu.Fields, "Service provider"))
	}
	if findField(menu.Fields, "Service type") != "digital television" {
		t.Errorf("service type: %q", findField(menu.Fields, "Service type"))
	}
}
