package avsinfo

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/cnotch/xlog"
)

const (
	tsPacketSize   = 188
	m2tsPacketSize = 192
	tsSyncByte     = 0x47

	pidPAT  = 0x0000
	pidCAT  = 0x0001
	pidTSDT = 0x0002
	pidSDT  = 0x0011
	pidNull = 0x1FFF

	tableIDPAT = 0x00
	tableIDPMT = 0x02

	// probePackets is the most consecutive packets each size hypothesis
	// is verified over; a head shorter than that needs at least two
	// matching sync bytes.
	probePackets = 20

	// fastScanPacketBudget bounds a fast scan once at least one program
	// and stream have been found.
	fastScanPacketBudget = 20000

	// maxCompletedPES bounds the retained PES buffers for a PID whose
	// stream type is not yet known; the oldest is dropped beyond this.
	maxCompletedPES = 8
)

type tsProgram struct {
	number  uint16
	pmtPID  uint16
	parsed  bool
	streams []uint16
}

type tsStreamState struct {
	pid           uint16
	programNumber uint16
	streamType    byte
	kind          StreamKind
	format        string
	avsKind       codecKind
	desc          esDescriptors

	videoAnalyzer *avsVideoAnalyzer
	audioAnalyzer *av3aAnalyzer
	videoInfo     *AVSVideoInfo
	audioInfo     *AVSAudioInfo
}

// pesState reassembles PES packets for one PID. A payload-unit start
// finalizes the packet under construction.
type pesState struct {
	current    []byte
	collecting bool
	completed  [][]byte
}

func (s *pesState) start(payload []byte) (finished []byte) {
	if s.collecting {
		finished = s.current
	}
	s.current = append([]byte(nil), payload...)
	s.collecting = true
	return finished
}

func (s *pesState) append(payload []byte) {
	if s.collecting {
		s.current = append(s.current, payload...)
	}
}

func (s *pesState) flush() (finished []byte) {
	if !s.collecting {
		return nil
	}
	finished = s.current
	s.current = nil
	s.collecting = false
	return finished
}

func (s *pesState) retain(buf []byte) {
	s.completed = append(s.completed, buf)
	if len(s.completed) > maxCompletedPES {
		s.completed = s.completed[1:]
	}
}

type tsDemuxer struct {
	packetSize int
	recognized bool

	sawPAT       bool
	programs     map[uint16]*tsProgram
	programOrder []uint16
	pmtPIDs      map[uint16]uint16
	pendingPMTs  map[uint16]struct{}

	streams     map[uint16]*tsStreamState
	streamOrder []uint16
	pes         map[uint16]*pesState
	detectSet   map[uint16]struct{}

	observed map[string]struct{}

	serviceName     string
	serviceProvider string
	serviceType     string

	fastScan bool
	packets  int64
}

func newTSDemuxer(fastScan bool) *tsDemuxer {
	return &tsDemuxer{
		programs:    map[uint16]*tsProgram{},
		pmtPIDs:     map[uint16]uint16{},
		pendingPMTs: map[uint16]struct{}{},
		streams:     map[uint16]*tsStreamState{},
		pes:         map[uint16]*pesState{},
		detectSet:   map[uint16]struct{}{},
		observed:    map[string]struct{}{},
		fastScan:    fastScan,
	}
}

// detectTSPacketSize probes the two packet-size hypotheses at the head of
// the stream per §4.7: M2TS first (sync at candidate+4+i*192), then plain
// TS (sync at offset+i*188).
func detectTSPacketSize(head []byte) (size, start int, ok bool) {
	sync := -1
	for i, b := range head {
		if b == tsSyncByte {
			sync = i
			break
		}
	}
	if sync < 0 {
		return tsPacketSize, 0, false
	}

	verify := func(start, stride, skew int) bool {
		matches := 0
		for i := 0; i < probePackets; i++ {
			pos := start + i*stride + skew
			if pos >= len(head) {
				break
			}
			if head[pos] != tsSyncByte {
				return false
			}
			matches++
		}
		return matches >= 2
	}

	if cand := sync - 4; cand >= 0 && verify(cand, m2tsPacketSize, 4) {
		return m2tsPacketSize, cand, true
	}
	if verify(sync, tsPacketSize, 0) {
		return tsPacketSize, sync, true
	}
	return tsPacketSize, sync, false
}

// ParseMPEGTS scans a transport stream, discovers its programs and
// elementary streams, and drives the AVS codec parsers over the first
// PES packets of each AVS stream.
func ParseMPEGTS(file io.Reader, fastScan bool) ([]Stream, []Field, []string, bool) {
	reader := bufio.NewReaderSize(file, tsPacketSize*200)
	head, _ := reader.Peek(m2tsPacketSize*probePackets + 4)
	size, start, sizeOK := detectTSPacketSize(head)
	if !sizeOK {
		xlog.Warnf("transport stream structure not recognized, assuming %d-byte packets", size)
	}
	if _, err := reader.Discard(start); err != nil {
		return nil, nil, nil, false
	}

	demux := newTSDemuxer(fastScan)
	demux.packetSize = size
	demux.recognized = sizeOK

	packet := make([]byte, size)
	for {
		if _, err := io.ReadFull(reader, packet); err != nil {
			break
		}
		ts := packet
		if size == m2tsPacketSize {
			ts = packet[4:] // strip the timecode header
		}
		demux.handlePacket(ts)
		if demux.finished() {
			break
		}
	}
	demux.flush()

	streams, general := demux.buildReport()
	return streams, general, demux.observedTypes(), demux.sawPAT || len(streams) > 0
}

// finished reports the early-termination condition: every announced PMT
// parsed and no PID left awaiting in-band detection.
func (d *tsDemuxer) finished() bool {
	if d.sawPAT && len(d.pendingPMTs) == 0 && len(d.detectSet) == 0 {
		return true
	}
	if d.fastScan && d.packets >= fastScanPacketBudget &&
		len(d.programs) > 0 && len(d.streams) > 0 {
		return true
	}
	return false
}

func (d *tsDemuxer) allPMTsParsed() bool {
	return d.sawPAT && len(d.pendingPMTs) == 0
}

func (d *tsDemuxer) handlePacket(packet []byte) {
	if len(packet) != tsPacketSize || packet[0] != tsSyncByte {
		return
	}
	d.packets++
	if packet[1]&0x80 != 0 { // transport_error_indicator
		return
	}
	pusi := packet[1]&0x40 != 0
	pid := uint16(packet[1]&0x1F)<<8 | uint16(packet[2])
	adaptation := (packet[3] & 0x30) >> 4
	payloadIndex := 4
	if adaptation == 2 || adaptation == 3 {
		payloadIndex += 1 + int(packet[4])
	}
	if adaptation == 2 || payloadIndex >= len(packet) {
		return
	}
	payload := packet[payloadIndex:]

	switch {
	case pid == pidPAT:
		if pusi {
			d.parsePAT(payload)
		}
	case d.isPMTPID(pid):
		if pusi {
			d.parsePMT(pid, payload)
		}
	case pid == pidSDT:
		if pusi {
			d.parseSDT(payload)
		}
	case pid == pidCAT || pid == pidTSDT || pid == pidNull:
		// Well-known PSI, nothing to collect.
	default:
		d.handleESPacket(pid, pusi, payload)
	}
}

func (d *tsDemuxer) isPMTPID(pid uint16) bool {
	_, ok := d.pmtPIDs[pid]
	return ok
}

func (d *tsDemuxer) parsePAT(payload []byte) {
	section, ok := psiSection(payload, tableIDPAT)
	if !ok || len(section) < 12 {
		return
	}
	sectionLen := int(binary.BigEndian.Uint16(section[1:3]) & 0x0FFF)
	end := 3 + sectionLen - 4 // strip CRC
	if end > len(section) {
		end = len(section)
	}
	for pos := 8; pos+4 <= end; pos += 4 {
		programNumber := binary.BigEndian.Uint16(section[pos : pos+2])
		pid := binary.BigEndian.Uint16(section[pos+2:pos+4]) & 0x1FFF
		if programNumber == 0 {
			continue // network PID
		}
		if _, exists := d.programs[programNumber]; !exists {
			d.programs[programNumber] = &tsProgram{number: programNumber, pmtPID: pid}
			d.programOrder = append(d.programOrder, programNumber)
			d.pendingPMTs[pid] = struct{}{}
		}
		d.pmtPIDs[pid] = programNumber
	}
	d.sawPAT = true
}

func (d *tsDemuxer) parsePMT(pid uint16, payload []byte) {
	programNumber := d.pmtPIDs[pid]
	program := d.programs[programNumber]
	if program == nil {
		return
	}
	section, ok := psiSection(payload, tableIDPMT)
	if !ok || len(section) < 16 {
		return
	}
	delete(d.pendingPMTs, pid)
	if program.parsed {
		// Duplicate PMT for a populated program: skip it, but the
		// pending set above still advances.
		xlog.Debugf("duplicate PMT for program %d on PID 0x%04X", programNumber, pid)
		return
	}
	program.parsed = true

	sectionLen := int(binary.BigEndian.Uint16(section[1:3]) & 0x0FFF)
	end := 3 + sectionLen - 4
	if end > len(section) {
		end = len(section)
	}
	programInfoLen := int(binary.BigEndian.Uint16(section[10:12]) & 0x0FFF)
	pos := 12 + programInfoLen

	for pos+5 <= end {
		streamType := section[pos]
		esPID := binary.BigEndian.Uint16(section[pos+1:pos+3]) & 0x1FFF
		esInfoLen := int(binary.BigEndian.Uint16(section[pos+3:pos+5]) & 0x0FFF)
		descEnd := pos + 5 + esInfoLen
		if descEnd > end {
			break
		}
		d.addStream(program, streamType, esPID, section[pos+5:descEnd])
		pos = descEnd
	}
}

func (d *tsDemuxer) addStream(program *tsProgram, streamType byte, pid uint16, descriptors []byte) {
	if _, exists := d.streams[pid]; exists {
		return
	}
	kind, format := mapStreamType(streamType)
	desc := parseESDescriptors(descriptors, streamType)
	if kind == "" || format == "Private" {
		if desc.codecName != "" {
			format = desc.codecName
			kind = desc.codecKindHint
		}
	}
	state := &tsStreamState{
		pid:           pid,
		programNumber: program.number,
		streamType:    streamType,
		kind:          kind,
		format:        format,
		avsKind:       avsKindFromStreamType(streamType),
		desc:          desc,
	}
	d.streams[pid] = state
	d.streamOrder = append(d.streamOrder, pid)
	program.streams = append(program.streams, pid)

	if state.avsKind != codecNone {
		if state.avsKind.isVideo() {
			state.videoAnalyzer = newAVSVideoAnalyzer(state.avsKind.generation())
		} else {
			state.audioAnalyzer = newAV3AAnalyzer()
		}
		d.detectSet[pid] = struct{}{}
		// Replay any PES packets completed before this PMT arrived.
		if pes := d.pes[pid]; pes != nil {
			for _, buf := range pes.completed {
				d.feedPES(state, buf)
			}
			pes.completed = nil
			if _, still := d.detectSet[pid]; !still {
				delete(d.pes, pid)
			}
		}
	}
}

// psiSection applies the pointer field and validates the table id,
// returning the section bytes.
func psiSection(payload []byte, tableID byte) ([]byte, bool) {
	if len(payload) < 1 {
		return nil, false
	}
	pointer := int(payload[0])
	offset := 1 + pointer
	if offset+3 > len(payload) {
		return nil, false
	}
	section := payload[offset:]
	if section[0] != tableID {
		return nil, false
	}
	return section, true
}

func (d *tsDemuxer) handleESPacket(pid uint16, pusi bool, payload []byte) {
	_, detecting := d.detectSet[pid]
	if !detecting && d.allPMTsParsed() {
		return
	}
	if state, known := d.streams[pid]; known && state.avsKind == codecNone {
		return
	}

	pes := d.pes[pid]
	if pes == nil {
		if !pusi {
			return
		}
		pes = &pesState{}
		d.pes[pid] = pes
	}

	if pusi {
		if finished := pes.start(payload); finished != nil {
			d.completePES(pid, finished)
		}
	} else {
		pes.append(payload)
	}
}

// completePES routes a fully reassembled PES packet: parsed immediately
// for PIDs under detection, retained (bounded) for PIDs whose stream type
// is still unknown.
func (d *tsDemuxer) completePES(pid uint16, buf []byte) {
	if state, ok := d.streams[pid]; ok {
		if _, detecting := d.detectSet[pid]; detecting {
			d.feedPES(state, buf)
		}
		return
	}
	if pes := d.pes[pid]; pes != nil {
		pes.retain(buf)
	}
}

// feedPES strips the PES header and hands the elementary-stream bytes to
// the codec analyzer; a successful decode releases the PID.
func (d *tsDemuxer) feedPES(state *tsStreamState, buf []byte) {
	es, ok := stripPESHeader(buf, state.avsKind.isVideo())
	if !ok {
		return
	}
	done := false
	if state.videoAnalyzer != nil {
		done = state.videoAnalyzer.feed(es)
		if done {
			state.videoInfo = state.videoAnalyzer.result()
		}
	} else if state.audioAnalyzer != nil {
		done = state.audioAnalyzer.feed(es)
		if done {
			state.audioInfo = state.audioAnalyzer.result()
		}
	}
	if done {
		delete(d.detectSet, state.pid)
		delete(d.pes, state.pid)
	}
}

// stripPESHeader validates the PES start code and stream id and returns
// the elementary-stream payload.
func stripPESHeader(buf []byte, video bool) ([]byte, bool) {
	if len(buf) < 9 || buf[0] != 0x00 || buf[1] != 0x00 || buf[2] != 0x01 {
		return nil, false
	}
	streamID := buf[3]
	if video {
		if streamID < 0xE0 || streamID > 0xEF {
			return nil, false
		}
	} else if streamID < 0xC0 || streamID > 0xDF {
		return nil, false
	}
	headerLen := int(buf[8])
	dataStart := 9 + headerLen
	if dataStart > len(buf) {
		return nil, false
	}
	return buf[dataStart:], true
}

// flush finalizes any PES packet still under construction at end of
// input, then lets the analyzers accept partial sequence data.
func (d *tsDemuxer) flush() {
	for pid, pes := range d.pes {
		if finished := pes.flush(); finished != nil {
			d.completePES(pid, finished)
		}
	}
	for pid := range d.detectSet {
		state := d.streams[pid]
		if state == nil {
			continue
		}
		if state.videoAnalyzer != nil && state.videoAnalyzer.finish() {
			state.videoInfo = state.videoAnalyzer.result()
			delete(d.detectSet, pid)
		}
		if state.audioAnalyzer != nil && state.audioAnalyzer.finish() {
			state.audioInfo = state.audioAnalyzer.result()
			delete(d.detectSet, pid)
		}
	}
}

// parseSDT captures the service name, provider and type announced for
// the first program.
func (d *tsDemuxer) parseSDT(payload []byte) {
	section, ok := psiSection(payload, 0x42)
	if !ok || len(section) < 15 {
		return
	}
	sectionLen := int(binary.BigEndian.Uint16(section[1:3]) & 0x0FFF)
	end := 3 + sectionLen - 4
	if end > len(section) {
		end = len(section)
	}
	pos := 11
	for pos+5 <= end {
		serviceID := binary.BigEndian.Uint16(section[pos : pos+2])
		descLen := int(binary.BigEndian.Uint16(section[pos+3:pos+5]) & 0x0FFF)
		descEnd := pos + 5 + descLen
		if descEnd > end {
			return
		}
		if len(d.programOrder) == 0 || serviceID == d.programOrder[0] {
			d.parseServiceDescriptor(section[pos+5 : descEnd])
			return
		}
		pos = descEnd
	}
}

func (d *tsDemuxer) parseServiceDescriptor(buf []byte) {
	pos := 0
	for pos+2 <= len(buf) {
		tag := buf[pos]
		length := int(buf[pos+1])
		dataEnd := pos + 2 + length
		if dataEnd > len(buf) {
			return
		}
		if tag == 0x48 && length >= 2 {
			data := buf[pos+2 : dataEnd]
			switch data[0] {
			case 0x01:
				d.serviceType = "digital television"
			case 0x02:
				d.serviceType = "digital radio sound"
			}
			provLen := int(data[1])
			if 2+provLen >= len(data) {
				return
			}
			d.serviceProvider = string(data[2 : 2+provLen])
			nameLen := int(data[2+provLen])
			if 3+provLen+nameLen > len(data) {
				return
			}
			d.serviceName = string(data[3+provLen : 3+provLen+nameLen])
			return
		}
		pos = dataEnd
	}
}

func (d *tsDemuxer) observedTypes() []string {
	out := make([]string, 0, len(d.observed))
	for key := range d.observed {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

func (d *tsDemuxer) buildReport() ([]Stream, []Field) {
	var streams []Stream
	for _, pid := range d.streamOrder {
		state := d.streams[pid]
		if state == nil {
			continue
		}
		d.observed[formatStreamTypeName(state.streamType, state.format)] = struct{}{}
		if state.kind == "" {
			continue
		}
		streams = append(streams, buildTSStream(state))
	}

	for _, number := range d.programOrder {
		program := d.programs[number]
		if program == nil || !program.parsed {
			continue
		}
		streams = append(streams, d.buildMenuStream(program))
	}

	var general []Field
	if len(d.programOrder) > 0 {
		general = appendField(general, "ID", formatID(uint64(d.programOrder[0])))
	}
	general = appendField(general, "Format", tsFormatName(d.packetSize))
	return streams, general
}

// buildMenuStream summarizes one program the way broadcast analyzers
// label the PMT: the format roster plus the SDT service strings.
func (d *tsDemuxer) buildMenuStream(program *tsProgram) Stream {
	fields := []Field{
		{Name: "ID", Value: formatID(uint64(program.pmtPID))},
		{Name: "Menu ID", Value: formatID(uint64(program.number))},
	}
	var formats []string
	var list []string
	for _, pid := range program.streams {
		state := d.streams[pid]
		if state == nil || (state.kind != StreamVideo && state.kind != StreamAudio) {
			continue
		}
		format := state.format
		if state.videoInfo != nil {
			format = state.videoInfo.Generation
		}
		formats = append(formats, format)
		list = append(list, fmt.Sprintf("%s (%s)", formatID(uint64(pid)), format))
	}
	if len(formats) > 0 {
		fields = appendField(fields, "Format", strings.Join(formats, " / "))
	}
	if len(list) > 0 {
		fields = appendField(fields, "List", strings.Join(list, " / "))
	}
	fields = appendField(fields, "Service name", d.serviceName)
	fields = appendField(fields, "Service provider", d.serviceProvider)
	fields = appendField(fields, "Service type", d.serviceType)
	return Stream{Kind: StreamMenu, ProgramNumber: program.number, PID: program.pmtPID, Fields: fields}
}

func tsFormatName(packetSize int) string {
	if packetSize == m2tsPacketSize {
		return "BDAV"
	}
	return "MPEG-TS"
}
