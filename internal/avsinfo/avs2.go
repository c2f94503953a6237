package avsinfo

// AVS2 (GB/T 33475.2) sequence-level syntax.

func avs2IsHighPrecisionProfile(profileID uint32) bool {
	return profileID == 0x12 || profileID == 0x22 || profileID == 0x32
}

func avs2IsMultiViewProfile(profileID byte) bool {
	return profileID == 0x30 || profileID == 0x32
}

func parseAVS2SequenceHeader(payload []byte) (*AVSVideoInfo, error) {
	br := newBitReader(payload)
	info := &AVSVideoInfo{}

	profileID := br.readBits(8)
	levelID := br.readBits(8)
	info.Progressive = br.readFlag()
	_ = br.readBit() // field_coded_sequence
	info.Width = br.readBits(14)
	info.Height = br.readBits(14)
	info.Chroma = chromaFormat(br.readBits(2))
	samplePrecision := br.readBits(3)
	precision := samplePrecision
	if avs2IsHighPrecisionProfile(profileID) {
		precision = br.readBits(3) // encoding_precision
	}
	aspectRatio := br.readBits(4)
	frameRateCode := br.readBits(4)
	bitRateLower := br.readBits(18)
	br.checkMarkerBit()
	bitRateUpper := br.readBits(12)
	info.LowDelay = br.readFlag()
	br.checkMarkerBit()
	_ = br.readBit()   // temporal_id_enable_flag
	_ = br.readBits(18) // bbv_buffer_size
	_ = br.readBits(3)  // lcu_size
	if br.readFlag() { // weight_quant_enable_flag
		readWeightQuantMatrix(br)
	}
	_ = br.readBit() // background_picture_enable_flag
	_ = br.readBit() // mhpskip_enable_flag
	_ = br.readBit() // dhp_enable_flag
	_ = br.readBit() // wsm_enable_flag
	_ = br.readBit() // amp_enable_flag
	_ = br.readBit() // nsqt_enable_flag
	_ = br.readBit() // nsip_enable_flag
	_ = br.readBit() // secondary_transform_enable_flag
	_ = br.readBit() // sao_enable_flag
	_ = br.readBit() // alf_enable_flag
	_ = br.readBit() // pmvr_enable_flag
	br.checkMarkerBit()

	numOfRCS := br.readBits(6)
	for i := uint32(0); i < numOfRCS && br.err() == nil; i++ {
		readAVS2ReferenceConfigurationSet(br)
	}
	if !info.LowDelay {
		_ = br.readBits(5) // output_reorder_delay
	}
	_ = br.readBit() // cross_slice_loopfilter_enable_flag
	if info.Chroma == chroma444 {
		_ = br.readBit() // universal_string_prediction_enable_flag
	}
	br.skipBits(2) // reserved

	if err := br.err(); err != nil {
		return nil, err
	}

	info.Generation = "AVS2"
	info.ProfileID = byte(profileID)
	info.LevelID = byte(levelID)
	info.Profile = profileName(genAVS2, info.ProfileID)
	info.Level = levelName(genAVS2, info.LevelID)
	applyCommonDerivations(info, aspectRatio, frameRateCode, bitRateLower, bitRateUpper, precision, genAVS2)
	return info, nil
}

func readAVS2ReferenceConfigurationSet(br *bitReader) {
	_ = br.readBit() // refered_by_others_flag
	numRef := br.readBits(3)
	for i := uint32(0); i < numRef; i++ {
		_ = br.readBits(6) // delta_doi_of_reference_picture
	}
	numRemoved := br.readBits(3)
	for i := uint32(0); i < numRemoved; i++ {
		_ = br.readBits(6) // delta_doi_of_removed_picture
	}
	br.checkMarkerBit()
}

// readDepthRange consumes a near/far depth-range record.
func readDepthRange(br *bitReader) {
	for plane := 0; plane < 2; plane++ {
		_ = br.readBit() // sign
		_ = br.readBits(8)
		br.checkMarkerBit()
		_ = br.readBits(22)
		br.checkMarkerBit()
	}
}

// readCameraParameterSet consumes focal length, camera position and
// camera shift; every mantissa is fenced by a marker bit.
func readCameraParameterSet(br *bitReader) {
	// focal_length
	_ = br.readBits(8)
	br.checkMarkerBit()
	_ = br.readBits(22)
	br.checkMarkerBit()
	// camera_position
	_ = br.readBit()
	_ = br.readBits(8)
	br.checkMarkerBit()
	_ = br.readBits(22)
	br.checkMarkerBit()
	// camera_shift_x
	_ = br.readBits(8)
	br.checkMarkerBit()
	_ = br.readBits(22)
	br.checkMarkerBit()
	_ = br.readBit()
}

func parseAVS2DisplayExtension(payload []byte, info *AVSVideoInfo) error {
	br := newBitReader(payload)
	ext := &AVSVideoInfo{}
	br.skipBits(4)

	videoFormat := br.readBits(3)
	sampleRangeFull := br.readFlag()
	var primaries, transfer, matrix uint32
	if br.readFlag() {
		primaries = br.readBits(8)
		transfer = br.readBits(8)
		matrix = br.readBits(8)
	}
	ext.DisplayWidth = br.readBits(14)
	br.checkMarkerBit()
	ext.DisplayHeight = br.readBits(14)

	if avs2IsMultiViewProfile(info.ProfileID) {
		contentDesc := br.readBits(2) // sequence_content_description
		if contentDesc == 2 {
			readDepthRange(br)
			readCameraParameterSet(br)
		}
	}
	if br.readFlag() { // td_mode_flag
		packing := br.readBits(8) // td_packing_mode
		_ = br.readBit()          // view_reverse_flag
		ext.HasPackingMode = true
		ext.PackingMode = packingModeFromCode(packing, 4)
	}

	if err := br.err(); err != nil {
		return err
	}

	ext.HasDisplayExt = true
	ext.VideoFormat = videoFormatNames[videoFormat]
	ext.SampleRange = sampleRangeName(sampleRangeFull)
	applyDisplayColour(ext, primaries, transfer, matrix, 9, 12, 9)
	mergeDisplayExtension(info, ext)
	return nil
}
