package avsinfo

// AVS3 (T/AI 109.2, GY/T 368) sequence-level syntax.

func avs3IsTenBitProfile(profileID uint32) bool {
	return profileID == 0x22 || profileID == 0x32
}

func avs3IsEnhancedProfile(profileID uint32) bool {
	return profileID == 0x30 || profileID == 0x32
}

func parseAVS3SequenceHeader(payload []byte) (*AVSVideoInfo, error) {
	br := newBitReader(payload)
	info := &AVSVideoInfo{}

	profileID := br.readBits(8)
	levelID := br.readBits(8)
	info.Progressive = br.readFlag()
	_ = br.readBit() // field_coded_sequence
	libraryStream := br.readFlag()
	libraryPictureEnable := false
	if !libraryStream {
		libraryPictureEnable = br.readFlag()
		if libraryPictureEnable {
			_ = br.readBit() // duplicate_sequence_header_flag
		}
	}
	br.checkMarkerBit()
	info.Width = br.readBits(14)
	br.checkMarkerBit()
	info.Height = br.readBits(14)
	info.Chroma = chromaFormat(br.readBits(2))
	samplePrecision := br.readBits(3)
	precision := samplePrecision
	if avs3IsTenBitProfile(profileID) {
		precision = br.readBits(3) // encoding_precision
	}
	br.checkMarkerBit()
	aspectRatio := br.readBits(4)
	frameRateCode := br.readBits(4)
	br.checkMarkerBit()
	bitRateLower := br.readBits(18)
	br.checkMarkerBit()
	bitRateUpper := br.readBits(12)
	info.LowDelay = br.readFlag()
	_ = br.readBit() // temporal_id_enable_flag
	br.checkMarkerBit()
	_ = br.readBits(18) // bbv_buffer_size
	br.checkMarkerBit()
	_ = br.readUE() // max_dpb_minus1
	_ = br.readBit() // rpl1_index_exist_flag
	rpl1SameAsRPL0 := br.readFlag()
	br.checkMarkerBit()

	numRefPicListSet0 := br.readUE()
	for i := uint32(0); i < numRefPicListSet0 && br.err() == nil; i++ {
		readAVS3ReferencePictureListSet(br, libraryPictureEnable)
	}
	if !rpl1SameAsRPL0 {
		numRefPicListSet1 := br.readUE()
		for i := uint32(0); i < numRefPicListSet1 && br.err() == nil; i++ {
			readAVS3ReferencePictureListSet(br, libraryPictureEnable)
		}
	}

	_ = br.readUE()    // num_ref_default_active_minus1[0]
	_ = br.readUE()    // num_ref_default_active_minus1[1]
	_ = br.readBits(3) // log2_lcu_size_minus2
	_ = br.readBits(2) // log2_min_cu_size_minus2
	_ = br.readBits(2) // log2_max_part_ratio_minus2
	_ = br.readBits(3) // max_split_times_minus6
	_ = br.readBits(3) // log2_min_qt_size_minus2
	_ = br.readBits(3) // log2_max_bt_size_minus2
	_ = br.readBits(2) // log2_max_eqt_size_minus3
	br.checkMarkerBit()
	if br.readFlag() { // weight_quant_enable_flag
		readWeightQuantMatrix(br)
	}
	_ = br.readBit()        // st_enable_flag
	saoEnable := br.readFlag()
	alfEnable := br.readFlag()
	affineEnable := br.readFlag()
	_ = br.readBit() // smvd_enable_flag
	_ = br.readBit() // ipcm_enable_flag
	amvrEnable := br.readFlag()
	numHMVPCand := br.readBits(4)
	_ = br.readBit() // umve_enable_flag
	if amvrEnable && numHMVPCand != 0 {
		_ = br.readBit() // emvr_enable_flag
	}
	_ = br.readBit() // intra_pf_enable_flag
	_ = br.readBit() // tscpm_enable_flag
	br.checkMarkerBit()
	if br.readFlag() { // dt_enable_flag
		_ = br.readBits(2) // log2_max_dt_size_minus4
	}
	_ = br.readBit() // pbt_enable_flag

	if avs3IsEnhancedProfile(profileID) {
		readAVS3EnhancedToolSet(br, affineEnable, alfEnable, &saoEnable)
	}

	if !info.LowDelay {
		_ = br.readBits(5) // output_reorder_delay
	}
	_ = br.readBit() // cross_patch_loop_filter_enable_flag
	_ = br.readBit() // ref_colocated_patch_flag
	if br.readFlag() { // stable_patch_flag
		if br.readFlag() { // uniform_patch_flag
			br.checkMarkerBit()
			_ = br.readUE() // patch_width_minus1
			_ = br.readUE() // patch_height_minus1
		}
	}
	br.skipBits(2) // reserved

	if err := br.err(); err != nil {
		return nil, err
	}

	info.Generation = "AVS3"
	info.ProfileID = byte(profileID)
	info.LevelID = byte(levelID)
	info.Profile = profileName(genAVS3, info.ProfileID)
	info.Level = levelName(genAVS3, info.LevelID)
	applyCommonDerivations(info, aspectRatio, frameRateCode, bitRateLower, bitRateUpper, precision, genAVS3)
	return info, nil
}

// readAVS3ReferencePictureListSet consumes reference_picture_list_set.
// library_index_flag is only coded when reference to the library is
// enabled for this set; otherwise every entry is a DOI delta.
func readAVS3ReferencePictureListSet(br *bitReader, libraryPictureEnable bool) {
	referenceToLibrary := false
	if libraryPictureEnable {
		referenceToLibrary = br.readFlag()
	}
	numRefPic := br.readUE()
	for i := uint32(0); i < numRefPic && br.err() == nil; i++ {
		libraryIndex := false
		if referenceToLibrary {
			libraryIndex = br.readFlag()
		}
		if libraryIndex {
			_ = br.readUE() // referenced_library_picture_index
		} else {
			absDeltaDOI := br.readUE()
			if absDeltaDOI > 0 {
				_ = br.readBit() // sign
			}
		}
	}
}

// readAVS3EnhancedToolSet consumes the additional tool flags coded for
// the enhanced (high) profiles. Enabling esao overrides sao.
func readAVS3EnhancedToolSet(br *bitReader, affineEnable, alfEnable bool, saoEnable *bool) {
	_ = br.readBit() // pmc_enable_flag
	_ = br.readBit() // iip_enable_flag
	_ = br.readBit() // sawp_enable_flag
	if affineEnable {
		_ = br.readBit() // asr_enable_flag
	}
	_ = br.readBit() // awp_enable_flag
	_ = br.readBit() // etmvp_mvap_enable_flag
	_ = br.readBit() // dmvr_enable_flag
	_ = br.readBit() // bio_enable_flag
	_ = br.readBit() // bgc_enable_flag
	_ = br.readBit() // inter_pf_enable_flag
	_ = br.readBit() // inter_pc_enable_flag
	_ = br.readBit() // obmc_enable_flag
	_ = br.readBit() // sbt_enable_flag
	_ = br.readBit() // ist_enable_flag
	esaoEnable := br.readFlag()
	_ = br.readBit() // ccsao_enable_flag
	if alfEnable {
		_ = br.readBit() // ealf_enable_flag
	}
	ibcEnable := br.readFlag()
	br.checkMarkerBit()
	iscEnable := br.readFlag()
	if ibcEnable || iscEnable {
		_ = br.readBits(4) // num_of_intra_hmvp_cand
	}
	_ = br.readBit() // fimc_enable_flag
	nnToolsSetHook := br.readBits(8)
	if nnToolsSetHook&1 != 0 {
		_ = br.readUE() // num_of_nn_filter_minus1
	}
	br.checkMarkerBit()
	if esaoEnable {
		*saoEnable = false
	}
}

func parseAVS3DisplayExtension(payload []byte, info *AVSVideoInfo) error {
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
	if br.readFlag() { // td_mode_flag
		packing := br.readBits(8)
		_ = br.readBit() // view_reverse_flag
		ext.HasPackingMode = true
		ext.PackingMode = packingModeFromCode(packing, 2)
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

// parseAVS3HDRExtension decodes the HDR dynamic metadata extension
// (extension id 0b0101).
func parseAVS3HDRExtension(payload []byte, info *AVSVideoInfo) error {
	br := newBitReader(payload)
	br.skipBits(4)
	metadataType := br.readBits(4)
	if err := br.err(); err != nil {
		return err
	}
	if metadataType == 5 {
		info.HDRMetadata = "HDR Vivid"
	} else {
		info.HDRMetadata = reservedToken
	}
	return nil
}
