package avsinfo

// AVS1 (GB/T 20090.2) sequence-level syntax. The broadcasting extension
// (AVS1+, GY/T 257) shares the layout and is recognized by profile 0x48.

const (
	avs1ProfileShenzhan     = 0x24
	avs1ProfileBroadcasting = 0x48
)

func parseAVS1SequenceHeader(payload []byte) (*AVSVideoInfo, error) {
	br := newBitReader(payload)
	info := &AVSVideoInfo{}

	profileID := br.readBits(8)
	levelID := br.readBits(8)
	info.Progressive = br.readFlag()
	info.Width = br.readBits(14)
	info.Height = br.readBits(14)
	info.Chroma = chromaFormat(br.readBits(2))
	samplePrecision := br.readBits(3)
	aspectRatio := br.readBits(4)
	frameRateCode := br.readBits(4)
	bitRateLower := br.readBits(18)
	br.checkMarkerBit()
	bitRateUpper := br.readBits(12)
	info.LowDelay = br.readFlag()
	br.checkMarkerBit()
	_ = br.readBits(18) // bbv_buffer_size

	if profileID == avs1ProfileShenzhan {
		_ = br.readBit() // background_picture_disable
		corePictureDisable := br.readFlag()
		if !corePictureDisable {
			_ = br.readBits(4) // core_picture_buffer_size
		}
		_ = br.readBit() // slice_set_disable
		br.checkMarkerBit()
		_ = br.readBits(4) // scene_model
		if corePictureDisable {
			br.skipBits(5)
		} else {
			br.skipBits(3)
		}
	} else {
		br.skipBits(3)
	}

	if err := br.err(); err != nil {
		return nil, err
	}

	info.ProfileID = byte(profileID)
	info.LevelID = byte(levelID)
	if profileID == avs1ProfileBroadcasting {
		info.Generation = "AVS+"
	} else {
		info.Generation = "AVS"
	}
	info.Profile = profileName(genAVS1, info.ProfileID)
	info.Level = levelName(genAVS1, info.LevelID)
	applyCommonDerivations(info, aspectRatio, frameRateCode, bitRateLower, bitRateUpper, samplePrecision, genAVS1)
	return info, nil
}

// parseAVS1DisplayExtension decodes sequence_display_extension; payload
// starts at the byte holding the extension id nibble.
func parseAVS1DisplayExtension(payload []byte, info *AVSVideoInfo) error {
	br := newBitReader(payload)
	ext := &AVSVideoInfo{}
	br.skipBits(4) // extension id, checked by the dispatcher

	videoFormat := br.readBits(3)
	sampleRangeFull := br.readFlag()
	var primaries, transfer, matrix uint32
	if br.readFlag() { // colour_description
		primaries = br.readBits(8)
		transfer = br.readBits(8)
		matrix = br.readBits(8)
	}
	ext.DisplayWidth = br.readBits(14)
	br.checkMarkerBit()
	ext.DisplayHeight = br.readBits(14)
	packing := br.readBits(2) // stereo_packing_mode

	if err := br.err(); err != nil {
		return err
	}

	ext.HasDisplayExt = true
	ext.VideoFormat = videoFormatNames[videoFormat]
	ext.SampleRange = sampleRangeName(sampleRangeFull)
	applyDisplayColour(ext, primaries, transfer, matrix, 8, 10, 7)
	ext.HasPackingMode = true
	ext.PackingMode = packingModeFromCode(packing, 2)

	mergeDisplayExtension(info, ext)
	return nil
}

// mergeDisplayExtension copies a successfully parsed extension into the
// sequence record. Parsing into a scratch record first keeps a marker
// violation mid-extension from leaving the record half written.
func mergeDisplayExtension(info, ext *AVSVideoInfo) {
	info.HasDisplayExt = true
	info.VideoFormat = ext.VideoFormat
	info.SampleRange = ext.SampleRange
	info.ColourDesc = ext.ColourDesc
	info.Primaries = ext.Primaries
	info.Transfer = ext.Transfer
	info.Matrix = ext.Matrix
	info.DisplayWidth = ext.DisplayWidth
	info.DisplayHeight = ext.DisplayHeight
	info.HasPackingMode = ext.HasPackingMode
	info.PackingMode = ext.PackingMode
}
