package avsinfo

import "fmt"

// Field rendering shared by the TS, BMFF and raw-ES paths.

func buildTSStream(state *tsStreamState) Stream {
	stream := Stream{
		Kind:            state.kind,
		ProgramNumber:   state.programNumber,
		PID:             state.pid,
		StreamType:      state.streamType,
		Language:        state.desc.language,
		Registration:    state.desc.registration,
		VideoInfo:       state.videoInfo,
		AudioInfo:       state.audioInfo,
		VideoDescriptor: state.desc.videoDescriptor,
		AudioDescriptor: state.desc.audioDescriptor,
	}

	fields := []Field{{Name: "ID", Value: formatID(uint64(state.pid))}}
	if state.programNumber > 0 {
		fields = appendField(fields, "Menu ID", formatID(uint64(state.programNumber)))
	}
	format := state.format
	if state.videoInfo != nil {
		format = state.videoInfo.Generation
	}
	fields = appendField(fields, "Format", format)

	switch {
	case state.videoInfo != nil:
		fields = append(fields, videoInfoFields(state.videoInfo)...)
	case state.audioInfo != nil:
		fields = append(fields, audioInfoFields(state.audioInfo)...)
	case state.desc.videoDescriptor != nil:
		fields = append(fields, videoDescriptorFields(state.desc.videoDescriptor)...)
	case state.desc.audioDescriptor != nil:
		fields = append(fields, audioDescriptorFields(state.desc.audioDescriptor)...)
	}

	fields = appendField(fields, "Codec ID", fmt.Sprintf("%d", state.streamType))
	fields = appendField(fields, "Language", languageName(state.desc.language))
	fields = appendField(fields, "Registration", state.desc.registration)
	if state.desc.maxBitrate > 0 {
		fields = appendField(fields, "Maximum bit rate", formatBitrate(float64(state.desc.maxBitrate)))
	}
	stream.Fields = fields
	return stream
}

func videoInfoFields(info *AVSVideoInfo) []Field {
	var fields []Field
	if info.Profile != "" {
		fields = appendField(fields, "Format profile", fmt.Sprintf("%s@%s", info.Profile, info.Level))
	}
	fields = appendField(fields, "Width", formatPixels(info.Width))
	fields = appendField(fields, "Height", formatPixels(info.Height))
	fields = appendField(fields, "Frame rate", formatFrameRate(info.FrameRate))
	fields = appendField(fields, "Bit rate", formatBitrate(float64(info.BitRate)))
	fields = appendField(fields, "Scan type", scanTypeName(info.Progressive))
	fields = appendField(fields, "Chroma subsampling", info.Chroma.String())
	fields = appendField(fields, "Bit depth", formatBitDepth(info.LumaDepth))
	fields = appendField(fields, "Low delay", yesNo(info.LowDelay))
	fields = appendField(fields, "Pixel aspect ratio", info.SAR)
	fields = appendField(fields, "Display aspect ratio", info.DAR)
	if info.HasDisplayExt {
		fields = appendField(fields, "Video format", info.VideoFormat)
		fields = appendField(fields, "Sample range", info.SampleRange)
		fields = appendField(fields, "Color description", info.ColourDesc)
		fields = appendField(fields, "Color primaries", info.Primaries)
		fields = appendField(fields, "Transfer characteristics", info.Transfer)
		fields = appendField(fields, "Matrix coefficients", info.Matrix)
		fields = appendField(fields, "Display width", formatPixels(info.DisplayWidth))
		fields = appendField(fields, "Display height", formatPixels(info.DisplayHeight))
		if info.HasPackingMode {
			fields = appendField(fields, "Packing mode", info.PackingMode.String())
		}
	}
	fields = appendField(fields, "HDR format", info.HDRMetadata)
	return fields
}

func audioInfoFields(info *AVSAudioInfo) []Field {
	var fields []Field
	fields = appendField(fields, "Format profile", info.CodingProfile)
	fields = appendField(fields, "Codec", info.CodecID)
	fields = appendField(fields, "Sampling rate", formatSampleRate(info.SamplingFrequency))
	fields = appendField(fields, "Bit depth", formatBitDepth(info.Resolution))
	fields = appendField(fields, "Channel(s)", formatChannels(info.ChannelNumber))
	fields = appendField(fields, "Channel layout", info.ChannelConfiguration)
	if info.ObjectChannelNumber > 0 {
		fields = appendField(fields, "Objects", fmt.Sprintf("%d", info.ObjectChannelNumber))
	}
	if info.HasHOAOrder {
		fields = appendField(fields, "HOA order", fmt.Sprintf("%d", info.HOAOrder))
	}
	fields = appendField(fields, "Bit rate", formatBitrate(float64(info.BitRate)))
	fields = appendField(fields, "Neural network", info.NNType)
	return fields
}

func videoDescriptorFields(desc *AVSVideoDescriptor) []Field {
	var fields []Field
	fields = appendField(fields, "Format profile", fmt.Sprintf("%s@%s", desc.Profile, desc.Level))
	fields = appendField(fields, "Frame rate", formatFrameRate(desc.FrameRate))
	fields = appendField(fields, "Chroma subsampling", desc.Chroma.String())
	fields = appendField(fields, "Bit depth", formatBitDepth(desc.LumaDepth))
	fields = appendField(fields, "Still pictures", yesNo(desc.AVSStillPresent))
	if desc.Generation == "AVS3" {
		fields = appendField(fields, "Color primaries", desc.Primaries)
		fields = appendField(fields, "Transfer characteristics", desc.Transfer)
		fields = appendField(fields, "Matrix coefficients", desc.Matrix)
	}
	return fields
}

func audioDescriptorFields(desc *AVSAudioDescriptor) []Field {
	var fields []Field
	fields = appendField(fields, "Codec", desc.CodecID)
	fields = appendField(fields, "Content type", desc.ContentType)
	fields = appendField(fields, "Sampling rate", formatSampleRate(desc.SamplingFrequency))
	fields = appendField(fields, "Bit depth", formatBitDepth(desc.Resolution))
	fields = appendField(fields, "Channel(s)", formatChannels(desc.ChannelNumber))
	fields = appendField(fields, "Channel layout", desc.ChannelConfiguration)
	if desc.ObjectChannelNumber > 0 {
		fields = appendField(fields, "Objects", fmt.Sprintf("%d", desc.ObjectChannelNumber))
	}
	if desc.HasHOAOrder {
		fields = appendField(fields, "HOA order", fmt.Sprintf("%d", desc.HOAOrder))
	}
	fields = appendField(fields, "Bit rate", formatBitrate(float64(desc.TotalBitrate)))
	return fields
}
