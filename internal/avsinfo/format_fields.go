package avsinfo

import (
	"fmt"
	"math"
)

func formatID(value uint64) string {
	return fmt.Sprintf("%d (0x%X)", value, value)
}

func formatStreamTypeName(streamType byte, format string) string {
	if format == "" {
		return fmt.Sprintf("0x%02X", streamType)
	}
	return fmt.Sprintf("0x%02X (%s)", streamType, format)
}

func formatPixels(value uint32) string {
	if value == 0 {
		return ""
	}
	return fmt.Sprintf("%d pixels", value)
}

func formatFrameRate(rate float64) string {
	if rate <= 0 {
		return ""
	}
	if math.Abs(rate-math.Round(rate)) < 0.0005 {
		return fmt.Sprintf("%.0f FPS", rate)
	}
	return fmt.Sprintf("%.3f FPS", rate)
}

func formatBitrate(bitsPerSecond float64) string {
	if bitsPerSecond <= 0 {
		return ""
	}
	if bitsPerSecond >= 10_000_000 {
		return fmt.Sprintf("%.1f Mb/s", bitsPerSecond/1_000_000)
	}
	kbps := int64(math.Round(bitsPerSecond / 1000))
	return fmt.Sprintf("%s kb/s", formatThousands(kbps))
}

func formatThousands(value int64) string {
	if value < 1000 {
		return fmt.Sprintf("%d", value)
	}
	parts := []string{}
	for value > 0 {
		chunk := value % 1000
		value /= 1000
		if value > 0 {
			parts = append(parts, fmt.Sprintf("%03d", chunk))
		} else {
			parts = append(parts, fmt.Sprintf("%d", chunk))
		}
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	result := parts[0]
	for i := 1; i < len(parts); i++ {
		result += " " + parts[i]
	}
	return result
}

func formatBitDepth(bits int) string {
	if bits <= 0 {
		return ""
	}
	return fmt.Sprintf("%d bits", bits)
}

func formatSampleRate(rate uint32) string {
	if rate == 0 {
		return ""
	}
	if rate%1000 == 0 {
		return fmt.Sprintf("%d kHz", rate/1000)
	}
	return fmt.Sprintf("%.1f kHz", float64(rate)/1000)
}

func formatChannels(value int) string {
	if value <= 0 {
		return ""
	}
	if value == 1 {
		return "1 channel"
	}
	return fmt.Sprintf("%d channels", value)
}

func yesNo(value bool) string {
	if value {
		return "Yes"
	}
	return "No"
}

func scanTypeName(progressive bool) string {
	if progressive {
		return "Progressive"
	}
	return "Interlaced"
}
