package avsinfo

import (
	"io"
	"os"
)

// AnalyzeFile inspects one media file and reports every discovered
// stream, with AVS codec records decoded from the container descriptors
// and the elementary bitstreams.
func AnalyzeFile(path string) (Report, error) {
	return AnalyzeFileWithOptions(path, defaultAnalyzeOptions())
}

func AnalyzeFileWithOptions(path string, opts AnalyzeOptions) (Report, error) {
	file, err := os.Open(path)
	if err != nil {
		return Report{}, err
	}
	defer file.Close()
	stat, err := file.Stat()
	if err != nil {
		return Report{}, err
	}
	report, err := analyzeReader(file, stat.Size(), opts)
	if err != nil {
		return Report{}, err
	}
	report.Ref = path
	report.General.Fields = append([]Field{
		{Name: "Complete name", Value: path},
	}, report.General.Fields...)
	report.General.Fields = appendField(report.General.Fields, "File size", formatBytes(stat.Size()))
	return report, nil
}

func analyzeReader(file io.ReadSeeker, size int64, opts AnalyzeOptions) (Report, error) {
	header := make([]byte, maxSniffBytes)
	n, _ := io.ReadFull(file, header)
	header = header[:n]
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return Report{}, err
	}

	format := DetectFormat(header)
	report := Report{General: Stream{Kind: StreamGeneral}}
	report.General.Fields = appendField(report.General.Fields, "Format", string(format))

	switch format {
	case ContainerTS, ContainerBDAV, ContainerUnknown:
		// An unrecognized container still goes through the TS scanner;
		// it proceeds on the best-guess packet size and may legitimately
		// come back empty (the caller falls back to other inputs).
		streams, general, observed, ok := ParseMPEGTS(file, opts.FastScan)
		if ok {
			for _, field := range general {
				report.General.Fields = appendField(report.General.Fields, field.Name, field.Value)
			}
			report.Streams = streams
			report.ObservedTypes = observed
		}
	case ContainerBMFF:
		if ra, isRA := file.(io.ReaderAt); isRA {
			streams, general, observed, ok := ParseBMFF(ra, size)
			if ok {
				for _, field := range general {
					report.General.Fields = appendField(report.General.Fields, field.Name, field.Value)
				}
				report.Streams = streams
				report.ObservedTypes = observed
			}
		}
	case ContainerRawAVS:
		data, err := readAllCapped(file, maxVideoScanBytes)
		if err != nil {
			return Report{}, err
		}
		if stream, ok := analyzeRawAVSVideo(data); ok {
			report.Streams = append(report.Streams, stream)
		}
	case ContainerRawAV3A:
		data, err := readAllCapped(file, maxAudioScanBytes)
		if err != nil {
			return Report{}, err
		}
		if stream, ok := AnalyzeRawES(data, codecAV3AAudio); ok {
			report.Streams = append(report.Streams, stream)
		}
	}
	return report, nil
}

// analyzeRawAVSVideo decides the generation of a bare AVS elementary
// stream by attempting the parsers newest-first; the per-generation
// marker-bit layout rejects the wrong choices.
func analyzeRawAVSVideo(data []byte) (Stream, bool) {
	for _, kind := range []codecKind{codecAVS3Video, codecAVS2, codecAVS1} {
		if stream, ok := AnalyzeRawES(data, kind); ok {
			return stream, true
		}
	}
	return Stream{}, false
}

func readAllCapped(r io.Reader, limit int) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, int64(limit)))
	if err != nil {
		return nil, err
	}
	return data, nil
}
