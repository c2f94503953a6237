package avsinfo

// AnalyzeOptions tunes a parse session.
type AnalyzeOptions struct {
	// FastScan bounds the transport-stream scan to a packet budget once
	// at least one program and stream have been found.
	FastScan bool
}

func defaultAnalyzeOptions() AnalyzeOptions {
	return AnalyzeOptions{FastScan: true}
}

// AnalyzeFiles analyzes each path in order; analysis failures on one
// file abort the batch.
func AnalyzeFiles(paths []string) ([]Report, error) {
	reports := make([]Report, 0, len(paths))
	for _, path := range paths {
		report, err := AnalyzeFile(path)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}
