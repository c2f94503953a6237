package avsinfo

import (
	"github.com/avstools/go-avsinfo/internal/avsinfo"
)

// Types
type StreamKind = avsinfo.StreamKind
type Field = avsinfo.Field
type Stream = avsinfo.Stream
type Report = avsinfo.Report
type AnalyzeOptions = avsinfo.AnalyzeOptions
type AVSVideoInfo = avsinfo.AVSVideoInfo
type AVSAudioInfo = avsinfo.AVSAudioInfo
type AVSVideoDescriptor = avsinfo.AVSVideoDescriptor
type AVSAudioDescriptor = avsinfo.AVSAudioDescriptor
type SampleSource = avsinfo.SampleSource

// Constants
const (
	StreamGeneral = avsinfo.StreamGeneral
	StreamVideo   = avsinfo.StreamVideo
	StreamAudio   = avsinfo.StreamAudio
	StreamText    = avsinfo.StreamText
	StreamMenu    = avsinfo.StreamMenu
)

// Functions
func AnalyzeFile(path string) (Report, error) {
	return avsinfo.AnalyzeFile(path)
}

func AnalyzeFileWithOptions(path string, opts AnalyzeOptions) (Report, error) {
	return avsinfo.AnalyzeFileWithOptions(path, opts)
}

func AnalyzeFiles(paths []string) ([]Report, error) {
	return avsinfo.AnalyzeFiles(paths)
}

func AnalyzeSamples(source SampleSource) ([]Stream, []string) {
	return avsinfo.AnalyzeSamples(source)
}

// Rendering
func RenderText(reports []Report) string {
	return avsinfo.RenderText(reports)
}

func RenderJSON(reports []Report) string {
	return avsinfo.RenderJSON(reports)
}
