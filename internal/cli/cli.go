package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/avstools/go-avsinfo/internal/avsinfo"
)

const (
	exitOK    = 0
	exitError = 1
)

type Options struct {
	Full     bool
	Output   string
	LogFile  string
	DebugLog bool
	FullScan bool
}

func Run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		return exitError
	}

	program := programName(args[0])
	opts := Options{}
	files := make([]string, 0)

	for i := 1; i < len(args); i++ {
		original := args[i]
		normalized := normalizeArg(original)

		switch {
		case normalized == "--full" || normalized == "-f":
			opts.Full = true
		case normalized == "--fullscan":
			opts.FullScan = true
		case normalized == "--debug":
			opts.DebugLog = true
		case normalized == "--help" || normalized == "-h":
			Help(program, stdout)
			return exitOK
		case strings.HasPrefix(normalized, "--output="):
			if value, ok := valueAfterEqual(original); ok {
				opts.Output = value
			} else {
				HelpOutput(program, stdout)
				return exitError
			}
		case strings.HasPrefix(normalized, "--logfile"):
			opts.LogFile = valueAfterLogfile(original)
		case normalized == "--version":
			Version(stdout)
			return exitOK
		case strings.HasPrefix(normalized, "--"):
			if normalized != "--" {
				fmt.Fprintf(stderr, "Unknown option: %s\n", original)
			}
		default:
			files = append(files, original)
		}
	}

	if len(files) == 0 {
		return Usage(program, stdout)
	}

	if err := avsinfo.ConfigureLogging("", opts.DebugLog); err != nil {
		fmt.Fprintln(stderr, err.Error())
		return exitError
	}

	output, err := runCore(opts, files)
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return exitError
	}
	if output != "" {
		fmt.Fprint(stdout, output)
	}
	if opts.LogFile != "" {
		if err := os.WriteFile(opts.LogFile, []byte(output), 0o644); err != nil {
			fmt.Fprintln(stderr, err.Error())
			return exitError
		}
	}
	return exitOK
}

func runCore(opts Options, files []string) (string, error) {
	reports := make([]avsinfo.Report, 0, len(files))
	for _, path := range files {
		report, err := avsinfo.AnalyzeFileWithOptions(path, avsinfo.AnalyzeOptions{
			FastScan: !opts.FullScan,
		})
		if err != nil {
			return "", fmt.Errorf("%s: %w", path, err)
		}
		reports = append(reports, report)
	}

	switch strings.ToUpper(opts.Output) {
	case "", "TEXT":
		return avsinfo.RenderText(reports), nil
	case "JSON":
		return avsinfo.RenderJSON(reports), nil
	default:
		return "", fmt.Errorf("unsupported output format %q", opts.Output)
	}
}

func programName(arg0 string) string {
	name := filepath.Base(arg0)
	if runtime.GOOS == "windows" {
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}
	return name
}

func normalizeArg(arg string) string {
	eq := strings.IndexByte(arg, '=')
	if eq == -1 {
		eq = len(arg)
	}
	return strings.ToLower(arg[:eq]) + arg[eq:]
}

func valueAfterEqual(arg string) (string, bool) {
	eq := strings.IndexByte(arg, '=')
	if eq == -1 {
		return "", false
	}
	return arg[eq+1:], true
}

func valueAfterLogfile(arg string) string {
	if value, ok := valueAfterEqual(arg); ok {
		return value
	}
	return ""
}
