package avsinfo

import (
	"os"

	"github.com/cnotch/xlog"
)

// ConfigureLogging routes parse diagnostics. By default only warnings
// reach stderr; debug mode lowers the level, and a log file adds a
// second JSON-encoded sink.
func ConfigureLogging(logFile string, debug bool) error {
	level := xlog.WarnLevel
	if debug {
		level = xlog.DebugLevel
	}
	console := xlog.NewCore(xlog.NewConsoleEncoder(xlog.LstdFlags), xlog.Lock(os.Stderr), level)
	if logFile == "" {
		xlog.ReplaceGlobal(xlog.New(console))
		return nil
	}
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	fileCore := xlog.NewCore(xlog.NewJSONEncoder(xlog.LstdFlags), file, level)
	xlog.ReplaceGlobal(xlog.New(xlog.NewTee(console, fileCore)))
	return nil
}
