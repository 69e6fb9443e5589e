// Package logging builds the slog logger shared by macperms commands.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/tmc/macperms/internal/system"
)

// Options selects level, format and destination.
type Options struct {
	Debug bool
	JSON  bool
	// Dest is "stderr" (the default), "file:<path>" or "both:<path>".
	Dest string
	// Time keeps timestamps in text output.
	Time bool
}

// OptionsFromEnv reads MACPERMS_DEBUG, MACPERMS_LOG_JSON, MACPERMS_LOG_DEST
// and MACPERMS_LOG_TIME.
func OptionsFromEnv() Options {
	return Options{
		Debug: system.IsDebugEnabled(),
		JSON:  system.GetBool(system.EnvLogJSON),
		Dest:  system.GetString(system.EnvLogDest, "stderr"),
		Time:  system.GetBool(system.EnvLogTime),
	}
}

// New creates a configured logger. Log files that cannot be opened are
// reported on stderr and skipped.
func New(o Options) *slog.Logger {
	return newLogger(o, os.Stderr)
}

func newLogger(o Options, stderr io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if o.Debug {
		level = slog.LevelDebug
	}

	var writers []io.Writer
	switch {
	case strings.HasPrefix(o.Dest, "file:"):
		logPath := strings.TrimPrefix(o.Dest, "file:")
		if f, err := openLog(logPath); err == nil {
			writers = append(writers, f)
		} else {
			fmt.Fprintf(stderr, "macperms: failed to open log file %s: %v\n", logPath, err)
			writers = append(writers, stderr)
		}
	case strings.HasPrefix(o.Dest, "both:"):
		logPath := strings.TrimPrefix(o.Dest, "both:")
		writers = append(writers, stderr)
		if f, err := openLog(logPath); err == nil {
			writers = append(writers, f)
		} else {
			fmt.Fprintf(stderr, "macperms: failed to open log file %s: %v\n", logPath, err)
		}
	default:
		writers = append(writers, stderr)
	}

	var output io.Writer
	if len(writers) == 1 {
		output = writers[0]
	} else {
		output = io.MultiWriter(writers...)
	}

	var handler slog.Handler
	if o.JSON {
		handler = slog.NewJSONHandler(output, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(output, &slog.HandlerOptions{
			Level: level,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				// Drop time for cleaner terminal output.
				if a.Key == slog.TimeKey && !o.Time && len(groups) == 0 {
					return slog.Attr{}
				}
				return a
			},
		})
	}
	return slog.New(handler).With("component", "macperms")
}

func openLog(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
}
