// Package logger builds the logrus logger used across the application.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ytget/ytfetch/internal/platform"
)

// Options selects the log destination and verbosity
type Options struct {
	Level string
	// File switches to JSON output appended to the file; empty logs text to Out
	File string
	Out  io.Writer
}

// New creates a logger from opts. The returned closer releases the log file.
func New(opts Options) (*log.Logger, io.Closer, error) {
	logger := log.New()
	logger.SetLevel(ParseLevel(opts.Level))

	if opts.File == "" {
		out := opts.Out
		if out == nil {
			out = os.Stderr
		}
		logger.Out = out
		logger.Formatter = &log.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.TimeOnly,
		}
		return logger, nopCloser{}, nil
	}

	path, err := platform.ExpandHome(opts.File)
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	logger.Out = f
	logger.Formatter = &log.JSONFormatter{
		TimestampFormat: time.RFC3339Nano,
	}
	return logger, f, nil
}

// ParseLevel converts a level name to a logrus level, defaulting to info
func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return log.TraceLevel
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// Nop returns a logger that discards everything
func Nop() *log.Logger {
	logger := log.New()
	logger.Out = io.Discard
	logger.SetLevel(log.PanicLevel)
	return logger
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
