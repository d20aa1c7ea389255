// Package logging builds the leveled logger shared by every dsboard
// component.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Options holds configuration for the logger.
type Options struct {
	// Path is the log file. Empty disables file output.
	Path  string
	Level string
	// Mirror also writes to this writer, usually stderr for CLI commands.
	// The TUI leaves it nil because it owns the terminal.
	Mirror io.Writer
}

// Logger is a log.Logger bound to the file it writes to
type Logger struct {
	*log.Logger
	// Session tags every line written by this process
	Session string
	file    *os.File
}

// New opens the log file for appending and returns a logger writing to it
// and to opts.Mirror.
func New(opts Options) (*Logger, error) {
	level, err := log.ParseLevel(opts.Level)
	if err != nil {
		level = log.InfoLevel
	}

	var writers []io.Writer
	var file *os.File
	if opts.Path != "" {
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		file, err = os.OpenFile(opts.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		writers = append(writers, file)
	}
	if opts.Mirror != nil {
		writers = append(writers, opts.Mirror)
	}

	var w io.Writer = io.Discard
	switch len(writers) {
	case 0:
	case 1:
		w = writers[0]
	default:
		w = io.MultiWriter(writers...)
	}

	session := uuid.NewString()[:8]
	logger := log.NewWithOptions(w, log.Options{
		Level:           level,
		Formatter:       log.LogfmtFormatter,
		ReportTimestamp: true,
		Prefix:          "dsboard",
	})
	return &Logger{
		Logger:  logger.With("session", session),
		Session: session,
		file:    file,
	}, nil
}

// Discard returns a logger that writes nothing
func Discard() *Logger {
	return &Logger{Logger: log.New(io.Discard)}
}

// Close flushes and closes the log file
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
