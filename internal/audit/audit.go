// Package audit appends structured JSON events describing store operations.
// Events carry paths, counts and indices only, never sites, usernames,
// secrets or notes.
package audit

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// Fields carries event metadata.
type Fields = map[string]any

// Logger records audit events.
type Logger interface {
	Record(event string, fields Fields)
	Close() error
}

// Nop returns a logger that discards every event.
func Nop() Logger { return nopLogger{} }

type nopLogger struct{}

func (nopLogger) Record(string, Fields) {}
func (nopLogger) Close() error { return nil }

// FileLogger appends one timestamped JSON line per event to a log file.
type FileLogger struct {
	file *os.File
	log  zerolog.Logger
}

// NewFileLogger opens or creates the audit file at path for appending.
func NewFileLogger(path string) (*FileLogger, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	return &FileLogger{
		file: file,
		log:  zerolog.New(file).With().Timestamp().Logger(),
	}, nil
}

// Record writes one event line.
func (l *FileLogger) Record(event string, fields Fields) {
	l.log.Info().Fields(fields).Msg(event)
}

// Close closes the underlying file.
func (l *FileLogger) Close() error {
	if err := l.file.Close(); err != nil {
		return fmt.Errorf("close audit log: %w", err)
	}
	return nil
}
