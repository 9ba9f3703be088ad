// Package logging wires slog and zerolog outputs: console, log file,
// Graylog and the OTel bridge.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Graylog2/go-gelf/gelf"
)

// LogFilePath builds a log file path using OS-appropriate path separators.
func LogFilePath(logsDir, appName string, sessionStart time.Time) string {
	return filepath.Join(
		logsDir,
		fmt.Sprintf("%s.%s.log", appName, sessionStart.Format("20060102_150405")),
	)
}

// OpenLogFile creates logsDir if needed and opens a fresh log file in it.
func OpenLogFile(logsDir, appName string, sessionStart time.Time) (*os.File, error) {
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create logs dir: %w", err)
	}
	path := LogFilePath(logsDir, appName, sessionStart)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

// NewGraylogWriter opens a GELF UDP writer to address (host:port).
func NewGraylogWriter(address string) (*gelf.Writer, error) {
	w, err := gelf.NewWriter(address)
	if err != nil {
		return nil, fmt.Errorf("failed to create graylog writer: %w", err)
	}
	w.Facility = ServiceName
	return w, nil
}
