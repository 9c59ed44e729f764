// Package audit is the run's sole audit trail: every decision, success
// and failure goes through one Logger that appends a timestamped line
// to the log file and mirrors it to the console.
package audit

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/pkg/errors"
)

const (
	timestampLayout = "2006-01-02 15:04:05"
	fileNameLayout  = "20060102_150405"
)

var (
	consoleInfo  = color.New(color.Reset).FprintlnFunc()
	consoleError = color.New(color.FgRed).FprintlnFunc()
	consoleWarn  = color.New(color.FgHiMagenta).FprintlnFunc()
)

// Logger appends ordered lines to a per-run log file and mirrors each
// one to the console. A failed file append is reported on the console
// and never interrupts the run.
type Logger struct {
	file    io.WriteCloser
	console io.Writer
	path    string
}

// New creates log_file_<YYYYMMDD_HHMMSS>.log (prefix configurable) in
// dir and returns a Logger mirroring to stdout.
func New(dir, prefix string) (*Logger, error) {
	name := fmt.Sprintf("%s_%s.log", prefix, time.Now().Format(fileNameLayout))
	path := filepath.Join(dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create log file %s", path)
	}

	return &Logger{file: f, console: os.Stdout, path: path}, nil
}

// Path returns the log file location.
func (l *Logger) Path() string {
	return l.path
}

// Log records an informational event.
func (l *Logger) Log(format string, args ...any) {
	l.write(consoleInfo, fmt.Sprintf(format, args...))
}

// Error records a failure. Same sink as Log, red on the console.
func (l *Logger) Error(format string, args ...any) {
	l.write(consoleError, fmt.Sprintf(format, args...))
}

func (l *Logger) write(console func(io.Writer, ...any), message string) {
	line := fmt.Sprintf("%s - %s", time.Now().Format(timestampLayout), message)
	console(l.console, line)
	if _, err := fmt.Fprintln(l.file, line); err != nil {
		consoleWarn(l.console, fmt.Sprintf("failed to append to %s: %v", l.path, err))
	}
}

// Close releases the log file.
func (l *Logger) Close() error {
	return l.file.Close()
}
