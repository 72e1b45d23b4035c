// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package runlog writes the per-run log file. Each line carries the
// "2006-01-02 15:04:05,000 - LEVEL - " prefix that the ledger parser
// strips, so a verbose run's log can be copied to the ledger path and
// replayed as-is.
package runlog

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// timeLayout renders the millisecond timestamp with a comma separator,
// matching the prefix the ledger parser recognizes.
const timeLayout = "2006-01-02 15:04:05,000"

// now is replaceable in tests.
var now = time.Now

// Logger writes prefixed lines to an underlying writer. The zero value is
// not usable; construct with New, Open, or Discard.
type Logger struct {
	mu   sync.Mutex
	w    io.Writer
	file *os.File
}

// New returns a Logger writing to w.
func New(w io.Writer) *Logger {
	return &Logger{w: w}
}

// Open creates the log file at path if needed and returns a Logger
// appending to it, so successive runs accumulate in one file.
func Open(path string) (*Logger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening run log %s: %w", path, err)
	}
	return &Logger{w: f, file: f}, nil
}

// Discard returns a Logger that drops everything, for non-verbose runs
// and tests.
func Discard() *Logger {
	return &Logger{w: io.Discard}
}

// Info logs one message at INFO level. Embedded newlines split the message
// into multiple prefixed lines so the output stays line-oriented.
func (l *Logger) Info(format string, v ...any) {
	l.write("INFO", fmt.Sprintf(format, v...))
}

// Error logs one message at ERROR level.
func (l *Logger) Error(format string, v ...any) {
	l.write("ERROR", fmt.Sprintf(format, v...))
}

func (l *Logger) write(level, msg string) {
	stamp := now().Format(timeLayout)
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, line := range strings.Split(msg, "\n") {
		fmt.Fprintf(l.w, "%s - %s - %s\n", stamp, level, line)
	}
}

// LineWriter adapts the logger to io.Writer: every full line written to it
// becomes one INFO log line. The ledger codec writes through this so its
// entries land in the log with the prefix applied per line.
func (l *Logger) LineWriter() io.Writer {
	return &lineWriter{log: l}
}

// Close flushes and closes the underlying file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

type lineWriter struct {
	log *Logger
	buf bytes.Buffer
}

func (lw *lineWriter) Write(p []byte) (int, error) {
	lw.buf.Write(p)
	for {
		line, err := lw.buf.ReadString('\n')
		if err != nil {
			// Partial line stays buffered until its newline arrives.
			lw.buf.WriteString(line)
			break
		}
		lw.log.Info("%s", strings.TrimSuffix(line, "\n"))
	}
	return len(p), nil
}
