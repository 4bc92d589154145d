package sentry

import (
	"bufio"
	"bytes"
	"io"

	gosentry "github.com/getsentry/sentry-go"
)

// Level is the severity a Writer reports at.
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

func (l Level) sentryLevel() gosentry.Level {
	switch l {
	case LevelError:
		return gosentry.LevelError
	case LevelWarning:
		return gosentry.LevelWarning
	default:
		return gosentry.LevelInfo
	}
}

// Writer tees log output to sentry. Error lines become events, everything
// else becomes a breadcrumb attached to the next event.
type Writer struct {
	inner io.Writer
	level Level
}

// NewWriter returns a Writer that always writes to inner first.
func NewWriter(inner io.Writer, level Level) *Writer {
	return &Writer{inner: inner, level: level}
}

func (w *Writer) Write(p []byte) (int, error) {
	n, err := w.inner.Write(p)
	if !active.Load() {
		return n, err
	}
	for _, line := range logLines(p) {
		if w.level == LevelError {
			gosentry.CaptureMessage(line)
			continue
		}
		gosentry.AddBreadcrumb(&gosentry.Breadcrumb{
			Level:    w.level.sentryLevel(),
			Category: "log",
			Message:  line,
		})
	}
	return n, err
}

// logLines splits a log write into its non-blank lines. Game output relayed
// through the logger can carry several lines in one write.
func logLines(p []byte) []string {
	var out []string
	sc := bufio.NewScanner(bytes.NewReader(p))
	for sc.Scan() {
		if line := bytes.TrimSpace(sc.Bytes()); len(line) > 0 {
			out = append(out, string(line))
		}
	}
	return out
}
