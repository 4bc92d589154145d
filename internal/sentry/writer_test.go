package sentry

import (
	"bytes"
	"testing"

	gosentry "github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
)

func TestWriter_InactivePassesThrough(t *testing.T) {
	active.Store(false)
	for _, level := range []Level{LevelInfo, LevelWarning, LevelError} {
		var buf bytes.Buffer
		msg := []byte("ERROR: instance launch failed\n")

		n, err := NewWriter(&buf, level).Write(msg)
		assert.NoError(t, err)
		assert.Equal(t, len(msg), n)
		assert.Equal(t, string(msg), buf.String())
	}
}

func TestLogLines(t *testing.T) {
	assert.Equal(t, []string{"first", "second"}, logLines([]byte("first\r\n\n  second  \n")))
	assert.Empty(t, logLines([]byte("\n \n")))
}

func TestLevel_SentryLevel(t *testing.T) {
	assert.Equal(t, gosentry.LevelError, LevelError.sentryLevel())
	assert.Equal(t, gosentry.LevelWarning, LevelWarning.sentryLevel())
	assert.Equal(t, gosentry.LevelInfo, LevelInfo.sentryLevel())
}
