package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

// capture redirects logger output into a buffer for the duration of a test.
func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetVerbose(false)
	})
	return &buf
}

func TestDebug_SuppressedByDefault(t *testing.T) {
	buf := capture(t)

	Debug("should not appear: %d", 42)

	assert.Empty(t, buf.String())
}

func TestDebug_EmittedWhenVerbose(t *testing.T) {
	buf := capture(t)
	SetVerbose(true)

	Debug("fetching page %d", 3)

	assert.Contains(t, buf.String(), "[DEBUG]")
	assert.Contains(t, buf.String(), "fetching page 3")
}

func TestLevels(t *testing.T) {
	tests := []struct {
		name  string
		log   func(string, ...any)
		level string
	}{
		{name: "info", log: Info, level: "[INFO]"},
		{name: "warn", log: Warn, level: "[WARN]"},
		{name: "error", log: Error, level: "[ERROR]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := capture(t)

			tt.log("message %s", "body")

			assert.Contains(t, buf.String(), tt.level)
			assert.Contains(t, buf.String(), "message body")
		})
	}
}
