package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var records []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		rec := map[string]any{}
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		records = append(records, rec)
	}

	return records
}

func TestSlogLogger_LevelFilter(t *testing.T) {
	t.Setenv("ENV", "")

	buf := &bytes.Buffer{}
	l := NewSlogWithWriter(buf, WarnLevel, false)

	l.Debug("debug message")
	l.Info("info message")
	l.Warn("warn message", "port", "/dev/ttyUSB0")
	l.Error("error message")

	records := decodeLines(t, buf)
	require.Len(t, records, 2)
	assert.Equal(t, "warn message", records[0]["msg"])
	assert.Equal(t, "/dev/ttyUSB0", records[0]["port"])
	assert.Contains(t, records[0], "ts")
	assert.Equal(t, "error message", records[1]["msg"])
}

func TestSlogLogger_SetLevel(t *testing.T) {
	t.Setenv("ENV", "")

	buf := &bytes.Buffer{}
	l := NewSlogWithWriter(buf, ErrorLevel, false)
	assert.Equal(t, ErrorLevel, l.Level())

	l.Info("dropped")
	l.SetLevel(DebugLevel)
	assert.Equal(t, DebugLevel, l.Level())
	l.Debug("kept")

	records := decodeLines(t, buf)
	require.Len(t, records, 1)
	assert.Equal(t, "kept", records[0]["msg"])
}

func TestSlogLogger_WithSharesLevel(t *testing.T) {
	t.Setenv("ENV", "")

	buf := &bytes.Buffer{}
	parent := NewSlogWithWriter(buf, InfoLevel, false)
	child := parent.With("session", "abc")

	parent.SetLevel(ErrorLevel)
	child.Info("suppressed")
	child.Error("visible")

	records := decodeLines(t, buf)
	require.Len(t, records, 1)
	assert.Equal(t, "abc", records[0]["session"])
	assert.Equal(t, ErrorLevel, child.Level())
}

func TestSlogLogger_IndependentInstances(t *testing.T) {
	t.Setenv("ENV", "")

	a := NewSlogWithWriter(&bytes.Buffer{}, InfoLevel, false)
	b := NewSlogWithWriter(&bytes.Buffer{}, InfoLevel, false)

	a.SetLevel(DebugLevel)
	assert.Equal(t, DebugLevel, a.Level())
	assert.Equal(t, InfoLevel, b.Level())
}
