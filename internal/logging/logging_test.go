package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evalgo.org/oscbridge/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		raw  string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"info", slog.LevelInfo},
		{" DEBUG ", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseLevel(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestNewWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter(config.LoggingConfig{Level: "info", Format: "json"}, &buf)
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("osc_message_dispatched", slog.String("address", "/1/play"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "osc_message_dispatched", entry["msg"])
	assert.Equal(t, "/1/play", entry["address"])
}

func TestNewWithWriterText(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter(config.LoggingConfig{Level: "debug", Format: "text"}, &buf)
	require.NoError(t, err)

	logger.Debug("osc_decode_failed", slog.Int("bytes", 3))
	assert.Contains(t, buf.String(), "msg=osc_decode_failed")
	assert.Contains(t, buf.String(), "bytes=3")
}

func TestNewRejectsUnknownSettings(t *testing.T) {
	_, err := New(config.LoggingConfig{Level: "info", Format: "xml"})
	assert.Error(t, err)

	_, err = New(config.LoggingConfig{Level: "info", Format: "json", Output: "file"})
	assert.Error(t, err)

	_, err = New(config.LoggingConfig{Level: "loud"})
	assert.Error(t, err)
}
