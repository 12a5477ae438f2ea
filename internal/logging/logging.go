// Package logging builds the structured logger used across oscbridge.
//
// Events are logged with snake_case messages (osc_message_dispatched,
// target_request_failed) and typed attributes so the JSON output can be
// filtered without parsing free text.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"evalgo.org/oscbridge/internal/config"
)

// New builds a logger for cfg writing to the configured output.
func New(cfg config.LoggingConfig) (*slog.Logger, error) {
	var out io.Writer
	switch strings.ToLower(cfg.Output) {
	case "", "stderr":
		out = os.Stderr
	case "stdout":
		out = os.Stdout
	default:
		return nil, fmt.Errorf("unknown log output %q", cfg.Output)
	}
	return NewWithWriter(cfg, out)
}

// NewWithWriter builds a logger for cfg writing to w.
func NewWithWriter(cfg config.LoggingConfig, w io.Writer) (*slog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "", "json":
		handler = slog.NewJSONHandler(w, opts)
	case "text":
		handler = slog.NewTextHandler(w, opts)
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	return slog.New(handler), nil
}

// ParseLevel maps a configured level name to a slog level. An empty name is info.
func ParseLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", raw)
	}
}
