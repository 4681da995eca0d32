package logging

import (
	"context"
	"log/slog"
	"testing"

	"crm-engine/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestNewLogger(t *testing.T) {
	ctx := context.Background()

	t.Run("level controls what is enabled", func(t *testing.T) {
		logger := NewLogger(config.LoggerConfig{Level: "error", Encoding: "json"})
		assert.False(t, logger.Enabled(ctx, slog.LevelInfo))
		assert.True(t, logger.Enabled(ctx, slog.LevelError))

		logger = NewLogger(config.LoggerConfig{Level: "debug", Encoding: "json"})
		assert.True(t, logger.Enabled(ctx, slog.LevelDebug))
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		logger := NewLogger(config.LoggerConfig{Level: "loud", Encoding: "json"})
		assert.True(t, logger.Enabled(ctx, slog.LevelInfo))
		assert.False(t, logger.Enabled(ctx, slog.LevelDebug))
	})

	t.Run("encoding selects the handler", func(t *testing.T) {
		logger := NewLogger(config.LoggerConfig{Level: "info", Encoding: "text"})
		_, isText := logger.Handler().(*slog.TextHandler)
		assert.True(t, isText)

		logger = NewLogger(config.LoggerConfig{Level: "info", Encoding: "json"})
		_, isJSON := logger.Handler().(*slog.JSONHandler)
		assert.True(t, isJSON)
	})
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"Warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, parseLevel(in), in)
	}
}
