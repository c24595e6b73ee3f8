package logger

import (
	"log/slog"
	"os"

	"github.com/certsentry/certsentry/pkg/config"
	"go.uber.org/fx"
)

// NewSlogLogger builds the process logger from config and tees every record
// into the shared ring buffer so recent activity stays inspectable.
func NewSlogLogger(cfg *config.ServerConfig, buffer *RingBuffer) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(newBufferingHandler(handler, buffer, opts))
}

func NewDefaultRingBuffer() *RingBuffer {
	return NewRingBuffer(1000)
}

var Module = fx.Module("logger",
	fx.Provide(NewDefaultRingBuffer),
	fx.Provide(NewSlogLogger),
)
