// Package logging attaches a zerolog logger to the context so every
// component logs through the same sink without carrying a logger field.
package logging

import (
	"context"
	"io"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	maxLogSizeMB  = 10
	maxLogBackups = 3
	maxLogAgeDays = 30
)

// Config selects the log sink. Writer wins when set (tests pass an
// in-memory writer); otherwise Path names a rotated log file; with
// neither, logging is disabled.
type Config struct {
	Writer io.Writer
	Path   string
	Level  zerolog.Level
}

// New returns ctx with a configured logger attached.
func New(ctx context.Context, cfg Config) context.Context {
	var writer io.Writer
	switch {
	case cfg.Writer != nil:
		writer = cfg.Writer
	case cfg.Path != "":
		writer = &lumberjack.Logger{
			Filename:   cfg.Path,
			MaxSize:    maxLogSizeMB,
			MaxBackups: maxLogBackups,
			MaxAge:     maxLogAgeDays,
		}
	default:
		logger := zerolog.Nop()
		return logger.WithContext(ctx)
	}

	logger := zerolog.New(writer).With().
		Timestamp().
		Logger().
		Level(cfg.Level)

	return logger.WithContext(ctx)
}

// Get retrieves the context's logger, or a disabled one if none is
// attached.
func Get(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}
