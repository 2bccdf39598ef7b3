// Package logging defines the structured-logging interface used across the
// interview backend, with slog and zap implementations behind it.
package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "vendor call failed", "vendor", "openai", "status", 429)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}

// New builds the process logger. format is "json" (slog JSON, the default),
// "text" (slog text) or "zap" (zap production JSON encoder).
func New(format string, debug bool) (Logger, error) {
	switch strings.ToLower(format) {
	case "", "json":
		return NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, slogOptions(debug)))), nil
	case "text":
		return NewSlogLogger(slog.New(slog.NewTextHandler(os.Stdout, slogOptions(debug)))), nil
	case "zap":
		level := zapcore.InfoLevel
		if debug {
			level = zapcore.DebugLevel
		}
		cfg := zap.Config{
			Encoding:         "json",
			Level:            zap.NewAtomicLevelAt(level),
			OutputPaths:      []string{"stdout"},
			ErrorOutputPaths: []string{"stderr"},
			EncoderConfig: zapcore.EncoderConfig{
				MessageKey:   "msg",
				LevelKey:     "level",
				EncodeLevel:  zapcore.LowercaseLevelEncoder,
				TimeKey:      "time",
				EncodeTime:   zapcore.RFC3339TimeEncoder,
				CallerKey:    "caller",
				EncodeCaller: zapcore.ShortCallerEncoder,
			},
		}
		l, err := cfg.Build()
		if err != nil {
			return nil, fmt.Errorf("build zap logger: %w", err)
		}
		return NewZapLogger(l), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}

func slogOptions(debug bool) *slog.HandlerOptions {
	if debug {
		return &slog.HandlerOptions{Level: slog.LevelDebug}
	}
	return nil
}
