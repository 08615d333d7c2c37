package flowsketch

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with flowsketch-specific helpers so that insert
// and verify events carry consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler.
// If handler is nil, uses a text handler to stderr at Info.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewJSONLogger creates a Logger that writes JSON to stderr.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewTextLogger creates a Logger that writes human-readable text to stderr.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NoopLogger creates a Logger that discards all output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithSeed adds the sketch seed to every record.
func (l *Logger) WithSeed(seed uint64) *Logger {
	return &Logger{Logger: l.Logger.With("seed", seed)}
}

// LogPass logs one peeling pass.
func (l *Logger) LogPass(ctx context.Context, pass, decoded, pending int) {
	l.DebugContext(ctx, "peeling pass",
		"pass", pass,
		"decoded", decoded,
		"pending", pending,
	)
}

// LogVerify logs the outcome of a Verify call.
func (l *Logger) LogVerify(ctx context.Context, stats VerifyStats, err error) {
	switch {
	case err != nil:
		l.WarnContext(ctx, "verify interrupted",
			"decoded", stats.Decoded,
			"passes", stats.Passes,
			"error", err,
		)
	case stats.Residual > 0:
		l.WarnContext(ctx, "verify left residual kbuckets",
			"decoded", stats.Decoded,
			"residual", stats.Residual,
			"passes", stats.Passes,
		)
	default:
		l.InfoContext(ctx, "verify completed",
			"decoded", stats.Decoded,
			"passes", stats.Passes,
			"duration", stats.Duration,
		)
	}
}
