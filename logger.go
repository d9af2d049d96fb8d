package scopemem

import (
	"context"
	"log/slog"
	"os"

	"github.com/hupe1980/scopemem/arena"
)

// Logger carries scope transitions, allocator statistics and teardown
// events. Allocators created by Scopes log through the same handler with a
// "scope" attribute.
type Logger struct {
	*slog.Logger
}

// NewLogger wraps handler. A nil handler logs text at info level to stderr,
// which shows scope statistics but not individual transitions.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, stderrOptions(slog.LevelInfo))
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewJSONLogger logs JSON lines to stderr, for feeding allocator statistics
// into log pipelines. Use slog.LevelDebug to include every scope transition.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, stderrOptions(level)))
}

// NewTextLogger logs key=value lines to stderr.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, stderrOptions(level)))
}

// NoopLogger discards everything. It is the default of NewScopes.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

func stderrOptions(level slog.Level) *slog.HandlerOptions {
	return &slog.HandlerOptions{Level: level}
}

// WithScope adds a scope field to the logger.
func (l *Logger) WithScope(s Scope) *Logger {
	return &Logger{
		Logger: l.Logger.With("scope", s.String()),
	}
}

// WithKind adds an allocator kind field to the logger.
func (l *Logger) WithKind(k arena.Kind) *Logger {
	return &Logger{
		Logger: l.Logger.With("kind", k.String()),
	}
}

// LogScope logs a scope transition.
func (l *Logger) LogScope(ctx context.Context, s Scope, op string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "scope transition failed",
			"scope", s.String(),
			"op", op,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "scope transition",
			"scope", s.String(),
			"op", op,
		)
	}
}

// LogStats logs allocator statistics of one scope.
func (l *Logger) LogStats(ctx context.Context, s Scope, st arena.Stats) {
	l.InfoContext(ctx, "scope stats",
		"scope", s.String(),
		"kind", st.Kind.String(),
		"generation", st.Generation,
		"allocs", st.Allocs,
		"bytes_requested", st.BytesRequested,
		"free_alls", st.FreeAlls,
		"blocks", st.Backend.BlocksActive,
		"bytes_reserved", st.Backend.BytesReserved,
		"pool_bytes", st.PoolBytes,
	)
}

// LogClose logs the teardown of a scope set.
func (l *Logger) LogClose(ctx context.Context, err error) {
	if err != nil {
		l.ErrorContext(ctx, "close failed", "error", err)
	} else {
		l.InfoContext(ctx, "scopes closed")
	}
}
