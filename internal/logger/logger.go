package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
)

type ctxKey string

const sessionKey ctxKey = "session"

// InitLogger builds a handler from cfg and installs it as the slog default.
func InitLogger(cfg Config) *slog.Logger {
	l := New(os.Stdout, cfg)
	slog.SetDefault(l)
	return l
}

// New builds a logger writing to w.
func New(w io.Writer, cfg Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     cfg.LogLevel(),
		AddSource: cfg.AddSource,
	}

	var h slog.Handler
	if cfg.IsJSON() {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h.WithAttrs(cfg.BaseAttributes()))
}

// NewSessionID creates a new id for an SSH session.
func NewSessionID() string {
	return uuid.NewString()
}

// WithSession returns a context carrying the session id.
func WithSession(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionKey, sessionID)
}

// SessionFromContext extracts the session id, if present.
func SessionFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionKey).(string)
	return id, ok
}

// FromContext returns the default logger with the session attribute when present.
func FromContext(ctx context.Context) *slog.Logger {
	if id, ok := SessionFromContext(ctx); ok {
		return slog.Default().With(AttrSession, id)
	}
	return slog.Default()
}

// Discard returns a logger that drops everything. Handy in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
