package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options selects the handler for New.
type Options struct {
	Env     string
	Level   string // debug, info, warn, error; empty derives from Env
	Service string
	Output  io.Writer
}

// New returns a JSON structured logger. local and dev environments log at
// debug unless Level says otherwise.
func New(opts Options) *slog.Logger {
	level := slog.LevelInfo
	if opts.Env == "local" || opts.Env == "dev" {
		level = slog.LevelDebug
	}
	if opts.Level != "" {
		var l slog.Level
		if err := l.UnmarshalText([]byte(strings.ToUpper(opts.Level))); err == nil {
			level = l
		}
	}

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	l := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level}))
	if opts.Service != "" {
		l = l.With("service", opts.Service)
	}
	return l
}

type ctxKey struct{}

// With stores a logger in context.
func With(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// From gets a logger from context, falling back to slog.Default().
func From(ctx context.Context) *slog.Logger {
	if v := ctx.Value(ctxKey{}); v != nil {
		if l, ok := v.(*slog.Logger); ok && l != nil {
			return l
		}
	}
	return slog.Default()
}
