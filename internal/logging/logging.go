// Package logging builds the process logger and carries request-scoped
// loggers through context.Context.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
)

// Options configures New.
type Options struct {
	// Writer defaults to os.Stdout.
	Writer io.Writer
	Level  slog.Leveler
	// Format is "text" (colored via tint) or "json".
	Format  string
	AppName string
	// Extra handlers receive every record in addition to stdout, e.g. Fluent Bit.
	Extra []slog.Handler
}

// New returns a logger writing to stdout and to any extra handlers.
func New(opts Options) *slog.Logger {
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}
	if opts.Level == nil {
		opts.Level = slog.LevelInfo
	}

	var h slog.Handler
	if opts.Format == "json" {
		h = slog.NewJSONHandler(opts.Writer, &slog.HandlerOptions{Level: opts.Level})
	} else {
		h = tint.NewHandler(opts.Writer, &tint.Options{
			Level:      opts.Level,
			TimeFormat: "2006-01-02 15:04:05",
		})
	}
	if len(opts.Extra) > 0 {
		h = NewFanout(append([]slog.Handler{h}, opts.Extra...)...)
	}

	logger := slog.New(h)
	if opts.AppName != "" {
		logger = logger.With("service_name", opts.AppName)
	}
	return logger
}

// ParseLevel maps debug/info/warn/error to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type loggerKey struct{}

// WithLogger stores l in ctx.
func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// FromContext returns the logger stored by WithLogger, or a logger that
// discards everything.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return discard
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))
