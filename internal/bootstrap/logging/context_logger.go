package logging

import (
	"context"
	"log/slog"
	"os"
	"sync"
)

const (
	componentKey = "component"
	ticketRefKey = "ticket_ref"
)

type ctxLoggerKey struct{}
type ctxAttrsKey struct{}

var (
	fallbackLogger     *slog.Logger
	fallbackLoggerOnce sync.Once
)

// fallback is used before the root command has put a configured logger in
// the context, and by tests that never do.
func fallback() *slog.Logger {
	fallbackLoggerOnce.Do(func() {
		fallbackLogger = NewLogger(os.Stderr, "info", "text")
	})
	return fallbackLogger
}

func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		return ctx
	}
	return context.WithValue(ctx, ctxLoggerKey{}, logger)
}

// WithAttrs adds attrs to every record logged through ctx. A key that is
// already set is replaced in place.
func WithAttrs(ctx context.Context, attrs ...slog.Attr) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(attrs) == 0 {
		return ctx
	}
	return context.WithValue(ctx, ctxAttrsKey{}, mergeAttrs(attrsFrom(ctx), attrs))
}

// WithComponent tags records with the subsystem that wrote them, for
// example "usecase.desk".
func WithComponent(ctx context.Context, name string) context.Context {
	if name == "" {
		return ctx
	}
	return WithAttrs(ctx, slog.String(componentKey, name))
}

// WithTicketRef tags records with a display ref such as "#0042".
func WithTicketRef(ctx context.Context, ref string) context.Context {
	if ref == "" {
		return ctx
	}
	return WithAttrs(ctx, slog.String(ticketRefKey, ref))
}

func Logger(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(ctxLoggerKey{}).(*slog.Logger); ok && logger != nil {
			return logger
		}
	}
	return fallback()
}

func Info(ctx context.Context, msg string, attrs ...slog.Attr) {
	log(ctx, slog.LevelInfo, msg, attrs...)
}

func Warn(ctx context.Context, msg string, attrs ...slog.Attr) {
	log(ctx, slog.LevelWarn, msg, attrs...)
}

func Error(ctx context.Context, msg string, attrs ...slog.Attr) {
	log(ctx, slog.LevelError, msg, attrs...)
}

func log(ctx context.Context, level slog.Level, msg string, attrs ...slog.Attr) {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := Logger(ctx)
	if !logger.Enabled(ctx, level) {
		return
	}
	logger.LogAttrs(ctx, level, msg, mergeAttrs(attrsFrom(ctx), attrs)...)
}

func attrsFrom(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	attrs, _ := ctx.Value(ctxAttrsKey{}).([]slog.Attr)
	return attrs
}

// mergeAttrs never aliases base: the slice stored in a parent context must
// stay untouched when a child adds to it.
func mergeAttrs(base []slog.Attr, extra []slog.Attr) []slog.Attr {
	merged := make([]slog.Attr, 0, len(base)+len(extra))
	merged = append(merged, base...)
	if len(extra) == 0 {
		return merged
	}

	position := make(map[string]int, len(merged))
	for i, attr := range merged {
		if attr.Key != "" {
			position[attr.Key] = i
		}
	}
	for _, attr := range extra {
		if i, ok := position[attr.Key]; ok && attr.Key != "" {
			merged[i] = attr
			continue
		}
		merged = append(merged, attr)
		if attr.Key != "" {
			position[attr.Key] = len(merged) - 1
		}
	}
	return merged
}
