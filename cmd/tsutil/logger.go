package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// fanoutHandler sends every record to each handler that accepts its level.
type fanoutHandler []slog.Handler

func (h fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h fanoutHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, handler := range h {
		if handler.Enabled(ctx, r.Level) {
			errs = append(errs, handler.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (h fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	result := make(fanoutHandler, len(h))
	for i, handler := range h {
		result[i] = handler.WithAttrs(attrs)
	}
	return result
}

func (h fanoutHandler) WithGroup(name string) slog.Handler {
	result := make(fanoutHandler, len(h))
	for i, handler := range h {
		result[i] = handler.WithGroup(name)
	}
	return result
}

// newLogger logs text to stderr, at debug level if verbose, and optionally
// JSON debug records to a rotated log file. The returned function closes
// the log file.
func newLogger(s logSettings, verbose bool) (*slog.Logger, func()) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handlers := fanoutHandler{slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})}

	closeLog := func() {}
	if s.Path != "" {
		lj := &lumberjack.Logger{
			Filename:   s.Path,
			MaxSize:    s.MaxSizeMB,
			MaxBackups: s.MaxBackups,
			LocalTime:  true,
		}
		handlers = append(handlers, slog.NewJSONHandler(lj, &slog.HandlerOptions{Level: slog.LevelDebug}))
		closeLog = func() {
			if err := lj.Close(); err != nil {
				fmt.Fprintln(os.Stderr, "closing log file failed:", err)
			}
		}
	}

	logger := slog.New(handlers)
	slog.SetDefault(logger)
	return logger, closeLog
}
