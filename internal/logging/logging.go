// Package logging configures the process-wide slog logger.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Init installs a text logger on stderr. Warnings and errors only, unless
// verbose is set.
func Init(verbose bool) {
	slog.SetDefault(slog.New(newConsoleHandler(os.Stderr, verbose)))
}

// InitWithAudit installs the console logger plus a JSON audit trail appended
// to auditPath. The audit trail records Info and above regardless of
// verbosity. Closing the returned closer puts the console-only logger back
// before the audit file is closed.
func InitWithAudit(verbose bool, auditPath string) (io.Closer, error) {
	if auditPath == "" {
		Init(verbose)
		return io.NopCloser(nil), nil
	}

	if dir := filepath.Dir(auditPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create audit log directory: %w", err)
		}
	}

	f, err := os.OpenFile(auditPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}

	audit := slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelInfo})
	slog.SetDefault(slog.New(fanout{newConsoleHandler(os.Stderr, verbose), audit}))
	return &auditLog{file: f, verbose: verbose}, nil
}

type auditLog struct {
	file    *os.File
	verbose bool
}

func (a *auditLog) Close() error {
	Init(a.verbose)
	return a.file.Close()
}

func newConsoleHandler(w io.Writer, verbose bool) slog.Handler {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
}

// fanout sends each record to every handler that accepts its level.
type fanout []slog.Handler

func (h fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, handler := range h {
		if !handler.Enabled(ctx, r.Level) {
			continue
		}
		if err := handler.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (h fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make(fanout, len(h))
	for i, handler := range h {
		next[i] = handler.WithAttrs(attrs)
	}
	return next
}

func (h fanout) WithGroup(name string) slog.Handler {
	next := make(fanout, len(h))
	for i, handler := range h {
		next[i] = handler.WithGroup(name)
	}
	return next
}
