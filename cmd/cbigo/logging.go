// Logging setup for cmd/cbigo: a DEBUG-level log file (wrapped by a
// report.WarningAggregator so every preprocessing warning is both
// recorded to disk and tallied into the meta-warning summary) plus an
// ERROR-level handler on the command's error writer, so a deeply-nested
// warning never clutters stderr but a genuine error always surfaces.
// log/slog has no built-in fan-out handler, so a small one is written
// here.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/codebasin/cbigo/pkg/report"
)

const logFileName = "cbigo.log"

// setupLogging creates cbigo.log in the current directory and returns a
// logger that writes every record to it (wrapped in a WarningAggregator)
// and mirrors Error-level records to errOut. The log file's path is
// announced on errOut directly, bypassing the logger, since it must be
// visible regardless of the configured log level.
func setupLogging(errOut io.Writer) (*slog.Logger, *report.WarningAggregator, *os.File, error) {
	f, err := os.Create(logFileName)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("creating log file: %w", err)
	}
	fmt.Fprintf(errOut, "cbigo: writing log to %s\n", logFileName)

	fileHandler := slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})
	aggregator := report.NewWarningAggregator(fileHandler)
	stderrHandler := &levelHandler{min: slog.LevelError, next: slog.NewTextHandler(errOut, nil)}

	logger := slog.New(&fanOutHandler{handlers: []slog.Handler{aggregator, stderrHandler}})
	return logger, aggregator, f, nil
}

// levelHandler drops records below min before forwarding to next.
type levelHandler struct {
	min slog.Level
	next slog.Handler
}

func (h *levelHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.min && h.next.Enabled(ctx, level)
}

func (h *levelHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.next.Handle(ctx, r)
}

func (h *levelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelHandler{min: h.min, next: h.next.WithAttrs(attrs)}
}

func (h *levelHandler) WithGroup(name string) slog.Handler {
	return &levelHandler{min: h.min, next: h.next.WithGroup(name)}
}

// fanOutHandler dispatches every record to each handler that is enabled
// for it.
type fanOutHandler struct {
	handlers []slog.Handler
}

func (h *fanOutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, hh := range h.handlers {
		if hh.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *fanOutHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs error
	for _, hh := range h.handlers {
		if !hh.Enabled(ctx, r.Level) {
			continue
		}
		if err := hh.Handle(ctx, r.Clone()); err != nil {
			if errs == nil {
				errs = err
			} else {
				errs = fmt.Errorf("%w; %w", errs, err)
			}
		}
	}
	return errs
}

func (h *fanOutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make([]slog.Handler, len(h.handlers))
	for i, hh := range h.handlers {
		out[i] = hh.WithAttrs(attrs)
	}
	return &fanOutHandler{handlers: out}
}

func (h *fanOutHandler) WithGroup(name string) slog.Handler {
	out := make([]slog.Handler, len(h.handlers))
	for i, hh := range h.handlers {
		out[i] = hh.WithGroup(name)
	}
	return &fanOutHandler{handlers: out}
}
