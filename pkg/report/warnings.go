package report

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
)

// MetaWarning represents a class of constituent warnings sharing a
// common message pattern, producing a single suggestion-bearing summary
// warning instead of one line per occurrence.
type MetaWarning struct {
	pattern *regexp.Regexp
	message string
	count int
}

// NewMetaWarning builds a MetaWarning matching msg against pattern, with
// message used as a fmt verb ("%d..." style) when Warn is called.
func NewMetaWarning(pattern, message string) *MetaWarning {
	return &MetaWarning{pattern: regexp.MustCompile(pattern), message: message}
}

// Inspect records whether msg matches this MetaWarning's pattern.
func (m *MetaWarning) Inspect(msg string) bool {
	if m.pattern.MatchString(msg) {
		m.count++
		return true
	}
	return false
}

// Warn logs this MetaWarning's summary message if it matched at least
// once.
func (m *MetaWarning) Warn(logger *slog.Logger) {
	if m.count == 0 {
		return
	}
	logger.Warn(fmt.Sprintf(m.message, m.count))
}

// WarningAggregator inspects every warning-level log record passing
// through it to accumulate statistics and well-known meta-warnings.
// Grounded on logging.py's WarningAggregator, a logging.Filter there;
// here an slog.Handler wrapper, since Go's slog has no equivalent
// filter-without-dropping hook.
type WarningAggregator struct {
	next slog.Handler
	metaWarnings []*MetaWarning
}

// NewWarningAggregator wraps next, observing every record it handles.
// The first meta-warning is a catch-all matching any warning message, so
// MetaWarnings()[0] always holds the total warning count.
func NewWarningAggregator(next slog.Handler) *WarningAggregator {
	return &WarningAggregator{
		next: next,
		metaWarnings: []*MetaWarning{
			NewMetaWarning(".", "%d warnings generated during preprocessing."),
			NewMetaWarning("user include", "%d user include files could not be found.\n"+
				" These could contain important macros and includes.\n"+
				" Suggested solutions:\n"+
				" - Check that the file(s) exist in the code base.\n"+
				" - Check the include paths in the compilation database.\n"+
				" - Check if the include(s) should have used '<>'."),
			NewMetaWarning("system include", "%d system include files could not be found.\n"+
				" These could define important feature macros.\n"+
				" Suggested solutions:\n"+
				" - Check that the file(s) exist on your system.\n"+
				" - Define system include paths in the analysis file.\n"+
				" - Define important macros in the analysis file."),
		},
	}
}

// MetaWarnings exposes the aggregator's meta-warnings for inspection
// (e.g. in tests).
func (a *WarningAggregator) MetaWarnings() []*MetaWarning {
	return a.metaWarnings
}

// Enabled delegates to the wrapped handler.
func (a *WarningAggregator) Enabled(ctx context.Context, level slog.Level) bool {
	return a.next.Enabled(ctx, level)
}

// Handle inspects warning-level records before forwarding them to the
// wrapped handler.
func (a *WarningAggregator) Handle(ctx context.Context, record slog.Record) error {
	if record.Level == slog.LevelWarn {
		for _, mw := range a.metaWarnings {
			mw.Inspect(record.Message)
		}
	}
	return a.next.Handle(ctx, record)
}

// WithAttrs delegates to the wrapped handler, preserving aggregation.
func (a *WarningAggregator) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &WarningAggregator{next: a.next.WithAttrs(attrs), metaWarnings: a.metaWarnings}
}

// WithGroup delegates to the wrapped handler, preserving aggregation.
func (a *WarningAggregator) WithGroup(name string) slog.Handler {
	return &WarningAggregator{next: a.next.WithGroup(name), metaWarnings: a.metaWarnings}
}

// Warn logs a summary warning for each meta-warning that matched at
// least once (the first being the overall total), via logger (which
// should not itself route back through this aggregator).
func (a *WarningAggregator) Warn(logger *slog.Logger) {
	for _, mw := range a.metaWarnings {
		mw.Warn(logger)
	}
}
