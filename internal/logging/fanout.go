package logging

import (
	"context"
	"errors"
	"log/slog"
)

// FanoutHandler duplicates each record to every configured sink.
// A run typically fans out to console, the run log file, and the
// optional GELF and OTel sinks.
type FanoutHandler struct {
	sinks []slog.Handler
}

// NewFanoutHandler builds a fanout over the given sinks. Nil sinks are
// dropped so callers can pass optional outputs unconditionally.
func NewFanoutHandler(sinks ...slog.Handler) *FanoutHandler {
	kept := make([]slog.Handler, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			kept = append(kept, s)
		}
	}
	return &FanoutHandler{sinks: kept}
}

// Enabled reports whether at least one sink would accept the level.
func (f *FanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, s := range f.sinks {
		if s.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle delivers the record to every enabled sink. A failing sink does
// not stop delivery to the others; the errors are joined afterwards.
func (f *FanoutHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, s := range f.sinks {
		if !s.Enabled(ctx, r.Level) {
			continue
		}
		if err := s.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// WithAttrs applies the attributes to every sink.
func (f *FanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	sinks := make([]slog.Handler, len(f.sinks))
	for i, s := range f.sinks {
		sinks[i] = s.WithAttrs(attrs)
	}
	return &FanoutHandler{sinks: sinks}
}

// WithGroup opens the group on every sink.
func (f *FanoutHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return f
	}
	sinks := make([]slog.Handler, len(f.sinks))
	for i, s := range f.sinks {
		sinks[i] = s.WithGroup(name)
	}
	return &FanoutHandler{sinks: sinks}
}
