package logging

import (
	"context"
	"log/slog"
)

// AttrsFunc supplies attributes evaluated per record, typically the
// current session id and run mode.
type AttrsFunc func() []slog.Attr

// SessionHandler stamps every record passing through it with the
// attributes returned by an AttrsFunc before handing it to the wrapped
// sink. Remote sinks like GELF use it so records can be correlated to
// the run that produced them.
type SessionHandler struct {
	sink  slog.Handler
	attrs AttrsFunc
}

// NewSessionHandler wraps sink so each record carries the attributes
// from attrs. A nil attrs leaves records untouched.
func NewSessionHandler(sink slog.Handler, attrs AttrsFunc) *SessionHandler {
	return &SessionHandler{sink: sink, attrs: attrs}
}

// Enabled defers to the wrapped sink.
func (h *SessionHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.sink.Enabled(ctx, level)
}

// Handle stamps the record and forwards it.
func (h *SessionHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.attrs != nil {
		r.AddAttrs(h.attrs()...)
	}
	return h.sink.Handle(ctx, r)
}

// WithAttrs pushes the static attributes down to the wrapped sink.
func (h *SessionHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &SessionHandler{sink: h.sink.WithAttrs(attrs), attrs: h.attrs}
}

// WithGroup opens the group on the wrapped sink.
func (h *SessionHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &SessionHandler{sink: h.sink.WithGroup(name), attrs: h.attrs}
}
