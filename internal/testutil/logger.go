// Package testutil provides test utilities for structured logging.
package testutil

import (
	"context"
	"log/slog"
	"sync"
	"testing"
)

// NewTestLogger returns a logger that writes to t.Log().
// Logs only appear on test failure or when running with -v.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	return slog.New(newTestHandler(t))
}

// NewRecordingLogger returns a logger that writes to t.Log() and also keeps
// every record so a test can assert on what was logged.
func NewRecordingLogger(t testing.TB) (*slog.Logger, *LogRecords) {
	t.Helper()
	records := &LogRecords{}
	return slog.New(&recordingHandler{next: newTestHandler(t), records: records}), records
}

func newTestHandler(t testing.TB) slog.Handler {
	return slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
}

type testWriter struct {
	t testing.TB
}

func (w testWriter) Write(p []byte) (n int, err error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

// LogEntry is a captured log record with its attributes flattened,
// including those bound with Logger.With.
type LogEntry struct {
	Level   slog.Level
	Message string
	Attrs   map[string]slog.Value
}

// LogRecords collects entries from a recording logger. Safe for concurrent use.
type LogRecords struct {
	mu      sync.Mutex
	entries []LogEntry
}

// Entries returns a copy of everything logged so far.
func (r *LogRecords) Entries() []LogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]LogEntry(nil), r.entries...)
}

// Find returns the first entry with the given message.
func (r *LogRecords) Find(msg string) (LogEntry, bool) {
	for _, e := range r.Entries() {
		if e.Message == msg {
			return e, true
		}
	}
	return LogEntry{}, false
}

func (r *LogRecords) add(e LogEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

type recordingHandler struct {
	next    slog.Handler
	records *LogRecords
	attrs   []slog.Attr
}

func (h *recordingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *recordingHandler) Handle(ctx context.Context, rec slog.Record) error {
	entry := LogEntry{
		Level:   rec.Level,
		Message: rec.Message,
		Attrs:   make(map[string]slog.Value, len(h.attrs)+rec.NumAttrs()),
	}
	for _, a := range h.attrs {
		entry.Attrs[a.Key] = a.Value
	}
	rec.Attrs(func(a slog.Attr) bool {
		entry.Attrs[a.Key] = a.Value
		return true
	})
	h.records.add(entry)
	return h.next.Handle(ctx, rec)
}

func (h *recordingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &recordingHandler{
		next:    h.next.WithAttrs(attrs),
		records: h.records,
		attrs:   append(append([]slog.Attr(nil), h.attrs...), attrs...),
	}
}

// WithGroup is passed through; grouped keys are recorded unqualified.
func (h *recordingHandler) WithGroup(name string) slog.Handler {
	return &recordingHandler{next: h.next.WithGroup(name), records: h.records, attrs: h.attrs}
}
