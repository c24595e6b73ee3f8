package logger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// RingBuffer retains the most recent log lines so the HTTP API can expose
// the monitor's recent activity without touching the process's log sink.
type RingBuffer struct {
	mu       sync.RWMutex
	entries  []string
	capacity int
	start    int
	count    int
}

func NewRingBuffer(capacity int) *RingBuffer {
	if capacity <= 0 {
		capacity = 1000
	}
	return &RingBuffer{capacity: capacity, entries: make([]string, capacity)}
}

func (b *RingBuffer) Append(line string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.count < b.capacity {
		b.entries[(b.start+b.count)%b.capacity] = line
		b.count++
		return
	}
	b.entries[b.start] = line
	b.start = (b.start + 1) % b.capacity
}

// GetLast returns up to n lines, oldest first. n <= 0 means everything held.
func (b *RingBuffer) GetLast(n int) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.count == 0 {
		return []string{}
	}
	if n <= 0 || n > b.count {
		n = b.count
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = b.entries[(b.start+b.count-n+i)%b.capacity]
	}
	return out
}

// Size returns the current number of stored lines.
func (b *RingBuffer) Size() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.count
}

// bufferingHandler tees each record into the ring buffer as a single
// formatted line before passing it to the real handler.
type bufferingHandler struct {
	next   slog.Handler
	buffer *RingBuffer
}

func newBufferingHandler(next slog.Handler, buffer *RingBuffer, _ *slog.HandlerOptions) slog.Handler {
	return &bufferingHandler{next: next, buffer: buffer}
}

func (h *bufferingHandler) Enabled(ctx context.Context, lvl slog.Level) bool {
	return h.next.Enabled(ctx, lvl)
}

func (h *bufferingHandler) Handle(ctx context.Context, r slog.Record) error {
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s %s", ts.Format(time.RFC3339), r.Level, r.Message)
	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&sb, " %s=%s", a.Key, a.Value)
		return true
	})
	h.buffer.Append(sb.String())
	return h.next.Handle(ctx, r)
}

func (h *bufferingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &bufferingHandler{next: h.next.WithAttrs(attrs), buffer: h.buffer}
}

func (h *bufferingHandler) WithGroup(name string) slog.Handler {
	return &bufferingHandler{next: h.next.WithGroup(name), buffer: h.buffer}
}
