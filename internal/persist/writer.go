// Package persist writes serialized learner state to the key-value store in
// the background and rehydrates it at startup.
package persist

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/abhisek/kioku/internal/store"
)

// Sink accepts state entries for storage. Put must not block on I/O.
type Sink interface {
	Put(key string, v any)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(key string, v any)

func (f SinkFunc) Put(key string, v any) { f(key, v) }

// Discard is a Sink that drops every entry.
var Discard Sink = SinkFunc(func(string, any) {})

// Writer is a fire-and-forget Sink backed by a KV. Values are marshaled when
// Put is called, so later mutation of the caller's data does not leak into an
// already queued write. A single goroutine drains the queue; a key queued
// again before it is written keeps only the newest value.
type Writer struct {
	kv     store.KV
	logger *slog.Logger

	mu      sync.Mutex
	pending map[string][]byte
	order   []string
	closed  bool

	wake    chan struct{}
	flushes chan chan struct{}
	quit    chan struct{}
	done    chan struct{}
	once    sync.Once
}

// NewWriter starts a Writer. A nil logger uses slog.Default().
func NewWriter(kv store.KV, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	w := &Writer{
		kv:      kv,
		logger:  logger,
		pending: make(map[string][]byte),
		wake:    make(chan struct{}, 1),
		flushes: make(chan chan struct{}),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go w.run()
	return w
}

// Put marshals v as JSON and queues it under key.
func (w *Writer) Put(key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		w.logger.Warn("marshal state entry", "key", key, "err", err)
		return
	}
	w.PutRaw(key, b)
}

// PutRaw queues already serialized bytes under key.
func (w *Writer) PutRaw(key string, b []byte) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		w.logger.Warn("write after close dropped", "key", key)
		return
	}
	if _, queued := w.pending[key]; !queued {
		w.order = append(w.order, key)
	}
	w.pending[key] = b
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// Flush blocks until every entry queued before the call has been written.
func (w *Writer) Flush(ctx context.Context) error {
	ack := make(chan struct{})
	select {
	case w.flushes <- ack:
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-ack:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close writes whatever is queued and stops the background goroutine.
func (w *Writer) Close() error {
	w.once.Do(func() {
		w.mu.Lock()
		w.closed = true
		w.mu.Unlock()
		close(w.quit)
	})
	<-w.done
	return nil
}

func (w *Writer) run() {
	defer close(w.done)
	for {
		select {
		case <-w.wake:
			w.drain()
		case ack := <-w.flushes:
			w.drain()
			close(ack)
		case <-w.quit:
			w.drain()
			return
		}
	}
}

func (w *Writer) drain() {
	for {
		w.mu.Lock()
		if len(w.order) == 0 {
			w.mu.Unlock()
			return
		}
		key := w.order[0]
		w.order = w.order[1:]
		b := w.pending[key]
		delete(w.pending, key)
		w.mu.Unlock()

		if err := w.kv.Save(context.Background(), key, b); err != nil {
			w.logger.Warn("persist state entry", "key", key, "err", err)
		}
	}
}

// Load decodes the entry stored under key into dst. It returns false when the
// entry is missing or malformed; malformed entries and read failures are
// logged. On false the caller keeps its defaults and must not use dst.
func Load(ctx context.Context, kv store.KV, key string, dst any, logger *slog.Logger) bool {
	if logger == nil {
		logger = slog.Default()
	}
	b, err := kv.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			logger.Warn("load state entry, using defaults", "key", key, "err", err)
		}
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		logger.Warn("malformed state entry, using defaults", "key", key, "err", err)
		return false
	}
	return true
}
