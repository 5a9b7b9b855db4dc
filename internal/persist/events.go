package persist

import (
	"context"
	"log/slog"
	"sync"

	"github.com/abhisek/kioku/internal/store"
)

// EventLog is the append side of the event store.
type EventLog interface {
	AppendAnswerEvent(ctx context.Context, data store.AnswerEventData) error
	AppendSessionEvent(ctx context.Context, data store.SessionEventData) error
}

type eventJob struct {
	kind   string
	sessID string
	append func(context.Context) error
}

// EventQueue appends events from a background goroutine in the order they
// were queued. The Append methods never wait on the store and always return
// nil; a failed append is logged and dropped.
type EventQueue struct {
	log    EventLog
	logger *slog.Logger

	mu     sync.Mutex
	queue  []eventJob
	closed bool

	wake    chan struct{}
	flushes chan chan struct{}
	quit    chan struct{}
	done    chan struct{}
	once    sync.Once
}

// NewEventQueue starts an EventQueue over log. A nil logger uses
// slog.Default().
func NewEventQueue(log EventLog, logger *slog.Logger) *EventQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &EventQueue{
		log:     log,
		logger:  logger,
		wake:    make(chan struct{}, 1),
		flushes: make(chan chan struct{}),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go q.run()
	return q
}

// AppendAnswerEvent queues an answer event.
func (q *EventQueue) AppendAnswerEvent(_ context.Context, data store.AnswerEventData) error {
	q.push(eventJob{kind: "answer", sessID: data.SessionID, append: func(ctx context.Context) error {
		return q.log.AppendAnswerEvent(ctx, data)
	}})
	return nil
}

// AppendSessionEvent queues a session lifecycle event.
func (q *EventQueue) AppendSessionEvent(_ context.Context, data store.SessionEventData) error {
	q.push(eventJob{kind: "session." + data.Action, sessID: data.SessionID, append: func(ctx context.Context) error {
		return q.log.AppendSessionEvent(ctx, data)
	}})
	return nil
}

func (q *EventQueue) push(job eventJob) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.logger.Warn("event after close dropped", "kind", job.kind, "session", job.sessID)
		return
	}
	q.queue = append(q.queue, job)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Flush blocks until every event queued before the call has been appended.
func (q *EventQueue) Flush(ctx context.Context) error {
	ack := make(chan struct{})
	select {
	case q.flushes <- ack:
	case <-q.done:
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

// Close appends whatever is queued and stops the background goroutine.
func (q *EventQueue) Close() error {
	q.once.Do(func() {
		q.mu.Lock()
		q.closed = true
		q.mu.Unlock()
		close(q.quit)
	})
	<-q.done
	return nil
}

func (q *EventQueue) run() {
	defer close(q.done)
	for {
		select {
		case <-q.wake:
			q.drain()
		case ack := <-q.flushes:
			q.drain()
			close(ack)
		case <-q.quit:
			q.drain()
			return
		}
	}
}

func (q *EventQueue) drain() {
	for {
		q.mu.Lock()
		if len(q.queue) == 0 {
			q.mu.Unlock()
			return
		}
		job := q.queue[0]
		q.queue = q.queue[1:]
		q.mu.Unlock()

		if err := job.append(context.Background()); err != nil {
			q.logger.Warn("append event", "kind", job.kind, "session", job.sessID, "err", err)
		}
	}
}
