package persist

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/kioku/internal/store"
)

// recordingLog keeps appended events in arrival order and can block until
// released.
type recordingLog struct {
	mu   sync.Mutex
	seen []string
	gate chan struct{}
	fail error
}

func (r *recordingLog) add(s string) error {
	if r.gate != nil {
		<-r.gate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	r.seen = append(r.seen, s)
	return nil
}

func (r *recordingLog) AppendAnswerEvent(_ context.Context, d store.AnswerEventData) error {
	return r.add("answer:" + d.Choice)
}

func (r *recordingLog) AppendSessionEvent(_ context.Context, d store.SessionEventData) error {
	return r.add("session:" + d.Action)
}

func (r *recordingLog) events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.seen...)
}

func TestEventQueueKeepsOrder(t *testing.T) {
	log := &recordingLog{gate: make(chan struct{})}
	q := NewEventQueue(log, nil)
	defer q.Close()
	ctx := context.Background()

	// The store is blocked, so every append must return without waiting.
	require.NoError(t, q.AppendSessionEvent(ctx, store.SessionEventData{SessionID: "s", Action: "start"}))
	require.NoError(t, q.AppendAnswerEvent(ctx, store.AnswerEventData{SessionID: "s", Choice: "○"}))
	require.NoError(t, q.AppendAnswerEvent(ctx, store.AnswerEventData{SessionID: "s", Choice: "×"}))
	require.NoError(t, q.AppendSessionEvent(ctx, store.SessionEventData{SessionID: "s", Action: "end"}))
	assert.Empty(t, log.events())

	close(log.gate)
	require.NoError(t, q.Flush(ctx))
	assert.Equal(t, []string{"session:start", "answer:○", "answer:×", "session:end"}, log.events())
}

func TestEventQueueCloseDrains(t *testing.T) {
	log := &recordingLog{}
	q := NewEventQueue(log, nil)
	ctx := context.Background()

	q.AppendAnswerEvent(ctx, store.AnswerEventData{Choice: "○"})
	require.NoError(t, q.Close())
	require.NoError(t, q.Close())
	assert.Equal(t, []string{"answer:○"}, log.events())

	q.AppendSessionEvent(ctx, store.SessionEventData{Action: "end"})
	require.NoError(t, q.Flush(ctx))
	assert.Equal(t, []string{"answer:○"}, log.events())
}

func TestEventQueueLogsAppendFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	log := &recordingLog{fail: errors.New("database is locked")}
	q := NewEventQueue(log, logger)
	defer q.Close()

	require.NoError(t, q.AppendSessionEvent(context.Background(), store.SessionEventData{SessionID: "s-9", Action: "end"}))
	require.NoError(t, q.Flush(context.Background()))
	assert.Contains(t, buf.String(), "database is locked")
	assert.Contains(t, buf.String(), "s-9")
}
