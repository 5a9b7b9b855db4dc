package llm

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

// MockReply is one queued result for Mock.
type MockReply struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// Mock is an offline Provider. Queued replies are returned in order and
// passed through unvalidated. Once the queue is empty, a Mock with
// Synthesize set answers with a minimal document matching the request
// schema; otherwise it fails.
type Mock struct {
	Synthesize bool

	mu       sync.Mutex
	replies  []MockReply
	Requests []Request
}

// NewMock returns a Mock primed with replies.
func NewMock(replies ...MockReply) *Mock {
	return &Mock{replies: replies}
}

func (m *Mock) ModelID() string { return "mock" }

func (m *Mock) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests = append(m.Requests, req)

	var r MockReply
	switch {
	case len(m.replies) > 0:
		r, m.replies = m.replies[0], m.replies[1:]
	case m.Synthesize:
		r.Content = synthesize(req.Schema)
	default:
		return nil, &Error{Kind: KindUnavailable, Backend: "mock", Err: errors.New("no replies queued")}
	}
	if r.Err != nil {
		return nil, r.Err
	}
	return &Response{Content: r.Content, Usage: r.Usage, Model: "mock", Stop: StopEnd}, nil
}

// Queue appends replies.
func (m *Mock) Queue(replies ...MockReply) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, replies...)
}

// CallCount returns how many requests the Mock has seen.
func (m *Mock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}

func synthesize(s *Schema) json.RawMessage {
	if s == nil {
		return json.RawMessage(`"ok"`)
	}
	b, _ := json.Marshal(zeroValue(s.Definition))
	return b
}

// zeroValue builds the smallest value that satisfies def: required object
// properties only, the first enum entry, and numeric minimums.
func zeroValue(def map[string]any) any {
	if enum, ok := def["enum"].([]any); ok && len(enum) > 0 {
		return enum[0]
	}
	switch def["type"] {
	case "object":
		obj := map[string]any{}
		props, _ := def["properties"].(map[string]any)
		for _, name := range stringList(def["required"]) {
			pd, _ := props[name].(map[string]any)
			obj[name] = zeroValue(pd)
		}
		return obj
	case "array":
		return []any{}
	case "integer", "number":
		if lo, ok := def["minimum"]; ok {
			return lo
		}
		return 0
	case "boolean":
		return false
	default:
		return ""
	}
}
