package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/abhisek/kioku/internal/store"
)

func noWait(r *Retrying) *Retrying {
	r.jitter = func(time.Duration) time.Duration { return time.Millisecond }
	return r
}

func TestRetrying(t *testing.T) {
	unavailable := &Error{Kind: KindUnavailable, Backend: "mock"}
	ok := MockReply{Content: json.RawMessage(`{"score":1,"note":""}`)}

	tests := []struct {
		name      string
		replies   []MockReply
		attempts  int
		wantErr   bool
		wantCalls int
	}{
		{"recovers", []MockReply{{Err: unavailable}, ok}, 3, false, 2},
		{"gives up", []MockReply{{Err: unavailable}, {Err: unavailable}, {Err: unavailable}}, 3, true, 3},
		{"auth is final", []MockReply{{Err: &Error{Kind: KindAuth}}, ok}, 3, true, 1},
		{"truncation is final", []MockReply{{Err: &Error{Kind: KindTruncated}}, ok}, 3, true, 1},
		{"invalid retried once", []MockReply{{Err: &Error{Kind: KindInvalid}}, {Err: &Error{Kind: KindInvalid}}, ok}, 5, true, 2},
		{"foreign errors are final", []MockReply{{Err: errors.New("boom")}, ok}, 3, true, 1},
		{"zero attempts means one", []MockReply{{Err: unavailable}, ok}, 0, true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMock(tt.replies...)
			r := noWait(WithRetry(m, RetryConfig{MaxAttempts: tt.attempts, InitialWait: time.Millisecond, Multiplier: 2}))

			_, err := r.Generate(context.Background(), Request{})
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if m.CallCount() != tt.wantCalls {
				t.Errorf("calls = %d, want %d", m.CallCount(), tt.wantCalls)
			}
		})
	}
}

func TestRetrying_Wait(t *testing.T) {
	r := WithRetry(NewMock(), RetryConfig{InitialWait: time.Second, MaxWait: 5 * time.Second, Multiplier: 2})
	r.jitter = func(d time.Duration) time.Duration { return d }

	for n, want := range []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 5 * time.Second, 5 * time.Second} {
		if got := r.wait(n, &Error{Kind: KindUnavailable}); got != want {
			t.Errorf("wait(%d) = %v, want %v", n, got, want)
		}
	}
	if got := r.wait(0, &Error{Kind: KindRateLimit, RetryAfter: 9 * time.Second}); got != 9*time.Second {
		t.Errorf("Retry-After ignored: %v", got)
	}

	for range 50 {
		if d := spread(time.Second); d < 800*time.Millisecond || d > 1200*time.Millisecond {
			t.Fatalf("spread out of range: %v", d)
		}
	}
}

func TestRetrying_ContextCancelled(t *testing.T) {
	m := NewMock(MockReply{Err: &Error{Kind: KindUnavailable}}, MockReply{})
	r := WithRetry(m, RetryConfig{MaxAttempts: 3, InitialWait: time.Hour, Multiplier: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Generate(ctx, Request{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestSchemaValidate(t *testing.T) {
	tests := []struct {
		raw   string
		valid bool
	}{
		{`{"score":40,"note":"ok"}`, true},
		{`{"score":40}`, false},
		{`{"score":140,"note":"ok"}`, false},
		{`{"score":40,"note":"ok","extra":1}`, false},
		{`not json`, false},
	}
	for _, tt := range tests {
		err := verdictSchema.Validate(json.RawMessage(tt.raw))
		if (err == nil) != tt.valid {
			t.Errorf("Validate(%s) = %v, want valid=%v", tt.raw, err, tt.valid)
		}
	}
}

func TestMock(t *testing.T) {
	m := NewMock(MockReply{Content: json.RawMessage(`garbage`)})
	resp, err := m.Generate(context.Background(), Request{Prompt: "p1", Schema: verdictSchema})
	if err != nil || string(resp.Content) != "garbage" {
		t.Fatalf("queued replies pass through: %v %v", resp, err)
	}
	if _, err := m.Generate(context.Background(), Request{}); err == nil {
		t.Error("empty queue should fail")
	}

	m.Synthesize = true
	resp, err = m.Generate(context.Background(), Request{Schema: verdictSchema})
	if err != nil {
		t.Fatal(err)
	}
	if err := verdictSchema.Validate(resp.Content); err != nil {
		t.Errorf("synthesized %s does not validate: %v", resp.Content, err)
	}
	if m.Requests[0].Prompt != "p1" || m.CallCount() != 3 {
		t.Errorf("requests not recorded: %+v", m.Requests)
	}
}

func TestLookupCost(t *testing.T) {
	tests := []struct {
		model string
		known bool
	}{
		{"claude-haiku-4-5-20251001", true},
		{"anthropic/claude-haiku-4.5", true},
		{"openai/gpt-4o-mini", true},
		{"gpt-4o-2024-08-06", true},
		{"gemini-2.5-flash", true},
		{"mock", false},
	}
	for _, tt := range tests {
		if got := LookupCost(tt.model); (got != nil) != tt.known {
			t.Errorf("LookupCost(%q) = %v, want known=%v", tt.model, got, tt.known)
		}
	}
	if c := LookupCost("gpt-4o-mini").Cost(1_000_000, 1_000_000); c < 0.7499 || c > 0.7501 {
		t.Errorf("Cost = %v, want 0.75", c)
	}
}

type eventSink struct {
	events []store.LLMRequestEventData
	err    error
}

func (s *eventSink) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	s.events = append(s.events, data)
	return s.err
}

func TestRecording(t *testing.T) {
	m := NewMock(
		MockReply{Content: json.RawMessage(`{"score":90,"note":""}`), Usage: Usage{InputTokens: 12, OutputTokens: 4}},
		MockReply{Err: &Error{Kind: KindInvalid, Content: json.RawMessage(`{"bad":1}`), Err: errors.New("mismatch")}},
	)
	sink := &eventSink{}
	r := WithLogging(m, ProviderGemini, sink, nil)

	ctx := WithPurpose(context.Background(), PurposeCritique)
	if _, err := r.Generate(ctx, Request{System: "coach", Prompt: "Critique this.", Schema: verdictSchema}); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Generate(context.Background(), Request{Prompt: "again"}); err == nil {
		t.Fatal("want error")
	}

	if len(sink.events) != 2 {
		t.Fatalf("events = %d, want 2", len(sink.events))
	}
	ok, failed := sink.events[0], sink.events[1]
	if !ok.Success || ok.Purpose != string(PurposeCritique) || ok.InputTokens != 12 || ok.Provider != ProviderGemini {
		t.Errorf("success event = %+v", ok)
	}
	for _, part := range []string{"[system]", "Critique this.", "[schema: verdict]"} {
		if !strings.Contains(ok.RequestBody, part) {
			t.Errorf("RequestBody missing %q:\n%s", part, ok.RequestBody)
		}
	}
	if failed.Success || failed.Purpose != "unknown" || failed.ResponseBody != `{"bad":1}` {
		t.Errorf("failure event = %+v", failed)
	}
}

func TestRecording_SinkErrorIgnored(t *testing.T) {
	r := WithLogging(NewMock(MockReply{Content: json.RawMessage(`{}`)}), ProviderMock, &eventSink{err: errors.New("disk full")}, nil)
	if _, err := r.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("sink failure leaked: %v", err)
	}
}

func TestNewProvider(t *testing.T) {
	ctx := context.Background()

	p, err := NewProvider(ctx, Config{Provider: ProviderNone}, nil, nil)
	if p != nil || err != nil {
		t.Fatalf("none = (%v, %v), want (nil, nil)", p, err)
	}

	p, err = NewProvider(ctx, Config{Provider: ProviderMock, Retry: RetryConfig{MaxAttempts: 1}}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if p.ModelID() != "mock" {
		t.Errorf("ModelID = %q", p.ModelID())
	}
	if _, err := p.Generate(ctx, Request{Schema: verdictSchema}); err != nil {
		t.Errorf("mock provider should synthesize replies: %v", err)
	}

	if _, err := NewProvider(ctx, Config{Provider: ProviderAnthropic}, nil, nil); err == nil {
		t.Error("anthropic without a key should fail")
	}
	if _, err := NewProvider(ctx, Config{Provider: "bogus"}, nil, nil); err == nil {
		t.Error("unknown provider should fail")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("KIOKU_LLM_PROVIDER", "openrouter")
	t.Setenv("OPENROUTER_API_KEY", "plain-key")
	t.Setenv("KIOKU_OPENROUTER_API_KEY", "or-key")
	t.Setenv("KIOKU_LLM_TIMEOUT", "45s")

	cfg := ConfigFromEnv()
	if cfg.Provider != ProviderOpenRouter || cfg.OpenRouter.APIKey != "or-key" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Timeout != 45*time.Second {
		t.Errorf("Timeout = %v", cfg.Timeout)
	}
	if !HasExplicitProvider() {
		t.Error("HasExplicitProvider = false")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate = %v", err)
	}
}
