package llm

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/abhisek/kioku/internal/store"
)

// RequestLogger persists one event per provider call.
type RequestLogger interface {
	AppendLLMRequest(ctx context.Context, data store.LLMRequestEventData) error
}

// Recording stores every call it forwards as an LLM request event. Failing
// to store an event never fails the call.
type Recording struct {
	next    Provider
	backend string
	events  RequestLogger
	logger  *slog.Logger
	now     func() time.Time
}

// WithLogging wraps p. A nil events disables persistence and a nil logger
// uses slog.Default().
func WithLogging(p Provider, backend string, events RequestLogger, logger *slog.Logger) *Recording {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recording{next: p, backend: backend, events: events, logger: logger, now: time.Now}
}

func (r *Recording) ModelID() string { return r.next.ModelID() }

func (r *Recording) Generate(ctx context.Context, req Request) (*Response, error) {
	start := r.now()
	resp, err := r.next.Generate(ctx, req)
	elapsed := r.now().Sub(start)

	ev := store.LLMRequestEventData{
		Provider:    r.backend,
		Model:       r.next.ModelID(),
		Purpose:     string(PurposeFrom(ctx)),
		LatencyMs:   elapsed.Milliseconds(),
		Success:     err == nil,
		RequestBody: transcript(req),
	}
	if resp != nil {
		ev.Model = resp.Model
		ev.InputTokens = resp.Usage.InputTokens
		ev.OutputTokens = resp.Usage.OutputTokens
		ev.ResponseBody = string(resp.Content)
	}
	if err != nil {
		ev.ErrorMessage = err.Error()
		var e *Error
		if errors.As(err, &e) && len(e.Content) > 0 {
			ev.ResponseBody = string(e.Content)
		}
		r.logger.Debug("llm request failed", "backend", r.backend, "purpose", ev.Purpose, "err", err)
	} else {
		r.logger.Debug("llm request", "backend", r.backend, "purpose", ev.Purpose,
			"model", ev.Model, "tokens", resp.Usage.Total(), "elapsed", elapsed)
	}

	if r.events != nil {
		if lerr := r.events.AppendLLMRequest(ctx, ev); lerr != nil {
			r.logger.Warn("record llm request", "err", lerr)
		}
	}
	return resp, err
}

// transcript renders req the way `kioku llm view` shows it.
func transcript(req Request) string {
	var b strings.Builder
	section := func(title, body string) {
		b.WriteString("[" + title + "]\n")
		b.WriteString(body)
		b.WriteString("\n\n")
	}
	if req.System != "" {
		section("system", req.System)
	}
	section("user", req.Prompt)
	if req.Schema != nil {
		if def, err := json.MarshalIndent(req.Schema.Definition, "", "  "); err == nil {
			section("schema: "+req.Schema.Name, string(def))
		}
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}
