// Package llm talks to hosted language models for answer critiques. Every
// backend returns JSON checked against the request schema.
package llm

import (
	"context"
	"encoding/json"
)

// Provider generates one structured completion per call.
type Provider interface {
	// Generate sends req and returns the model output. With a Schema set the
	// output is validated JSON.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the configured model identifier.
	ModelID() string
}

// Request is a single-turn prompt. Critiques never carry conversation
// history.
type Request struct {
	System string
	Prompt string

	// Schema constrains the output through the backend's native structured
	// output mode. Nil asks for free text.
	Schema *Schema

	MaxTokens   int
	Temperature float64 // 0 leaves the backend default
}

// Schema is a named JSON Schema document.
type Schema struct {
	// Name is kebab-case, e.g. "answer-critique". Backends use it as the
	// schema or tool name.
	Name        string
	Description string
	Definition  map[string]any
}

// StopReason is the normalized reason generation ended.
type StopReason string

const (
	StopEnd       StopReason = "end"
	StopMaxTokens StopReason = "max_tokens"
)

// Response is one completion.
type Response struct {
	Content json.RawMessage
	Usage   Usage
	Model   string // the model that served the request
	Stop    StopReason
}

// Usage counts tokens for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Total returns input plus output tokens.
func (u Usage) Total() int {
	return u.InputTokens + u.OutputTokens
}

// finish checks raw backend output against req and builds the Response.
// Truncated output is an error when a schema was requested, since the JSON
// is then incomplete.
func finish(backend string, req Request, content json.RawMessage, usage Usage, model string, stop StopReason) (*Response, error) {
	if req.Schema != nil {
		if stop == StopMaxTokens {
			return nil, &Error{Kind: KindTruncated, Backend: backend, Content: content}
		}
		if err := req.Schema.Validate(content); err != nil {
			return nil, &Error{Kind: KindInvalid, Backend: backend, Content: content, Err: err}
		}
	}
	return &Response{Content: content, Usage: usage, Model: model, Stop: stop}, nil
}
