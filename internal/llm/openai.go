package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const openRouterURL = "https://openrouter.ai/api/v1"

// OpenAI generates critiques through the chat completions API. It also
// serves OpenRouter and any other compatible endpoint.
type OpenAI struct {
	client  *openai.Client
	model   string
	backend string
}

// NewOpenAI returns a backend for cfg.
func NewOpenAI(cfg OpenAIConfig) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: missing API key")
	}
	return newOpenAI("openai", cfg.APIKey, cfg.BaseURL, cfg.Model), nil
}

// NewOpenRouter returns an OpenAI-compatible backend aimed at OpenRouter.
// Model names keep their vendor prefix, e.g. "anthropic/claude-haiku-4.5".
func NewOpenRouter(cfg OpenRouterConfig) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openrouter: missing API key")
	}
	base := cfg.BaseURL
	if base == "" {
		base = openRouterURL
	}
	return newOpenAI("openrouter", cfg.APIKey, base, cfg.Model), nil
}

func newOpenAI(backend, key, baseURL, model string) *OpenAI {
	conf := openai.DefaultConfig(key)
	if baseURL != "" {
		conf.BaseURL = baseURL
	}
	return &OpenAI{
		client:  openai.NewClientWithConfig(conf),
		model:   model,
		backend: backend,
	}
}

func (o *OpenAI) ModelID() string { return o.model }

func (o *OpenAI) Generate(ctx context.Context, req Request) (*Response, error) {
	var msgs []openai.ChatCompletionMessage
	if req.System != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Prompt})

	creq := openai.ChatCompletionRequest{
		Model:               o.model,
		Messages:            msgs,
		MaxCompletionTokens: req.MaxTokens,
		Temperature:         float32(req.Temperature),
	}
	if req.Schema != nil {
		def, err := json.Marshal(req.Schema.Definition)
		if err != nil {
			return nil, fmt.Errorf("%s: encode schema: %w", o.backend, err)
		}
		creq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   req.Schema.Name,
				Schema: json.RawMessage(def),
				Strict: true,
			},
		}
	}

	resp, err := o.client.CreateChatCompletion(ctx, creq)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return nil, classifyStatus(o.backend, apiErr.HTTPStatusCode, err)
		}
		var reqErr *openai.RequestError
		if errors.As(err, &reqErr) {
			return nil, classifyStatus(o.backend, reqErr.HTTPStatusCode, err)
		}
		return nil, transportError(o.backend, err)
	}
	if len(resp.Choices) == 0 {
		return nil, &Error{Kind: KindInvalid, Backend: o.backend, Err: errors.New("reply has no choices")}
	}

	choice := resp.Choices[0]
	stop := StopEnd
	if choice.FinishReason == openai.FinishReasonLength {
		stop = StopMaxTokens
	}
	usage := Usage{InputTokens: resp.Usage.PromptTokens, OutputTokens: resp.Usage.CompletionTokens}
	return finish(o.backend, req, json.RawMessage(choice.Message.Content), usage, resp.Model, stop)
}
