package llm

import (
	"context"
	"fmt"
	"log/slog"
)

// NewProvider builds the backend cfg selects, wrapped so that every attempt
// is recorded and transient failures are retried. It returns (nil, nil) for
// ProviderNone, which callers treat as "critiques disabled".
func NewProvider(ctx context.Context, cfg Config, events RequestLogger, logger *slog.Logger) (Provider, error) {
	var (
		backend Provider
		err     error
	)
	switch cfg.Provider {
	case ProviderNone, "":
		return nil, nil
	case ProviderMock:
		backend = &Mock{Synthesize: true}
	case ProviderAnthropic:
		backend, err = NewAnthropic(cfg.Anthropic)
	case ProviderOpenAI:
		backend, err = NewOpenAI(cfg.OpenAI)
	case ProviderOpenRouter:
		backend, err = NewOpenRouter(cfg.OpenRouter)
	case ProviderGemini:
		backend, err = NewGemini(ctx, cfg.Gemini, "")
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return WithRetry(WithLogging(backend, cfg.Provider, events, logger), cfg.Retry), nil
}
