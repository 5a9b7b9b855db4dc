package llm

import (
	"fmt"
	"os"
	"time"
)

// EnvPrefix prefixes every kioku environment variable.
const EnvPrefix = "KIOKU_"

// Provider names.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
	ProviderNone       = "none"
)

// Config selects and configures the critique backend.
type Config struct {
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout bounds one critique, retries included.
	Timeout time.Duration
}

type AnthropicConfig struct {
	APIKey string
	Model  string
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string // for OpenAI-compatible servers
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type OpenRouterConfig struct {
	APIKey  string
	Model   string // vendor-prefixed, e.g. "openai/gpt-4o-mini"
	BaseURL string
}

// RetryConfig shapes the backoff between attempts.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig uses the cheapest capable model of each vendor.
func DefaultConfig() Config {
	return Config{
		Provider:   ProviderAnthropic,
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenRouterConfig{Model: "anthropic/claude-haiku-4.5"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2,
		},
		Timeout: 30 * time.Second,
	}
}

// keyed lists each vendor's environment stem with its key and model fields,
// in the order DiscoverConfig probes them.
func (c *Config) keyed() []struct {
	provider, stem string
	key, model     *string
} {
	return []struct {
		provider, stem string
		key, model     *string
	}{
		{ProviderGemini, "GEMINI", &c.Gemini.APIKey, &c.Gemini.Model},
		{ProviderOpenAI, "OPENAI", &c.OpenAI.APIKey, &c.OpenAI.Model},
		{ProviderAnthropic, "ANTHROPIC", &c.Anthropic.APIKey, &c.Anthropic.Model},
		{ProviderOpenRouter, "OPENROUTER", &c.OpenRouter.APIKey, &c.OpenRouter.Model},
	}
}

// ApplyEnv overrides cfg with whichever KIOKU_* variables are set. A key
// missing from cfg is also read from the vendor's own variable, such as
// ANTHROPIC_API_KEY; the KIOKU_ form wins when both are set.
func ApplyEnv(cfg *Config) {
	override := func(name string, dst *string) {
		if v := os.Getenv(EnvPrefix + name); v != "" {
			*dst = v
		}
	}

	override("LLM_PROVIDER", &cfg.Provider)
	for _, k := range cfg.keyed() {
		if *k.key == "" {
			*k.key = os.Getenv(k.stem + "_API_KEY")
		}
		override(k.stem+"_API_KEY", k.key)
		override(k.stem+"_MODEL", k.model)
	}
	override("OPENAI_BASE_URL", &cfg.OpenAI.BaseURL)

	if d, err := time.ParseDuration(os.Getenv(EnvPrefix + "LLM_TIMEOUT")); err == nil && d > 0 {
		cfg.Timeout = d
	}
}

// ConfigFromEnv is DefaultConfig with ApplyEnv applied.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	ApplyEnv(&cfg)
	return cfg
}

// HasExplicitProvider reports whether KIOKU_LLM_PROVIDER is set.
func HasExplicitProvider() bool {
	return os.Getenv(EnvPrefix+"LLM_PROVIDER") != ""
}

// DiscoverConfig picks the first vendor whose standard API key variable is
// set, probing Gemini, OpenAI, Anthropic and then OpenRouter.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()
	for _, k := range cfg.keyed() {
		if v := os.Getenv(k.stem + "_API_KEY"); v != "" {
			cfg.Provider = k.provider
			*k.key = v
			return cfg, true
		}
	}
	return Config{}, false
}

// Validate checks that the selected provider is known and has a key.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderMock, ProviderNone:
		return nil
	}
	for _, k := range c.keyed() {
		if k.provider != c.Provider {
			continue
		}
		if *k.key == "" {
			return fmt.Errorf("%s%s_API_KEY is required for the %s provider", EnvPrefix, k.stem, c.Provider)
		}
		return nil
	}
	return fmt.Errorf("unknown LLM provider: %q", c.Provider)
}
