// Package config loads the kioku config file ($XDG_CONFIG_HOME/kioku/config.toml)
// and merges it with environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/abhisek/kioku/internal/llm"
)

// Config holds user settings.
type Config struct {
	// Catalog is the path to a JSON or YAML item bank. Empty selects the
	// embedded sample bank.
	Catalog string      `toml:"catalog"`
	DB      string      `toml:"db"`
	Study   StudyConfig `toml:"study"`
	LLM     LLMConfig   `toml:"llm"`
}

// StudyConfig controls the study loop.
type StudyConfig struct {
	Shuffle       bool `toml:"shuffle"`
	Reflect       bool `toml:"reflect"`
	UpcomingLimit int  `toml:"upcoming_limit"`
	BackupsKept   int  `toml:"backups_kept"`
}

// LLMConfig selects the provider used for critiques. API keys come from the
// environment only.
type LLMConfig struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	Timeout  string `toml:"timeout"`
}

// Default returns sensible defaults.
func Default() Config {
	return Config{
		Study: StudyConfig{
			Reflect:       true,
			UpcomingLimit: 10,
			BackupsKept:   5,
		},
		LLM: LLMConfig{
			Timeout: "30s",
		},
	}
}

// Path resolves the config file path in priority order:
// 1. KIOKU_CONFIG environment variable
// 2. $XDG_CONFIG_HOME/kioku/config.toml
// 3. ~/.config/kioku/config.toml
func Path() (string, error) {
	if p := os.Getenv("KIOKU_CONFIG"); p != "" {
		return p, nil
	}

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "kioku", "config.toml"), nil
}

// Load reads the config at path, applying defaults for missing values. An
// empty path resolves through Path. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		p, err := Path()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: load %s: %w", path, err)
	}

	if _, err := cfg.timeout(); err != nil {
		return cfg, fmt.Errorf("config: llm.timeout: %w", err)
	}
	if cfg.Study.UpcomingLimit <= 0 {
		cfg.Study.UpcomingLimit = Default().Study.UpcomingLimit
	}
	if cfg.Study.BackupsKept < 0 {
		cfg.Study.BackupsKept = 0
	}
	return cfg, nil
}

// Save writes cfg to path, creating the parent directory.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: mkdir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("config: create %s: %w", path, err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

func (c Config) timeout() (time.Duration, error) {
	if c.LLM.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", d)
	}
	return d, nil
}

// LLMSettings resolves the provider configuration. KIOKU_* environment
// variables override the file; when neither names a provider, standard API
// key variables are probed, and without any key the provider is "none".
func (c Config) LLMSettings() llm.Config {
	cfg := llm.DefaultConfig()
	explicit := c.LLM.Provider != "" || llm.HasExplicitProvider()

	if !explicit {
		discovered, ok := llm.DiscoverConfig()
		if !ok {
			cfg.Provider = llm.ProviderNone
			return cfg
		}
		cfg = discovered
	}

	if c.LLM.Provider != "" {
		cfg.Provider = c.LLM.Provider
	}
	if c.LLM.Model != "" {
		switch cfg.Provider {
		case llm.ProviderAnthropic:
			cfg.Anthropic.Model = c.LLM.Model
		case llm.ProviderOpenAI:
			cfg.OpenAI.Model = c.LLM.Model
		case llm.ProviderGemini:
			cfg.Gemini.Model = c.LLM.Model
		case llm.ProviderOpenRouter:
			cfg.OpenRouter.Model = c.LLM.Model
		}
	}
	if d, err := c.timeout(); err == nil && d > 0 {
		cfg.Timeout = d
	}

	llm.ApplyEnv(&cfg)
	return cfg
}
