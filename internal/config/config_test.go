package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/kioku/internal/llm"
)

// clearLLMEnv unsets every variable that influences provider discovery.
func clearLLMEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY",
		"KIOKU_LLM_PROVIDER", "KIOKU_LLM_TIMEOUT",
		"KIOKU_GEMINI_API_KEY", "KIOKU_OPENAI_API_KEY", "KIOKU_ANTHROPIC_API_KEY", "KIOKU_OPENROUTER_API_KEY",
		"KIOKU_GEMINI_MODEL", "KIOKU_OPENAI_MODEL", "KIOKU_ANTHROPIC_MODEL", "KIOKU_OPENROUTER_MODEL",
	} {
		t.Setenv(k, "")
	}
}

func TestPathPriority(t *testing.T) {
	t.Setenv("KIOKU_CONFIG", "/tmp/explicit.toml")
	p, err := Path()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/explicit.toml", p)

	t.Setenv("KIOKU_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	p, err = Path()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/xdg", "kioku", "config.toml"), p)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
catalog = "/data/bank.yaml"

[study]
shuffle = true
reflect = false
upcoming_limit = 0

[llm]
provider = "openai"
model = "gpt-4o"
timeout = "45s"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/bank.yaml", cfg.Catalog)
	assert.True(t, cfg.Study.Shuffle)
	assert.False(t, cfg.Study.Reflect)
	assert.Equal(t, 10, cfg.Study.UpcomingLimit, "non-positive limit falls back to default")
	assert.Equal(t, 5, cfg.Study.BackupsKept)
	assert.Equal(t, "openai", cfg.LLM.Provider)
}

func TestLoadRejectsBadTimeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[llm]\ntimeout = \"soon\"\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("catalog = \n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	want := Default()
	want.Catalog = "bank.json"
	want.LLM.Provider = "mock"

	require.NoError(t, Save(path, want))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLLMSettingsNoKeysMeansNone(t *testing.T) {
	clearLLMEnv(t)

	got := Default().LLMSettings()
	assert.Equal(t, llm.ProviderNone, got.Provider)
}

func TestLLMSettingsDiscoversKey(t *testing.T) {
	clearLLMEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	got := Default().LLMSettings()
	assert.Equal(t, llm.ProviderOpenAI, got.Provider)
	assert.Equal(t, "sk-test", got.OpenAI.APIKey)
	assert.Equal(t, 30*time.Second, got.Timeout)
}

func TestLLMSettingsFileProviderAndModel(t *testing.T) {
	clearLLMEnv(t)
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")

	cfg := Default()
	cfg.LLM = LLMConfig{Provider: "anthropic", Model: "claude-sonnet", Timeout: "10s"}

	got := cfg.LLMSettings()
	assert.Equal(t, llm.ProviderAnthropic, got.Provider)
	assert.Equal(t, "claude-sonnet", got.Anthropic.Model)
	assert.Equal(t, "sk-ant", got.Anthropic.APIKey)
	assert.Equal(t, 10*time.Second, got.Timeout)
	assert.NoError(t, got.Validate())
}

func TestLLMSettingsEnvOverridesFile(t *testing.T) {
	clearLLMEnv(t)
	t.Setenv("KIOKU_LLM_PROVIDER", "mock")

	cfg := Default()
	cfg.LLM.Provider = "gemini"

	got := cfg.LLMSettings()
	assert.Equal(t, llm.ProviderMock, got.Provider)
}
