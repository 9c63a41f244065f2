package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("APP_PORT", "")
	t.Setenv("LLM_TIMEOUT", "")

	cfg := Load()

	assert.Equal(t, "8000", cfg.App.Port)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, "openai", cfg.Ai.LLMProvider)
	assert.Equal(t, 60*time.Second, cfg.Ai.Timeout)
	assert.False(t, cfg.App.TopicGuardEnabled)
}

func TestLoadPrefersPlatformPort(t *testing.T) {
	t.Setenv("PORT", "10000")
	t.Setenv("APP_PORT", "3000")
	t.Setenv("REPORT_TIMEOUT", "5s")
	t.Setenv("TOPIC_GUARD_ENABLED", "true")
	t.Setenv("STORAGE_DRIVER", "SQLite")

	cfg := Load()

	assert.Equal(t, "10000", cfg.App.Port)
	assert.Equal(t, 5*time.Second, cfg.Report.Timeout)
	assert.True(t, cfg.App.TopicGuardEnabled)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
}

func TestLoadDefaultModelFollowsProvider(t *testing.T) {
	cases := []struct {
		provider, model string
	}{
		{"openai", "gpt-4o-mini"},
		{"Gemini", "gemini-2.0-flash"},
		{"ollama", "llama3"},
	}
	for _, c := range cases {
		t.Run(c.provider, func(t *testing.T) {
			t.Setenv("LLM_PROVIDER", c.provider)
			t.Setenv("LLM_MODEL", "")

			cfg := Load()

			assert.Equal(t, c.model, cfg.Ai.LLMModel)
		})
	}

	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("LLM_MODEL", "gemini-1.5-pro")
	assert.Equal(t, "gemini-1.5-pro", Load().Ai.LLMModel)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Storage: StorageConfig{Driver: "memory"},
			Keys:    APIKeys{OpenAI: "sk-test"},
			Ai:      AIConfig{LLMProvider: "openai", Timeout: time.Second},
			Report:  ReportConfig{Timeout: time.Second},
		}
	}

	require.NoError(t, valid().Validate())

	cfg := valid()
	cfg.Keys.OpenAI = ""
	assert.ErrorContains(t, cfg.Validate(), "OPENAI_API_KEY")

	cfg = valid()
	cfg.Ai.LLMProvider = "watson"
	assert.ErrorContains(t, cfg.Validate(), "unsupported LLM_PROVIDER")

	cfg = valid()
	cfg.Storage.Driver = "postgres"
	assert.ErrorContains(t, cfg.Validate(), "DB_CONNECTION_STRING")

	cfg = valid()
	cfg.Storage.Driver = "mongo"
	assert.ErrorContains(t, cfg.Validate(), "unsupported STORAGE_DRIVER")

	cfg = valid()
	cfg.Report.Timeout = 0
	assert.Error(t, cfg.Validate())
}
