package factory

import (
	"context"
	"fmt"
	"time"

	"fisiqia-be/pkg/llm"
	"fisiqia-be/pkg/llm/gemini"
	"fisiqia-be/pkg/llm/ollama"
	"fisiqia-be/pkg/llm/openai"
)

// TransportSlack keeps the HTTP client deadline behind the caller's context
// deadline, so the context is the one that fires.
const TransportSlack = 5 * time.Second

type Config struct {
	Provider  string
	Model     string
	APIKey    string
	BaseURL   string
	MaxTokens int
	// Timeout is the per-request budget the caller enforces on its context.
	Timeout time.Duration
}

// TransportTimeout is the HTTP client timeout for a request budget. Zero means none.
func TransportTimeout(budget time.Duration) time.Duration {
	if budget <= 0 {
		return 0
	}
	return budget + TransportSlack
}

func NewLLMProvider(ctx context.Context, cfg Config) (llm.LLMProvider, error) {
	transport := TransportTimeout(cfg.Timeout)
	switch cfg.Provider {
	case "openai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openai provider requires an API key")
		}
		p, err := openai.NewOpenAIProvider(ctx, cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.MaxTokens, transport)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "gemini":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("gemini provider requires an API key")
		}
		p, err := gemini.NewGeminiProvider(ctx, cfg.APIKey, cfg.Model, cfg.MaxTokens)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "ollama":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, cfg.Model, cfg.MaxTokens, transport), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
