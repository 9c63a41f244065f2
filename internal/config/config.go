package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App     AppConfig
	Storage StorageConfig
	Keys    APIKeys
	Ai      AIConfig
	Report  ReportConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	LLMLogFilePath     string
	CorsAllowedOrigins string
	StaticDir          string
	NatsURL            string
	TopicGuardEnabled  bool
}

type StorageConfig struct {
	Driver     string // "memory" | "redis" | "postgres" | "sqlite"
	Connection string
	RedisURL   string
	SessionTTL time.Duration
}

type APIKeys struct {
	OpenAI       string
	GoogleGemini string
}

type AIConfig struct {
	LLMProvider   string // "openai" | "gemini" | "ollama"
	LLMModel      string
	MaxTokens     int
	Timeout       time.Duration
	OpenAIBaseURL string
	OllamaBaseURL string
}

type ReportConfig struct {
	RequireAllSections bool
	ConsistencyCheck   bool
	Timeout            time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	provider := strings.ToLower(getEnv("LLM_PROVIDER", "openai"))
	model := getEnv("LLM_MODEL", "")
	if model == "" {
		model = DefaultModel(provider)
	}

	port := getEnv("PORT", "")
	if port == "" {
		port = getEnv("APP_PORT", "")
	}
	if port == "" {
		port = "8000"
	}

	return &Config{
		App: AppConfig{
			Port:               port,
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			LLMLogFilePath:     getEnv("LLM_LOG_FILE_PATH", "logs/llm.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			StaticDir:          getEnv("STATIC_DIR", "frontend/dist"),
			NatsURL:            getEnv("NATS_URL", ""),
			TopicGuardEnabled:  getEnvAsBool("TOPIC_GUARD_ENABLED", false),
		},
		Storage: StorageConfig{
			Driver:     strings.ToLower(getEnv("STORAGE_DRIVER", "memory")),
			Connection: getEnv("DB_CONNECTION_STRING", ""),
			RedisURL:   getEnv("REDIS_URL", "redis://localhost:6379"),
			SessionTTL: getEnvAsDuration("SESSION_TTL", 24*time.Hour),
		},
		Keys: APIKeys{
			OpenAI:       getEnv("OPENAI_API_KEY", ""),
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
		},
		Ai: AIConfig{
			LLMProvider:   provider,
			LLMModel:      model,
			MaxTokens:     getEnvAsInt("LLM_MAX_TOKENS", 1500),
			Timeout:       getEnvAsDuration("LLM_TIMEOUT", 60*time.Second),
			OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
			OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		},
		Report: ReportConfig{
			RequireAllSections: getEnvAsBool("REPORT_REQUIRE_ALL_SECTIONS", false),
			ConsistencyCheck:   getEnvAsBool("REPORT_CONSISTENCY_CHECK", false),
			Timeout:            getEnvAsDuration("REPORT_TIMEOUT", 90*time.Second),
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func (c *Config) Validate() error {
	switch c.Ai.LLMProvider {
	case "openai":
		if c.Keys.OpenAI == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for provider openai")
		}
	case "gemini":
		if c.Keys.GoogleGemini == "" {
			return fmt.Errorf("GOOGLE_GEMINI_API_KEY is required for provider gemini")
		}
	case "ollama":
		if c.Ai.OllamaBaseURL == "" {
			return fmt.Errorf("OLLAMA_BASE_URL is required for provider ollama")
		}
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER: %s", c.Ai.LLMProvider)
	}

	switch c.Storage.Driver {
	case "memory", "redis":
	case "postgres", "sqlite":
		if c.Storage.Connection == "" {
			return fmt.Errorf("DB_CONNECTION_STRING is required for storage driver %s", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER: %s", c.Storage.Driver)
	}

	if c.Ai.Timeout <= 0 || c.Report.Timeout <= 0 {
		return fmt.Errorf("LLM_TIMEOUT and REPORT_TIMEOUT must be positive")
	}
	return nil
}

// DefaultModel is the model used when LLM_MODEL is unset.
func DefaultModel(provider string) string {
	switch provider {
	case "gemini":
		return "gemini-2.0-flash"
	case "ollama":
		return "llama3"
	default:
		return "gpt-4o-mini"
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
