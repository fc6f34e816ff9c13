package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Env    string
	Port   string
	Search SearchConfig
	OpenAI OpenAIConfig
}

// SearchConfig holds the Azure AI Search connection parameters.
type SearchConfig struct {
	Endpoint   string
	APIKey     string
	IndexName  string
	APIVersion string
	Timeout    int
}

// OpenAIConfig holds the Azure OpenAI connection parameters.
type OpenAIConfig struct {
	Endpoint          string
	APIKey            string
	Deployment        string
	Timeout           int
	RequestsPerSecond float64
}

// Load reads .env (when present) and the environment. A missing required
// credential or endpoint is fatal here, before any pipeline exists; the
// orchestrator never sees configuration errors.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:  getEnv("ENV", "development"),
		Port: getEnv("PORT", "8080"),
		Search: SearchConfig{
			Endpoint:   os.Getenv("AZURE_SEARCH_ENDPOINT"),
			APIKey:     getSecret("AZURE_SEARCH_API_KEY", "AZURE_SEARCH_API_KEY_FILE", ""),
			IndexName:  os.Getenv("AZURE_SEARCH_INDEX"),
			APIVersion: getEnv("AZURE_SEARCH_API_VERSION", "2023-11-01"),
			Timeout:    getEnvInt("AZURE_SEARCH_TIMEOUT", 30),
		},
		OpenAI: OpenAIConfig{
			Endpoint:          os.Getenv("AZURE_OPENAI_ENDPOINT"),
			APIKey:            getSecret("AZURE_OPENAI_API_KEY", "AZURE_OPENAI_API_KEY_FILE", ""),
			Deployment:        os.Getenv("AZURE_OPENAI_DEPLOYMENT"),
			Timeout:           getEnvInt("AZURE_OPENAI_TIMEOUT", 120),
			RequestsPerSecond: getEnvFloat("AZURE_OPENAI_RPS", 2),
		},
	}

	required := []struct {
		name  string
		value string
	}{
		{"AZURE_SEARCH_ENDPOINT", cfg.Search.Endpoint},
		{"AZURE_SEARCH_API_KEY", cfg.Search.APIKey},
		{"AZURE_SEARCH_INDEX", cfg.Search.IndexName},
		{"AZURE_OPENAI_ENDPOINT", cfg.OpenAI.Endpoint},
		{"AZURE_OPENAI_API_KEY", cfg.OpenAI.APIKey},
		{"AZURE_OPENAI_DEPLOYMENT", cfg.OpenAI.Deployment},
	}
	var missing []string
	for _, r := range required {
		if r.value == "" {
			missing = append(missing, r.name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s (create a .env file based on .env.example)",
			strings.Join(missing, ", "))
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getSecret(envKey, fileEnvKey, fallback string) string {
	if value, ok := os.LookupEnv(envKey); ok {
		return value
	}

	if filePath, ok := os.LookupEnv(fileEnvKey); ok {
		content, err := os.ReadFile(filePath)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}
