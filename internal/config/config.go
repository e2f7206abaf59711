package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"notekit/internal/logger"
)

type Config struct {
	// Data directory for the file-backed note/flashcard store
	DataDir string

	// OCR Configuration
	OCREngine         string // "tesseract" or "vision"
	OCRLanguage       string
	TessdataDir       string // trained data location for tesseract
	VisionCredentials string // service account JSON path for the vision engine

	// Enrichment Configuration
	EnrichProvider string // "http", "openai" or "none"
	EnrichURL      string
	EnrichTimeout  time.Duration
	OpenAIAPIKey   string
	OpenAIModel    string

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		DataDir:           getEnv("NOTEKIT_DATA_DIR", defaultDataDir()),
		OCREngine:         getEnv("OCR_ENGINE", "tesseract"),
		OCRLanguage:       getEnv("OCR_LANGUAGE", "eng"),
		TessdataDir:       getEnv("TESSDATA_DIR", ""),
		VisionCredentials: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
		EnrichProvider:    getEnv("ENRICH_PROVIDER", "none"),
		EnrichURL:         getEnv("ENRICH_URL", ""),
		EnrichTimeout:     time.Duration(getEnvInt("ENRICH_TIMEOUT_SECONDS", 30)) * time.Second,
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:       getEnv("OPENAI_MODEL", ""),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:     getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:         getEnv("LOG_OUTPUT", "stderr"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	switch c.OCREngine {
	case "tesseract", "vision", "google-vision":
	default:
		return fmt.Errorf("OCR_ENGINE must be \"tesseract\" or \"vision\", got %q", c.OCREngine)
	}
	switch c.EnrichProvider {
	case "none", "":
	case "http":
		if c.EnrichURL == "" {
			return fmt.Errorf("ENRICH_URL is required when ENRICH_PROVIDER=http")
		}
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when ENRICH_PROVIDER=openai")
		}
	default:
		return fmt.Errorf("ENRICH_PROVIDER must be \"http\", \"openai\" or \"none\", got %q", c.EnrichProvider)
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".notekit"
	}
	return home + "/.notekit"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
