package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds application configuration
type Config struct {
	DatabaseURL string
	ServerPort  string
	BaseURL     string
	FrontendURL string
	EnableHSTS  bool

	OpenAIKey  string
	AIProvider string
	AIModel    string
	AIBaseURL  string

	ElevenLabsKey  string
	ElevenLabsURL  string
	DefaultVoiceID string
	AudioDir       string
	PromptDir      string

	MusicServerURL      string
	MusicServerUser     string
	MusicServerPassword string

	RedisURL         string
	RateLimit        string
	RabbitMQURL      string
	RabbitMQPrefetch int

	ModWarningThreshold int
	ModMuteDurationSec  int
	ModMuteThreshold    int
	ModSuspensionDurSec int

	WorkerDebugMode bool
	ServerDebugMode bool
	OTELEnabled     bool
	OTELEndpoint    string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL: getEnv("DATABASE_URL", ""),
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
		EnableHSTS:  getEnvBool("ENABLE_HSTS", false),

		OpenAIKey:  getEnv("OPENAI_API_KEY", ""),
		AIProvider: getEnv("AI_PROVIDER", "openai"),
		AIModel:    getEnv("AI_MODEL", ""),
		AIBaseURL:  getEnv("AI_BASE_URL", ""),

		ElevenLabsKey:  getEnv("ELEVENLABS_API_KEY", ""),
		ElevenLabsURL:  getEnv("ELEVENLABS_BASE_URL", ""),
		DefaultVoiceID: getEnv("DEFAULT_VOICE_ID", ""),
		AudioDir:       getEnv("AUDIO_DIR", "./data/audio"),
		PromptDir:      getEnv("PROMPT_DIR", ""),

		MusicServerURL:      getEnv("MUSIC_SERVER_URL", ""),
		MusicServerUser:     getEnv("MUSIC_SERVER_USER", ""),
		MusicServerPassword: getEnv("MUSIC_SERVER_PASSWORD", ""),

		RedisURL:         getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RateLimit:        getEnv("RATE_LIMIT", "30-M"),
		RabbitMQURL:      getEnv("RABBITMQ_URL", ""),
		RabbitMQPrefetch: getEnvInt("RABBITMQ_PREFETCH", 1),

		ModWarningThreshold: getEnvInt("MOD_WARNING_THRESHOLD", 2),
		ModMuteDurationSec:  getEnvInt("MOD_MUTE_DURATION", 60),
		ModMuteThreshold:    getEnvInt("MOD_MUTE_THRESHOLD", 3),
		ModSuspensionDurSec: getEnvInt("MOD_SUSPENSION_DURATION", 3600),

		WorkerDebugMode: getEnvBool("WORKER_DEBUG_MODE", false),
		ServerDebugMode: getEnvBool("SERVER_DEBUG_MODE", false),
		OTELEnabled:     getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required (moderation and response generation need a language model)")
	}

	if cfg.RabbitMQURL == "" {
		return nil, fmt.Errorf("RABBITMQ_URL is required for job queueing (playlist creation requires RabbitMQ)")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
