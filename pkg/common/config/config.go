package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	ServerHost   string
	ServerPort   string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Environment  string

	// Database
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Kafka
	KafkaBrokers []string
	KafkaTopic   string

	// LLM backend. An empty API key is the expected demo-mode configuration,
	// not a startup error: the deterministic heuristic takes over.
	LLMAPIKey         string
	LLMBaseURL        string
	LLMModelName      string
	LLMRequestTimeout time.Duration

	// Demo patient-scope sessions
	SessionSecret string
	SessionTTL    time.Duration

	// Questionnaire/emergency catalog override (optional YAML file)
	CatalogPath string

	// Patient directory cache
	PatientCacheTTL time.Duration

	// Rate limiting
	RateLimitRPS   int
	RateLimitBurst int
}

func Load() *Config {
	return &Config{
		ServerHost:   getEnv("SERVER_HOST", "0.0.0.0"),
		ServerPort:   getEnv("SERVER_PORT", "8080"),
		ReadTimeout:  getDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout: getDuration("WRITE_TIMEOUT", 30*time.Second),
		Environment:  getEnv("ENVIRONMENT", "development"),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "carelink"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "carelink123"),
		PostgresDB:       getEnv("POSTGRES_DB", "carelink"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),

		KafkaBrokers: getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "assessment-events"),

		LLMAPIKey:         getEnv("LLM_API_KEY", ""),
		LLMBaseURL:        getEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
		LLMModelName:      getEnv("LLM_MODEL_NAME", "gpt-4o-mini"),
		LLMRequestTimeout: getDuration("LLM_REQUEST_TIMEOUT", 20*time.Second),

		SessionSecret: getEnv("SESSION_SECRET", "carelink-demo-session-secret"),
		SessionTTL:    getDuration("SESSION_TTL", 12*time.Hour),

		CatalogPath: getEnv("CATALOG_PATH", ""),

		PatientCacheTTL: getDuration("PATIENT_CACHE_TTL", 5*time.Minute),

		RateLimitRPS:   getIntEnv("RATE_LIMIT_RPS", 50),
		RateLimitBurst: getIntEnv("RATE_LIMIT_BURST", 100),
	}
}

// DemoMode reports whether no LLM credential is configured, in which case
// symptom analysis runs on the deterministic heuristic only.
func (c *Config) DemoMode() bool {
	return c.LLMAPIKey == ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getStringSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
