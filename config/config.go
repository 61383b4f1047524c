package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerPort  string
	ServerHost  string
	CORSOrigins []string

	// Database configuration. DBDriver is "postgres" or "sqlite".
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// Redis configuration
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// JWT configuration
	JWTSecret string
	JWTTTL    time.Duration

	// Analysis configuration
	AnalysisCacheTTL  time.Duration
	AnalysisRateLimit int
	RateLimitWindow   time.Duration

	// Product lookup (OpenFoodFacts)
	ProductAPIURL     string
	ProductAPITimeout time.Duration

	// AI classification fallback (OpenAI-compatible chat completions)
	AIFallbackEnabled bool
	LLMBaseURL        string
	LLMAPIKey         string
	LLMModel          string
	LLMTimeout        time.Duration

	// Registry override stored in S3. Empty key means the built-in table.
	RegistryBucket string
	RegistryKey    string
	AWSRegion      string

	// Tracing
	OTelEnabled     bool
	OTelEndpoint    string
	OTelInsecure    bool
	OTelSampleRatio float64
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()

	if env == Development || env == Test {
		// a missing .env file is fine; real env vars still apply
		_ = godotenv.Load()
	}

	cfg := &Config{Environment: env}
	loadFromEnv(cfg)

	switch env {
	case CI:
		cfg.DBPassword = firstNonEmpty(os.Getenv("TEST_DB_PASSWORD"), cfg.DBPassword)
		cfg.JWTSecret = firstNonEmpty(os.Getenv("TEST_JWT_SECRET"), cfg.JWTSecret)
		cfg.RedisPassword = firstNonEmpty(os.Getenv("TEST_REDIS_PASSWORD"), cfg.RedisPassword)
		cfg.RedisURL = firstNonEmpty(os.Getenv("TEST_REDIS_URL"), cfg.RedisURL)
	case Development, Test:
		applyDevDefaults(cfg)
		loadSecrets(cfg)
	case Production:
		loadSecrets(cfg)
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func loadFromEnv(cfg *Config) {
	cfg.ServerPort = getEnv("SERVER_PORT", "8080")
	cfg.ServerHost = getEnv("SERVER_HOST", "0.0.0.0")
	cfg.CORSOrigins = splitList(getEnv("CORS_ORIGINS", "*"))

	cfg.DBDriver = strings.ToLower(getEnv("DB_DRIVER", "postgres"))
	cfg.DBHost = os.Getenv("DB_HOST")
	cfg.DBPort = os.Getenv("DB_PORT")
	cfg.DBUser = os.Getenv("DB_USER")
	cfg.DBPassword = os.Getenv("DB_PASSWORD")
	cfg.DBName = os.Getenv("DB_NAME")
	cfg.DBSSLMode = os.Getenv("DB_SSL_MODE")
	cfg.SQLitePath = getEnv("SQLITE_PATH", "fam.db")

	cfg.RedisURL = os.Getenv("REDIS_URL")
	cfg.RedisHost = os.Getenv("REDIS_HOST")
	cfg.RedisPort = os.Getenv("REDIS_PORT")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.RedisDB = getEnvInt("REDIS_DB", 0)

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	cfg.JWTTTL = getEnvDuration("JWT_TTL", 24*time.Hour)

	cfg.AnalysisCacheTTL = getEnvDuration("ANALYSIS_CACHE_TTL", 24*time.Hour)
	cfg.AnalysisRateLimit = getEnvInt("ANALYSIS_RATE_LIMIT", 30)
	cfg.RateLimitWindow = getEnvDuration("RATE_LIMIT_WINDOW", time.Minute)

	cfg.ProductAPIURL = getEnv("PRODUCT_API_URL", "https://world.openfoodfacts.org")
	cfg.ProductAPITimeout = getEnvDuration("PRODUCT_API_TIMEOUT", 10*time.Second)

	cfg.AIFallbackEnabled = getEnvBool("AI_FALLBACK_ENABLED", false)
	cfg.LLMBaseURL = getEnv("LLM_BASE_URL", "https://api.openai.com/v1")
	cfg.LLMAPIKey = os.Getenv("LLM_API_KEY")
	cfg.LLMModel = getEnv("LLM_MODEL", "gpt-4o-mini")
	cfg.LLMTimeout = getEnvDuration("LLM_TIMEOUT", 60*time.Second)

	cfg.RegistryBucket = os.Getenv("REGISTRY_S3_BUCKET")
	cfg.RegistryKey = os.Getenv("REGISTRY_S3_KEY")
	cfg.AWSRegion = os.Getenv("AWS_REGION")

	cfg.OTelEnabled = getEnvBool("OTEL_ENABLED", false)
	cfg.OTelEndpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	cfg.OTelInsecure = getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", false)
	cfg.OTelSampleRatio = getEnvFloat("OTEL_SAMPLER_RATIO", 0.1)
}

// applyDevDefaults fills in local connection settings for development and test.
func applyDevDefaults(cfg *Config) {
	cfg.DBHost = firstNonEmpty(cfg.DBHost, "localhost")
	cfg.DBPort = firstNonEmpty(cfg.DBPort, "5432")
	cfg.DBUser = firstNonEmpty(cfg.DBUser, "postgres")
	cfg.DBPassword = firstNonEmpty(cfg.DBPassword, "postgres")
	cfg.DBName = firstNonEmpty(cfg.DBName, "fam")
	cfg.DBSSLMode = firstNonEmpty(cfg.DBSSLMode, "disable")
	cfg.RedisHost = firstNonEmpty(cfg.RedisHost, "localhost")
	cfg.RedisPort = firstNonEmpty(cfg.RedisPort, "6379")
	cfg.JWTSecret = firstNonEmpty(cfg.JWTSecret, "dev-secret-change-me")
}

// loadSecrets overrides sensitive values with Docker secrets when present.
func loadSecrets(cfg *Config) {
	cfg.DBUser = firstNonEmpty(readSecret("db_user"), cfg.DBUser)
	cfg.DBPassword = firstNonEmpty(readSecret("db_password"), cfg.DBPassword)
	cfg.JWTSecret = firstNonEmpty(readSecret("jwt_secret"), cfg.JWTSecret)
	cfg.RedisPassword = firstNonEmpty(readSecret("redis_password"), cfg.RedisPassword)
	cfg.RedisURL = firstNonEmpty(readSecret("redis_url"), cfg.RedisURL)
	cfg.LLMAPIKey = firstNonEmpty(readSecret("llm_api_key"), cfg.LLMAPIKey)
}

// DSN returns the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, firstNonEmpty(c.DBSSLMode, "disable"),
	)
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key))); err == nil {
		return v
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv(key)), 64); err == nil {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key))); err == nil {
		return v
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key))); err == nil {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
