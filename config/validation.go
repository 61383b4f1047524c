package config

import (
	"errors"
	"fmt"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks the configuration against the requirements of its environment.
func ValidateConfig(cfg *Config) error {
	var errs []error

	switch cfg.DBDriver {
	case "postgres":
		for _, f := range []struct{ field, value string }{
			{"DB_HOST", cfg.DBHost},
			{"DB_PORT", cfg.DBPort},
			{"DB_NAME", cfg.DBName},
			{"DB_USER", cfg.DBUser},
		} {
			if f.value == "" {
				errs = append(errs, ValidationError{Field: f.field, Message: "is required for the postgres driver"})
			}
		}
	case "sqlite":
		if cfg.SQLitePath == "" {
			errs = append(errs, ValidationError{Field: "SQLITE_PATH", Message: "is required for the sqlite driver"})
		}
	default:
		errs = append(errs, ValidationError{Field: "DB_DRIVER", Message: fmt.Sprintf("unsupported driver %q", cfg.DBDriver)})
	}

	if cfg.JWTSecret == "" {
		errs = append(errs, ValidationError{Field: "JWT_SECRET", Message: "is required"})
	}
	if cfg.RedisURL == "" && (cfg.RedisHost == "" || cfg.RedisPort == "") {
		errs = append(errs, ValidationError{Field: "REDIS_URL", Message: "or REDIS_HOST and REDIS_PORT are required"})
	}

	if cfg.Environment == Production || cfg.Environment == CI {
		if cfg.DBDriver == "postgres" && cfg.DBPassword == "" {
			errs = append(errs, ValidationError{Field: "DB_PASSWORD", Message: "is required outside development"})
		}
	}

	if cfg.AIFallbackEnabled && cfg.LLMAPIKey == "" {
		errs = append(errs, ValidationError{Field: "LLM_API_KEY", Message: "is required when AI_FALLBACK_ENABLED is set"})
	}
	if cfg.RegistryKey != "" && cfg.RegistryBucket == "" {
		errs = append(errs, ValidationError{Field: "REGISTRY_S3_BUCKET", Message: "is required when REGISTRY_S3_KEY is set"})
	}
	if cfg.AnalysisRateLimit < 0 {
		errs = append(errs, ValidationError{Field: "ANALYSIS_RATE_LIMIT", Message: "must not be negative"})
	}

	return errors.Join(errs...)
}
