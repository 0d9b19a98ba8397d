package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"goclue/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Evaluation EvaluationConfig
	Database   DatabaseConfig
	Server     ServerConfig
}

// EvaluationConfig carries the default knobs of the evaluation engine. Every
// value can be overridden per request; these are the fallbacks.
type EvaluationConfig struct {
	Repeats          int
	KMin             int
	KMax             int
	Method           string
	EffectiveSizeMin int
	EffectiveSizeMax int
	PValueCutoff     float64
	Alpha            float64
	MaxIterations    int
	Seed             int64
}

// DatabaseConfig configures the optional Postgres run store. Persistence is
// disabled when URL is empty.
type DatabaseConfig struct {
	URL string
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Port string
}

// Load reads configuration from the environment, consulting a .env file when
// one exists
func Load() (*Config, error) {
	// missing .env is fine; the environment still applies
	_ = godotenv.Load()

	cfg := &Config{
		Evaluation: EvaluationConfig{
			Repeats:          getEnvIntOrDefault("CLUE_REPEATS", 5),
			KMin:             getEnvIntOrDefault("CLUE_K_MIN", 2),
			KMax:             getEnvIntOrDefault("CLUE_K_MAX", 10),
			Method:           getEnvOrDefault("CLUE_METHOD", "cmeans"),
			EffectiveSizeMin: getEnvIntOrDefault("CLUE_EFFECTIVE_SIZE_MIN", 5),
			EffectiveSizeMax: getEnvIntOrDefault("CLUE_EFFECTIVE_SIZE_MAX", 100),
			PValueCutoff:     getEnvFloatOrDefault("CLUE_PVALUE_CUTOFF", 0.05),
			Alpha:            getEnvFloatOrDefault("CLUE_ALPHA", 0.5),
			MaxIterations:    getEnvIntOrDefault("CLUE_MAX_ITERATIONS", 100),
			Seed:             int64(getEnvIntOrDefault("CLUE_SEED", 1)),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	e := c.Evaluation
	if e.Repeats < 1 {
		return errors.ConfigInvalid("CLUE_REPEATS must be at least 1")
	}
	if e.KMin < 2 || e.KMax < e.KMin {
		return errors.ConfigInvalid("CLUE_K_MIN/CLUE_K_MAX must satisfy 2 <= min <= max")
	}
	if e.PValueCutoff <= 0 || e.PValueCutoff > 1 {
		return errors.ConfigInvalid("CLUE_PVALUE_CUTOFF must be in (0,1]")
	}
	if e.EffectiveSizeMin < 1 || e.EffectiveSizeMax < e.EffectiveSizeMin {
		return errors.ConfigInvalid("effective size bound must satisfy 1 <= min <= max")
	}
	if strings.TrimSpace(c.Server.Port) == "" {
		return errors.ConfigInvalid("PORT must not be empty")
	}
	return nil
}

// KRange expands the configured [KMin, KMax] bound into an ascending slice
func (e EvaluationConfig) KRange() []int {
	ks := make([]int, 0, e.KMax-e.KMin+1)
	for k := e.KMin; k <= e.KMax; k++ {
		ks = append(ks, k)
	}
	return ks
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
