package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env  string
	Port int

	CORS   CORSConfig
	Log    LogConfig
	Solver SolverConfig
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SolverConfig bounds a single solve call. The request carries its own
// time_limit_sec and scale; these values fill gaps and cap abuse.
type SolverConfig struct {
	DefaultTimeLimit time.Duration
	MaxTimeLimit     time.Duration
	DefaultScale     int
	MaxSections      int
	MaxConstraints   int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Solver = SolverConfig{
		DefaultTimeLimit: parseDuration(v.GetString("SOLVER_DEFAULT_TIME_LIMIT"), 5*time.Second),
		MaxTimeLimit:     parseDuration(v.GetString("SOLVER_MAX_TIME_LIMIT"), 30*time.Second),
		DefaultScale:     v.GetInt("SOLVER_DEFAULT_SCALE"),
		MaxSections:      v.GetInt("SOLVER_MAX_SECTIONS"),
		MaxConstraints:   v.GetInt("SOLVER_MAX_CONSTRAINTS"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SOLVER_DEFAULT_TIME_LIMIT", "5s")
	v.SetDefault("SOLVER_MAX_TIME_LIMIT", "30s")
	v.SetDefault("SOLVER_DEFAULT_SCALE", 100)
	v.SetDefault("SOLVER_MAX_SECTIONS", 5000)
	v.SetDefault("SOLVER_MAX_CONSTRAINTS", 256)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
