package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"character-builder/internal/constants"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	APIURL         string // empty keeps the builder offline
	APIToken       string
	DBPath         string
	ServerPort     string
	LogLevel       string
	ReferencePath  string
	SaveDebounce   time.Duration
	SaveMaxRetries uint64
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		APIURL:        getEnv("CHARACTER_API_URL", ""),
		APIToken:      getEnv("CHARACTER_API_TOKEN", ""),
		DBPath:        getEnv("DB_PATH", "characters.db"),
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		ReferencePath: getEnv("REFERENCE_PATH", ""),
	}

	debounce, err := time.ParseDuration(getEnv("SYNC_DEBOUNCE", constants.SaveDebounce.String()))
	if err != nil {
		return nil, fmt.Errorf("invalid SYNC_DEBOUNCE: %w", err)
	}
	if debounce <= 0 {
		return nil, fmt.Errorf("SYNC_DEBOUNCE must be positive")
	}
	cfg.SaveDebounce = debounce

	retries, err := strconv.ParseUint(getEnv("SYNC_MAX_RETRIES", strconv.Itoa(constants.SaveMaxRetries)), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid SYNC_MAX_RETRIES: %w", err)
	}
	cfg.SaveMaxRetries = retries

	if cfg.APIURL == "" && cfg.APIToken != "" {
		return nil, fmt.Errorf("CHARACTER_API_TOKEN requires CHARACTER_API_URL")
	}

	logger.Info().
		Str("api_url", cfg.APIURL).
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Str("reference_path", cfg.ReferencePath).
		Dur("save_debounce", cfg.SaveDebounce).
		Uint64("save_max_retries", cfg.SaveMaxRetries).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

var Module = fx.Provide(Load)
