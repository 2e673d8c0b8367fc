package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	RiotAPIKey    string
	RedisURL      string
	DBPath        string
	StateDir      string
	ServerPort    string
	LogLevel      string
	DefaultRegion string
	AuthSecret    string
	AllowedUsers  []string
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		RiotAPIKey:    getEnv("RIOT_API_KEY", ""),
		RedisURL:      getEnv("REDIS_URL", ""),
		DBPath:        getEnv("DB_PATH", "dashboard.db"),
		StateDir:      getEnv("STATE_DIR", "state"),
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DefaultRegion: getEnv("DEFAULT_REGION", "euw1"),
		AuthSecret:    getEnv("AUTH_SECRET", ""),
		AllowedUsers:  splitList(getEnv("ALLOWED_USERS", "")),
	}

	if cfg.RiotAPIKey == "" {
		return nil, fmt.Errorf("RIOT_API_KEY is required")
	}
	if cfg.AuthSecret == "" {
		return nil, fmt.Errorf("AUTH_SECRET is required")
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("state_dir", cfg.StateDir).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Str("default_region", cfg.DefaultRegion).
		Bool("redis_configured", cfg.RedisURL != "").
		Int("allowed_users", len(cfg.AllowedUsers)).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(value string) []string {
	var out []string
	for _, entry := range strings.Split(value, ",") {
		entry = strings.ToLower(strings.TrimSpace(entry))
		if entry != "" {
			out = append(out, entry)
		}
	}
	return out
}

var Module = fx.Provide(Load)
