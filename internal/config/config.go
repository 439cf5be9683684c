package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config captures all runtime configuration derived from environment variables.
type Config struct {
	Port              string
	TMDBURL           string
	TMDBAPIKey        string
	TMDBTimeoutSecs   int
	ImageBaseURL      string
	SkipMalformed     bool
	ReadTimeoutSecs   int
	WriteTimeoutSecs  int
	IdleTimeoutSecs   int
	DBURL             string
	DBMaxConns        int
	DBMinConns        int
	DBConnTimeoutSecs int
}

// Load reads configuration from environment variables, applying defaults and validation.
func Load() (Config, error) {
	cfg := Config{
		Port:              getEnv("PORT", "8080"),
		TMDBURL:           getEnv("TMDB_URL", "https://api.themoviedb.org/3"),
		TMDBAPIKey:        os.Getenv("TMDB_API_KEY"),
		TMDBTimeoutSecs:   getEnvInt("TMDB_TIMEOUT_SECS", 5),
		ImageBaseURL:      getEnv("IMAGE_BASE_URL", "https://image.tmdb.org/t/p/w342/"),
		SkipMalformed:     getEnvBool("CATALOG_SKIP_MALFORMED", false),
		ReadTimeoutSecs:   getEnvInt("SERVER_READ_TIMEOUT", 15),
		WriteTimeoutSecs:  getEnvInt("SERVER_WRITE_TIMEOUT", 15),
		IdleTimeoutSecs:   getEnvInt("SERVER_IDLE_TIMEOUT", 60),
		DBURL:             os.Getenv("DB_URL"),
		DBMaxConns:        getEnvInt("DB_MAX_CONNS", 10),
		DBMinConns:        getEnvInt("DB_MIN_CONNS", 0),
		DBConnTimeoutSecs: getEnvInt("DB_CONN_TIMEOUT_SECS", 10),
	}

	if cfg.TMDBAPIKey == "" {
		return Config{}, fmt.Errorf("TMDB_API_KEY is required")
	}
	if !strings.HasPrefix(cfg.TMDBURL, "http://") && !strings.HasPrefix(cfg.TMDBURL, "https://") {
		return Config{}, fmt.Errorf("TMDB_URL must be an http(s) URL")
	}
	if cfg.TMDBTimeoutSecs <= 0 {
		return Config{}, fmt.Errorf("TMDB_TIMEOUT_SECS must be positive")
	}
	if cfg.DBMaxConns <= 0 {
		return Config{}, fmt.Errorf("DB_MAX_CONNS must be positive")
	}
	if cfg.DBMinConns < 0 {
		return Config{}, fmt.Errorf("DB_MIN_CONNS must be non-negative")
	}
	if cfg.DBMinConns > cfg.DBMaxConns {
		return Config{}, fmt.Errorf("DB_MIN_CONNS cannot exceed DB_MAX_CONNS")
	}

	return cfg, nil
}

// SnapshotEnabled reports whether a database was configured.
func (c Config) SnapshotEnabled() bool {
	return c.DBURL != ""
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}
