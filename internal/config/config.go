// Package config loads server settings from the environment, with a .env
// file honoured in development.
package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds everything the server reads from the environment.
type Config struct {
	Env        string // "development" or "production"
	ListenAddr string

	DatabasePath string

	// RedisAddr enables the shared market-data cache when set; blank falls
	// back to the process-local TTL cache.
	RedisAddr string

	// MarketCheckAPIKey enables live market valuations; blank uses the
	// deterministic mock.
	MarketCheckAPIKey string
	NHTSABaseURL      string

	EventBusBuffer        int
	ActivityRetentionDays int
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first if present.
func Load() Config {
	if err := godotenv.Load(); err == nil {
		log.Println("config: loaded .env")
	}

	return Config{
		Env:                   getenv("APP_ENV", "development"),
		ListenAddr:            getenv("LISTEN_ADDR", ":8080"),
		DatabasePath:          getenv("DATABASE_PATH", "dealdesk.db"),
		RedisAddr:             getenv("REDIS_ADDR", ""),
		MarketCheckAPIKey:     getenv("MARKETCHECK_API_KEY", ""),
		NHTSABaseURL:          getenv("NHTSA_BASE_URL", ""),
		EventBusBuffer:        getenvInt("EVENTBUS_BUFFER", 256),
		ActivityRetentionDays: getenvInt("ACTIVITY_RETENTION_DAYS", 90),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("config: %s=%q is not an integer, using %d", key, v, fallback)
		return fallback
	}
	return n
}
