package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port string

	// Provider
	ProviderURL string // RANDOM_USER_API_URL; "fake" selects the local generator
	BatchSize   int

	// Pipeline
	FetchInterval time.Duration
	CacheTTL      time.Duration
	AnonSalt      string

	// Stores
	PostgresDSN string
	RedisAddr   string

	// Read gateway
	RepopulateCacheOnMiss bool
	AllowedOrigins        []string
}

func Load() *Config {
	pgHost := getEnv("POSTGRES_HOST", "localhost")
	pgPort := getEnv("POSTGRES_PORT", "5432")
	pgDB := getEnv("POSTGRES_DB", "postgres")
	pgUser := getEnv("POSTGRES_USER", "postgres")
	pgPass := getEnv("POSTGRES_PASSWORD", "password")

	return &Config{
		Port:        getEnv("PORT", "8080"),
		ProviderURL: getEnv("RANDOM_USER_API_URL", "https://randomuser.me/api/"),
		BatchSize:   getEnvInt("DATA_BATCH_SIZE", 10),

		FetchInterval: time.Duration(getEnvInt("FETCH_INTERVAL_SECONDS", 120)) * time.Second,
		CacheTTL:      time.Duration(getEnvInt("CACHE_TTL_SECONDS", 120)) * time.Second,
		AnonSalt:      getEnv("ANON_SALT", "userpipe-default-salt"),

		PostgresDSN: fmt.Sprintf("host=%s port=%s dbname=%s user=%s password=%s sslmode=%s",
			pgHost, pgPort, pgDB, pgUser, pgPass, getEnv("POSTGRES_SSLMODE", "disable")),
		RedisAddr: getEnv("REDIS_HOST", "localhost") + ":" + getEnv("REDIS_PORT", "6379"),

		RepopulateCacheOnMiss: getEnvBool("CACHE_REPOPULATE_ON_MISS", false),
		AllowedOrigins:        parseOrigins(getEnv("ALLOWED_ORIGINS", "*")),
	}
}

func parseOrigins(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		out = []string{"*"}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
