package config

import (
	"os"
	"strconv"
)

// Config 应用配置
type Config struct {
	Port           string
	DBPath         string
	MigrationsPath string
	JWTSecret      string
	DatastoreURL   string // remote phone datastore, empty to read the local database
	DataDir        string // directory of JSON dumps for the batch CLI
	TuningPath     string // optional tuning JSON
	AuthorEmail    string // datastore user that owns evaluation specs
	RateLimit      int    // requests per minute per client
}

// Load 加载配置
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", ":8080"),
		DBPath:         getEnv("DB_PATH", "./data/eval/eval.db"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),
		JWTSecret:      getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		DatastoreURL:   os.Getenv("DATASTORE_URL"),
		DataDir:        getEnv("DATA_DIR", "./data/dumps"),
		TuningPath:     os.Getenv("TUNING_PATH"),
		AuthorEmail:    os.Getenv("AUTHOR_EMAIL"),
		RateLimit:      getEnvInt("RATE_LIMIT", 120),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
