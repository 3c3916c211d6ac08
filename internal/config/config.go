package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Port           string // HTTP listen port
	StorageBackend string // "memory" or "postgres"
	DatabaseURL    string // postgres connection string
	JWTSecret      string // JWT signing key
	RedisURL       string // optional driver-location cache
	RabbitMQURL    string // optional anomaly-event intake
	FirebaseCreds  string // optional identity provider service account
	IsProd         bool   // release mode toggle
}

// Load reads configuration from the environment, honouring a .env file when
// one is present.
func Load() *Config {
	_ = godotenv.Load()
	cfg := &Config{
		Port:           os.Getenv("PORT"),
		StorageBackend: os.Getenv("STORAGE_BACKEND"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		RedisURL:       os.Getenv("REDIS_URL"),
		RabbitMQURL:    os.Getenv("RABBITMQ_URL"),
		FirebaseCreds:  os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH"),
		IsProd:         os.Getenv("IS_PROD") == "true",
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.StorageBackend == "" {
		if cfg.DatabaseURL != "" {
			cfg.StorageBackend = "postgres"
		} else {
			cfg.StorageBackend = "memory"
		}
	}
	return cfg
}
