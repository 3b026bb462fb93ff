// Package config loads the development backend's settings.
package config

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

type Config struct {
	Port            string        `env:"PORT,             default=8080"`
	Env             string        `env:"ENV,              default=development"`
	JWTSecret       string        `env:"JWT_SECRET,       default=dev-secret-change-me"`
	TokenTTL        time.Duration `env:"TOKEN_TTL,        default=24h"`
	OTPTTL          time.Duration `env:"OTP_TTL,          default=5m"`
	LogLevel        string        `env:"LOG_LEVEL,        default=info"`
	LogPretty       bool          `env:"LOG_PRETTY,       default=false"`
	Store           string        `env:"STORE,            default=mongo"`
	DeliveryWorkers int           `env:"DELIVERY_WORKERS, default=8"`

	// Auth routes are throttled per client IP.
	AuthRateLimit float64 `env:"AUTH_RATE_LIMIT, default=5"`
	AuthBurst     int     `env:"AUTH_BURST,      default=10"`

	Admin AdminConfig
	Mongo MongoConfig
	Redis RedisConfig
}

// AdminConfig seeds one ADMIN account at startup when both are set.
type AdminConfig struct {
	Email    string `env:"ADMIN_EMAIL"`
	Password string `env:"ADMIN_PASSWORD"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=jobboard"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// IsDevelopment reports whether development-only routes are mounted.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables using go-envconfig.
func Load(log zerolog.Logger) *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if cfg.Store != StoreMongo && cfg.Store != StoreMemory {
		log.Fatal().Str("store", cfg.Store).Msg("STORE must be mongo or memory")
	}
	return &cfg
}
