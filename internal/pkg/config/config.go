// Package config loads the client's settings from the environment.
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	StorageFile   = "file"
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

type Config struct {
	APIURL         string        `env:"JOBBOARD_API_URL,         default=http://localhost:8080/api"`
	PushURL        string        `env:"JOBBOARD_PUSH_URL,        default=ws://localhost:8080/ws/notifications"`
	RequestTimeout time.Duration `env:"JOBBOARD_REQUEST_TIMEOUT, default=15s"`
	LogLevel       string        `env:"LOG_LEVEL,                default=warn"`
	LogPretty      bool          `env:"LOG_PRETTY,               default=true"`

	Session SessionConfig
	Feed    FeedConfig
	Push    PushConfig
}

type SessionConfig struct {
	Storage     string `env:"JOBBOARD_STORAGE,      default=file"`
	File        string `env:"JOBBOARD_SESSION_FILE"`
	RedisAddr   string `env:"REDIS_ADDR,            default=localhost:6379"`
	RedisDB     int    `env:"REDIS_DB,              default=0"`
	RedisPrefix string `env:"JOBBOARD_REDIS_PREFIX, default=jobboard:session:"`

	// DeactivateAdminOnLogout extends logout deactivation to admins.
	DeactivateAdminOnLogout bool `env:"JOBBOARD_DEACTIVATE_ADMIN_ON_LOGOUT, default=false"`
	// StrictClaims requires sub and email in standard tokens.
	StrictClaims bool `env:"JOBBOARD_STRICT_CLAIMS, default=true"`
}

type FeedConfig struct {
	PollInterval time.Duration `env:"JOBBOARD_POLL_INTERVAL, default=60s"`
}

type PushConfig struct {
	MaxAttempts int           `env:"JOBBOARD_PUSH_MAX_ATTEMPTS, default=3"`
	Cooldown    time.Duration `env:"JOBBOARD_PUSH_COOLDOWN,     default=5s"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadFrom(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadFrom reads configuration from l and validates it.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}

	switch cfg.Session.Storage {
	case StorageFile, StorageRedis, StorageMemory:
	default:
		return nil, fmt.Errorf("JOBBOARD_STORAGE: unknown backend %q", cfg.Session.Storage)
	}
	if cfg.Session.Storage == StorageFile && cfg.Session.File == "" {
		cfg.Session.File = defaultSessionFile()
	}
	return &cfg, nil
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "jobboard", "session.json")
}
