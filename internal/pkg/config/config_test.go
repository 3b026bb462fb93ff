package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("LoadFrom returned error: %v", err)
	}
	if cfg.APIURL != "http://localhost:8080/api" {
		t.Fatalf("unexpected api url %q", cfg.APIURL)
	}
	if cfg.Feed.PollInterval != 60*time.Second {
		t.Fatalf("unexpected poll interval %s", cfg.Feed.PollInterval)
	}
	if cfg.Push.MaxAttempts != 3 || cfg.Push.Cooldown != 5*time.Second {
		t.Fatalf("unexpected push config %+v", cfg.Push)
	}
	if !cfg.Session.StrictClaims || cfg.Session.DeactivateAdminOnLogout {
		t.Fatalf("unexpected session policy %+v", cfg.Session)
	}
	if cfg.Session.Storage != StorageFile || cfg.Session.File == "" {
		t.Fatalf("expected file storage with a default path, got %+v", cfg.Session)
	}
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JOBBOARD_STORAGE":                    "redis",
		"JOBBOARD_STRICT_CLAIMS":              "false",
		"JOBBOARD_DEACTIVATE_ADMIN_ON_LOGOUT": "true",
		"JOBBOARD_POLL_INTERVAL":              "10s",
	}))
	if err != nil {
		t.Fatalf("LoadFrom returned error: %v", err)
	}
	if cfg.Session.Storage != StorageRedis || cfg.Session.StrictClaims || !cfg.Session.DeactivateAdminOnLogout {
		t.Fatalf("overrides not applied: %+v", cfg.Session)
	}
	if cfg.Feed.PollInterval != 10*time.Second {
		t.Fatalf("unexpected poll interval %s", cfg.Feed.PollInterval)
	}
}

func TestLoadFrom_UnknownStorage(t *testing.T) {
	_, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{"JOBBOARD_STORAGE": "s3"}))
	if err == nil {
		t.Fatalf("expected error for unknown storage backend")
	}
}
