package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

var configEnvKeys = []string{
	"APP_ENV", "LOG_LEVEL", "OPS_ADDR", "OPS_READ_TIMEOUT", "OPS_WRITE_TIMEOUT",
	"POSTGRES_DSN", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "REDIS_COUNTRY_TTL",
	"S3_ENDPOINT", "S3_ACCESS_KEY", "S3_SECRET_KEY", "S3_BUCKET", "S3_USE_SSL",
	"BOT_TOKEN", "BOT_POLL_TIMEOUT",
	"DIRECTORY_BASE_URL", "DIRECTORY_TOKEN", "DIRECTORY_VERSION",
	"DIRECTORY_REQUEST_INTERVAL", "DIRECTORY_HTTP_TIMEOUT",
	"DIALOGUE_IDLE_TIMEOUT", "DIALOGUE_PHOTO_COUNT", "STORAGE_REBUILD",
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnvKeys {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}
}

func TestLoadUsesDefaultsAndYAMLOverrides(t *testing.T) {
	clearConfigEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
log:
  level: warn
directory:
  token: service-token
  request_interval: 500ms
dialogue:
  idle_timeout: 10m
  photo_count: 5
storage:
  rebuild: true
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Log.Level != "warn" {
		t.Fatalf("unexpected log level: %q", cfg.Log.Level)
	}
	if cfg.Directory.Token != "service-token" {
		t.Fatalf("unexpected directory token: %q", cfg.Directory.Token)
	}
	if cfg.Directory.RequestInterval != 500*time.Millisecond {
		t.Fatalf("unexpected request interval: %s", cfg.Directory.RequestInterval)
	}
	if cfg.Dialogue.IdleTimeout != 10*time.Minute {
		t.Fatalf("unexpected idle timeout: %s", cfg.Dialogue.IdleTimeout)
	}
	if cfg.Dialogue.PhotoCount != 5 {
		t.Fatalf("unexpected photo count: %d", cfg.Dialogue.PhotoCount)
	}
	if !cfg.Storage.Rebuild {
		t.Fatalf("expected rebuild flag set from yaml")
	}

	// untouched keys keep their defaults
	if cfg.Directory.BaseURL != "https://api.vk.com/method/" {
		t.Fatalf("unexpected default base url: %q", cfg.Directory.BaseURL)
	}
	if cfg.Redis.CountryTTL != 24*time.Hour {
		t.Fatalf("unexpected default country ttl: %s", cfg.Redis.CountryTTL)
	}
}

func TestEnvOverridesBeatYAML(t *testing.T) {
	clearConfigEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
directory:
  token: from-yaml
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	t.Setenv("DIRECTORY_TOKEN", "from-env")
	t.Setenv("DIALOGUE_IDLE_TIMEOUT", "7m")
	t.Setenv("STORAGE_REBUILD", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Directory.Token != "from-env" {
		t.Fatalf("expected env token to win, got %q", cfg.Directory.Token)
	}
	if cfg.Dialogue.IdleTimeout != 7*time.Minute {
		t.Fatalf("unexpected idle timeout: %s", cfg.Dialogue.IdleTimeout)
	}
	if !cfg.Storage.Rebuild {
		t.Fatalf("expected rebuild flag from env")
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("DIRECTORY_REQUEST_INTERVAL", "not-a-duration")

	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for invalid duration override")
	}
}

func TestMissingConfigFileFallsBackToDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Postgres.DSN == "" {
		t.Fatalf("expected default dsn")
	}
}

func TestPersistRebuildFlag(t *testing.T) {
	clearConfigEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
log:
  level: info
storage:
  rebuild: true
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	if err := PersistRebuildFlag(path, false); err != nil {
		t.Fatalf("persist rebuild flag: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("reload config: %v", err)
	}
	if cfg.Storage.Rebuild {
		t.Fatalf("expected rebuild flag persisted back to false")
	}
	if cfg.Log.Level != "info" {
		t.Fatalf("other settings must survive the rewrite, got level %q", cfg.Log.Level)
	}
}

func TestPersistRebuildFlagMissingFile(t *testing.T) {
	if err := PersistRebuildFlag(filepath.Join(t.TempDir(), "absent.yaml"), false); err != nil {
		t.Fatalf("missing file must not error: %v", err)
	}
}
