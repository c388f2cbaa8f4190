package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// chdirTemp moves the test into an empty directory so no stray .env is
// picked up.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestFromEnv_Defaults(t *testing.T) {
	chdirTemp(t)
	t.Setenv("ACCESSHUB_CONFIG", "")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.HTTPAddr != ":8080" || cfg.Env != "dev" || cfg.Store != "sqlite" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.SessionTTL != 12*time.Hour || cfg.ResetPasswordTTL != 6*time.Hour {
		t.Fatalf("unexpected ttls: %v %v", cfg.SessionTTL, cfg.ResetPasswordTTL)
	}
	if cfg.SeedDev {
		t.Fatal("dev env must not imply seeding")
	}
	if cfg.HeartbeatRetentionDays != 30 || cfg.PruneIntervalHours != 6 {
		t.Fatalf("unexpected retention: %+v", cfg)
	}
}

func TestFromEnv_FileThenEnv(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "accesshub.toml")
	if err := os.WriteFile(path, []byte(`
http_addr = ":9000"
grpc_addr = ":9001"
store = "memory"
session_ttl_hours = 2
heartbeat_retention_days = 0
display_timezone = "America/New_York"
seed_dev = true
`), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ACCESSHUB_CONFIG", path)
	t.Setenv("ACCESSHUB_HTTP_ADDR", ":7000")
	t.Setenv("ACCESSHUB_PUBLIC_BASE_URL", "https://hub.example.com/")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.HTTPAddr != ":7000" {
		t.Errorf("env should win over file, got %q", cfg.HTTPAddr)
	}
	if cfg.GRPCAddr != ":9001" || cfg.Store != "memory" || !cfg.SeedDev {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Errorf("session ttl = %v", cfg.SessionTTL)
	}
	if cfg.HeartbeatRetentionDays != 0 {
		t.Errorf("explicit zero retention lost: %d", cfg.HeartbeatRetentionDays)
	}
	if cfg.PublicBaseURL != "https://hub.example.com" {
		t.Errorf("public base url = %q", cfg.PublicBaseURL)
	}
	if cfg.Location().String() != "America/New_York" {
		t.Errorf("location = %v", cfg.Location())
	}
}

func TestFromEnv_DotEnv(t *testing.T) {
	dir := chdirTemp(t)
	t.Setenv("ACCESSHUB_CONFIG", "")
	t.Setenv("ACCESSHUB_DB_PATH", "")
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("ACCESSHUB_DB_PATH=/tmp/from-dotenv.db\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	// godotenv does not override variables that are already set, even to
	// an empty string, so clear it for the load.
	os.Unsetenv("ACCESSHUB_DB_PATH")
	t.Cleanup(func() { os.Unsetenv("ACCESSHUB_DB_PATH") })

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.DBPath != "/tmp/from-dotenv.db" {
		t.Fatalf("db path = %q", cfg.DBPath)
	}
}

func TestFromEnv_Invalid(t *testing.T) {
	chdirTemp(t)
	t.Setenv("ACCESSHUB_CONFIG", "")

	t.Run("unknown store", func(t *testing.T) {
		t.Setenv("ACCESSHUB_STORE", "postgres")
		if _, err := FromEnv(); err == nil {
			t.Fatal("expected error")
		}
	})
	t.Run("prod without secret", func(t *testing.T) {
		t.Setenv("ACCESSHUB_ENV", "prod")
		t.Setenv("ACCESSHUB_JWT_SECRET", "short")
		if _, err := FromEnv(); err == nil {
			t.Fatal("expected error")
		}
	})
	t.Run("seed in prod", func(t *testing.T) {
		t.Setenv("ACCESSHUB_ENV", "prod")
		t.Setenv("ACCESSHUB_JWT_SECRET", "0123456789abcdef0123456789abcdef")
		t.Setenv("ACCESSHUB_SEED_DEV", "true")
		if _, err := FromEnv(); err == nil {
			t.Fatal("expected error")
		}
	})
	t.Run("bad timezone", func(t *testing.T) {
		t.Setenv("ACCESSHUB_DISPLAY_TIMEZONE", "Mars/Olympus")
		if _, err := FromEnv(); err == nil {
			t.Fatal("expected error")
		}
	})
	t.Run("missing file", func(t *testing.T) {
		t.Setenv("ACCESSHUB_CONFIG", "/does/not/exist.toml")
		if _, err := FromEnv(); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestGetenvInt_NegativeFallsBack(t *testing.T) {
	t.Setenv("ACCESSHUB_TEST_INT", "-3")
	if got := getenvInt("ACCESSHUB_TEST_INT", 7); got != 7 {
		t.Fatalf("got %d", got)
	}
}
