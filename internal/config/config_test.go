package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("EXAM_CACHE_TTL_SECONDS", "")
	t.Setenv("COOKIE_SECURE", "")

	cfg := Load()
	if cfg.StoreDriver != StoreDriverPostgres {
		t.Fatalf("store driver = %q", cfg.StoreDriver)
	}
	if cfg.ExamCacheTTL != 30*time.Second {
		t.Fatalf("exam cache ttl = %v", cfg.ExamCacheTTL)
	}
	if cfg.CookieSecure {
		t.Fatal("cookie secure should default to false")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")
	t.Setenv("JWT_EXPIRY_HOURS", "2")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("ALLOWED_ORIGINS", " http://a.test , ,http://b.test")
	t.Setenv("AUTH_RATE_LIMIT_PER_MINUTE", "not-a-number")

	cfg := Load()
	if cfg.StoreDriver != StoreDriverSQLite || cfg.SQLitePath != "/tmp/x.db" {
		t.Fatalf("sqlite settings not loaded: %+v", cfg)
	}
	if cfg.JWTExpiry != 2*time.Hour {
		t.Fatalf("jwt expiry = %v", cfg.JWTExpiry)
	}
	if !cfg.CookieSecure {
		t.Fatal("cookie secure not loaded")
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "http://b.test" {
		t.Fatalf("origins = %#v", cfg.AllowedOrigins)
	}
	if cfg.AuthRateLimit != 10 {
		t.Fatalf("invalid int should fall back, got %d", cfg.AuthRateLimit)
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		StoreDriver: StoreDriverPostgres,
		DatabaseURL: "postgres://x",
		JWTSecret:   "s3cret",
		JWTExpiry:   time.Hour,
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cfg.StoreDriver = "mongo"
	cfg.GinMode = "release"
	cfg.JWTSecret = defaultJWTSecret
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid config accepted")
	}
	for _, want := range []string{"STORE_DRIVER", "JWT_SECRET"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}
