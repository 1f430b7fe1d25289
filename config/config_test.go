package config

import (
	"strings"
	"testing"
	"time"
)

// setRequiredEnv sets the minimum environment a load needs to succeed.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_USER", "jobbee")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "jobbee")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("SMTP_HOST", "localhost")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.DB.Host != "localhost" || cfg.DB.Port != 5432 {
		t.Errorf("db defaults = %s:%d, want localhost:5432", cfg.DB.Host, cfg.DB.Port)
	}
	if cfg.DB.MaxSize != 10 {
		t.Errorf("pool size = %d, want default 10", cfg.DB.MaxSize)
	}
	if cfg.Auth.TokenDuration != 168*time.Hour {
		t.Errorf("token duration = %v, want 168h", cfg.Auth.TokenDuration)
	}
	if cfg.Auth.CookieExpireDays != 7 {
		t.Errorf("cookie days = %d, want 7", cfg.Auth.CookieExpireDays)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Server.IsProduction() {
		t.Error("default environment must not be production")
	}
	if cfg.Geocoder.Provider != "openstreetmap" {
		t.Errorf("geocoder provider = %q, want openstreetmap", cfg.Geocoder.Provider)
	}
	if cfg.Uploads.MaxFileSize != 2*1024*1024 {
		t.Errorf("max file size = %d, want 2 MiB default", cfg.Uploads.MaxFileSize)
	}
}

func TestLoadConfig_MaxFileSizeIsNumeric(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MAX_FILE_SIZE", "1048576")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	// The limit is compared against byte counts, so it must load as a number,
	// not as the raw string the environment carries.
	if cfg.Uploads.MaxFileSize != 1048576 {
		t.Errorf("max file size = %d, want 1048576", cfg.Uploads.MaxFileSize)
	}
}

func TestLoadConfig_MalformedMaxFileSize(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MAX_FILE_SIZE", "two megabytes")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected a configuration error for a non-numeric MAX_FILE_SIZE")
	}
}

func TestLoadConfig_CollectsAllErrors(t *testing.T) {
	// Only one of the required variables is present; the error must name every
	// missing one, not stop at the first.
	t.Setenv("DB_USER", "jobbee")
	t.Setenv("DB_PASSWORD", "")
	t.Setenv("DB_NAME", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("SMTP_HOST", "")

	_, err := LoadConfig()
	if err == nil {
		t.Fatal("expected configuration errors")
	}
	for _, key := range []string{"DB_PASSWORD", "DB_NAME", "JWT_SECRET", "SMTP_HOST"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("error does not mention %s: %v", key, err)
		}
	}
}

func TestLoadConfig_MapquestNeedsAPIKey(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GEOCODER_PROVIDER", "mapquest")
	t.Setenv("GEOCODER_API_KEY", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected an error for mapquest without an API key")
	}
}

func TestLoadConfig_PoolSizeClamping(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DB_POOL_SIZE", "2")

	// Clamping still reports the out-of-range value as a configuration error.
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected an error for a pool size below the minimum")
	}
}
