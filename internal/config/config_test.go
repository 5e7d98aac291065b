package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/keapril/webinventory/internal/assistant"
	"github.com/keapril/webinventory/internal/fields"
	"github.com/keapril/webinventory/internal/remote"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"WEBINV_STORE_URL", "WEBINV_IMAGE_HOST", "R2_ENDPOINT", "R2_ACCESS_KEY",
		"R2_SECRET_KEY", "R2_BUCKET", "R2_PUBLIC_URL", "GEMINI_API_KEY",
		"WEBINV_AI_MODEL", "WEBINV_TIMEZONE", "WEBINV_AI_TEMPERATURE",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.URL != remote.DefaultBaseURL {
		t.Errorf("store url %s", cfg.Store.URL)
	}
	if cfg.Images.Host != fields.DefaultImageHost {
		t.Errorf("image host %s", cfg.Images.Host)
	}
	if cfg.AI.Model != assistant.DefaultModel || cfg.AI.Temperature == nil || *cfg.AI.Temperature != assistant.DefaultTemperature {
		t.Errorf("ai defaults %+v", cfg.AI)
	}
	if cfg.AI.APIKey != "" || cfg.UploadsEnabled() {
		t.Error("expected no credentials by default")
	}
	if cfg.Timezone != DefaultTimezone {
		t.Errorf("timezone %s", cfg.Timezone)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "webinventory.yaml")
	data := []byte(`store:
  url: http://localhost:8081
images:
  endpoint: https://acct.r2.cloudflarestorage.com
  bucket: photos
ai:
  model: from-file
  temperature: 0.7
  requests_per_minute: 10
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("WEBINV_AI_MODEL", "from-env")
	t.Setenv("GEMINI_API_KEY", "k")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.URL != "http://localhost:8081" {
		t.Errorf("store url %s", cfg.Store.URL)
	}
	if cfg.AI.Model != "from-env" {
		t.Errorf("expected env to win, got %s", cfg.AI.Model)
	}
	if *cfg.AI.Temperature != 0.7 || cfg.AI.RequestsPerMinute != 10 || cfg.AI.APIKey != "k" {
		t.Errorf("unexpected ai config %+v", cfg.AI)
	}
	if !cfg.UploadsEnabled() {
		t.Error("expected uploads enabled")
	}
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(bad, []byte("store: [unclosed"), 0o600)
	if _, err := Load(bad); err == nil {
		t.Error("expected error for malformed yaml")
	}

	t.Setenv("WEBINV_AI_TEMPERATURE", "warm")
	if _, err := Load(""); err == nil {
		t.Error("expected error for bad temperature")
	}
}

func TestZeroTemperatureIsKept(t *testing.T) {
	tests := []struct {
		name string
		file string
		env  string
	}{
		{"file", "ai:\n  temperature: 0\n", ""},
		{"env", "", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			path := ""
			if tt.file != "" {
				path = filepath.Join(t.TempDir(), "webinventory.yaml")
				if err := os.WriteFile(path, []byte(tt.file), 0o600); err != nil {
					t.Fatal(err)
				}
			}
			if tt.env != "" {
				t.Setenv("WEBINV_AI_TEMPERATURE", tt.env)
			}

			cfg, err := Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if cfg.AI.Temperature == nil || *cfg.AI.Temperature != 0 {
				t.Errorf("expected temperature 0 to be kept, got %v", cfg.AI.Temperature)
			}
		})
	}
}

func TestLocation(t *testing.T) {
	cfg := &Config{Timezone: DefaultTimezone}
	loc, err := cfg.Location()
	if err != nil {
		t.Fatalf("Location: %v", err)
	}
	if _, offset := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC).In(loc).Zone(); offset != 8*60*60 {
		t.Errorf("expected UTC+8, got offset %d", offset)
	}

	cfg.Timezone = "Europe/Ljubljana"
	loc, err = cfg.Location()
	if err != nil {
		t.Fatalf("Location: %v", err)
	}
	if loc.String() != "Europe/Ljubljana" {
		t.Errorf("expected configured zone, got %s", loc)
	}
}

func TestUnknownZoneIsAnError(t *testing.T) {
	cfg := &Config{Timezone: "Nowhere/Special"}
	if _, err := cfg.Location(); err == nil {
		t.Error("expected error for unknown zone")
	}

	clearEnv(t)
	t.Setenv("WEBINV_TIMEZONE", "Nowhere/Special")
	if _, err := Load(""); err == nil {
		t.Error("expected Load to reject unknown zone")
	}
}
