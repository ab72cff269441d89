package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aihubtotal/backend/internal/models"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SECRETS_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.FreeLimits[models.FeatureImage] != 3 || cfg.FreeLimits[models.FeatureVideo] != 3 {
		t.Errorf("free limits: got %v", cfg.FreeLimits)
	}
	if len(cfg.Packages) != 3 {
		t.Errorf("packages: got %d, want 3", len(cfg.Packages))
	}
	if cfg.UsageRetentionDays != 0 {
		t.Errorf("retention should default to disabled, got %d", cfg.UsageRetentionDays)
	}
}

func TestLoad_SecretsFileFillsGaps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secrets.yaml")
	content := "GOOGLE_API_KEY: file-google-key\nHUGGINGFACE_API_TOKEN: file-hf-token\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SECRETS_FILE", path)
	t.Setenv("GOOGLE_API_KEY", "env-google-key")
	t.Setenv("HUGGINGFACE_API_TOKEN", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	// Environment wins; the file only fills what's empty.
	if cfg.GoogleAPIKey != "env-google-key" {
		t.Errorf("google key: got %q", cfg.GoogleAPIKey)
	}
	if cfg.HuggingFaceToken != "file-hf-token" {
		t.Errorf("hf token: got %q", cfg.HuggingFaceToken)
	}
}

func TestLoad_OriginsAndRetention(t *testing.T) {
	t.Setenv("SECRETS_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("USAGE_RETENTION_DAYS", "90")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("origins: got %v", cfg.AllowedOrigins)
	}
	if cfg.UsageRetentionDays != 90 {
		t.Errorf("retention: got %d, want 90", cfg.UsageRetentionDays)
	}
}
