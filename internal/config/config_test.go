package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("JOBFINDER_CONFIG", "")
	t.Setenv("PORT", "")
	t.Setenv("STEP_DELAY", "")
	t.Setenv("NOTIFY_EMAIL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("Port = %q, want 8000", cfg.Port)
	}
	if cfg.GeminiModel == "" {
		t.Error("GeminiModel should have a default")
	}
	if cfg.Scraper.MaxResults != 10 {
		t.Errorf("MaxResults = %d, want 10", cfg.Scraper.MaxResults)
	}
	if cfg.StepDelay != 500*time.Millisecond {
		t.Errorf("StepDelay = %v, want 500ms", cfg.StepDelay)
	}
}

func TestLoadMissingAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("JOBFINDER_CONFIG", "")
	t.Setenv("NOTIFY_EMAIL", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when GEMINI_API_KEY is empty")
	}
	if !strings.Contains(err.Error(), "GEMINI_API_KEY") {
		t.Errorf("error %q does not name the missing variable", err)
	}
}

func TestLoadNotifyRequiresCredentials(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("JOBFINDER_CONFIG", "")
	t.Setenv("NOTIFY_EMAIL", "me@example.com")
	t.Setenv("GMAIL_CREDENTIALS", "")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "GMAIL_CREDENTIALS") {
		t.Fatalf("expected GMAIL_CREDENTIALS error, got %v", err)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("JOBFINDER_CONFIG", "")
	t.Setenv("NOTIFY_EMAIL", "")
	t.Setenv("HOST", "")
	t.Setenv("PORT", "9090")
	t.Setenv("STEP_DELAY", "0s")
	t.Setenv("SCRAPER_HOST", "https://www.indeed.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr() != "127.0.0.1:9090" {
		t.Errorf("Addr() = %q", cfg.Addr())
	}
	if cfg.StepDelay != 0 {
		t.Errorf("StepDelay = %v, want 0", cfg.StepDelay)
	}
	if cfg.Scraper.Host != "https://www.indeed.com" {
		t.Errorf("Scraper.Host = %q", cfg.Scraper.Host)
	}
}

func TestLoadInvalidStepDelay(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("JOBFINDER_CONFIG", "")
	t.Setenv("STEP_DELAY", "soon")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid STEP_DELAY")
	}
}

func TestLoadScraperProfile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scraper.yaml")
	profile := `
max_results: 5
detail_selector: "div.job-detail"
detail_timeout: 20s
`
	if err := os.WriteFile(path, []byte(profile), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("JOBFINDER_CONFIG", path)
	t.Setenv("STEP_DELAY", "")
	t.Setenv("SCRAPER_HOST", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Scraper.MaxResults != 5 {
		t.Errorf("MaxResults = %d, want 5", cfg.Scraper.MaxResults)
	}
	if cfg.Scraper.DetailSelector != "div.job-detail" {
		t.Errorf("DetailSelector = %q", cfg.Scraper.DetailSelector)
	}
	if cfg.Scraper.DetailTimeout != 20*time.Second {
		t.Errorf("DetailTimeout = %v, want 20s", cfg.Scraper.DetailTimeout)
	}
	// untouched keys keep their defaults
	if len(cfg.Scraper.SummarySelectors) != 2 {
		t.Errorf("SummarySelectors = %v, want defaults", cfg.Scraper.SummarySelectors)
	}
}

func TestLoadScraperProfileRejectsZeroResults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scraper.yaml")
	if err := os.WriteFile(path, []byte("max_results: 0\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("JOBFINDER_CONFIG", path)

	if _, err := Load(); err == nil {
		t.Fatal("expected error for max_results: 0")
	}
}
