package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config contains runtime settings for the job finder server
type Config struct {
	LogLevel string
	Host     string // default 127.0.0.1
	Port     string // default PORT env or 8000

	GeminiAPIKey string
	GeminiModel  string

	ScratchDir   string        // transient JSON artifacts live here, one directory per search
	StepDelay    time.Duration // pause between progress checkpoints
	TemplatesDir string
	StaticDir    string

	Scraper ScraperConfig

	Gmail struct {
		CredentialsPath string
		TokenPath       string
		NotifyTo        string // digest is disabled when empty
	}
}

// ScraperConfig is the site profile for the extraction unit. It can be
// overridden by a YAML file because the selectors drift with the site.
type ScraperConfig struct {
	ChallengeURL     string        `yaml:"challenge_url"`
	Host             string        `yaml:"host"`
	MaxResults       int           `yaml:"max_results"`
	SummarySelectors []string      `yaml:"summary_selectors"`
	DetailSelector   string        `yaml:"detail_selector"`
	ChallengeTimeout time.Duration `yaml:"challenge_timeout"`
	SummaryTimeout   time.Duration `yaml:"summary_timeout"`
	DetailTimeout    time.Duration `yaml:"detail_timeout"`
	ClickInterval    time.Duration `yaml:"click_interval"`
	SettleDelay      time.Duration `yaml:"settle_delay"`
	ChromePath       string        `yaml:"chrome_path"`
}

// DefaultScraper returns the Indeed (Pakistan) profile.
func DefaultScraper() ScraperConfig {
	return ScraperConfig{
		ChallengeURL: "https://www.indeed.com/jobs/",
		Host:         "https://pk.indeed.com",
		MaxResults:   10,
		SummarySelectors: []string{
			"h2[data-testid='jobTitle']",
			"h2[class*='jobTitle']",
		},
		DetailSelector:   "div.jobsearch-JobComponent",
		ChallengeTimeout: 60 * time.Second,
		SummaryTimeout:   5 * time.Second,
		DetailTimeout:    10 * time.Second,
		ClickInterval:    3 * time.Second,
		SettleDelay:      3 * time.Second,
	}
}

// Load populates config from .env, an optional YAML scraper profile and
// environment variables, in that order of precedence (lowest first).
func Load() (Config, error) {
	// A missing .env is fine in containers; real env vars still apply.
	_ = godotenv.Load()

	cfg := Config{
		LogLevel:     "info",
		Host:         "127.0.0.1",
		Port:         "8000",
		GeminiModel:  "gemini-2.0-flash",
		ScratchDir:   filepath.Join(os.TempDir(), "job-finder"),
		StepDelay:    500 * time.Millisecond,
		TemplatesDir: filepath.Join("web", "templates"),
		StaticDir:    filepath.Join("web", "static"),
		Scraper:      DefaultScraper(),
	}

	if path := os.Getenv("JOBFINDER_CONFIG"); path != "" {
		if err := loadScraperProfile(path, &cfg.Scraper); err != nil {
			return cfg, err
		}
	}

	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.Host, "HOST")
	setString(&cfg.Port, "PORT")
	setString(&cfg.GeminiModel, "GEMINI_MODEL")
	setString(&cfg.ScratchDir, "SCRATCH_DIR")
	setString(&cfg.TemplatesDir, "TEMPLATES_DIR")
	setString(&cfg.StaticDir, "STATIC_DIR")
	setString(&cfg.Scraper.Host, "SCRAPER_HOST")
	setString(&cfg.Scraper.ChromePath, "CHROME_PATH")

	if v := os.Getenv("STEP_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("config: invalid STEP_DELAY %q: %w", v, err)
		}
		cfg.StepDelay = d
	}

	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.Gmail.CredentialsPath = os.Getenv("GMAIL_CREDENTIALS")
	cfg.Gmail.TokenPath = os.Getenv("GMAIL_TOKEN")
	cfg.Gmail.NotifyTo = os.Getenv("NOTIFY_EMAIL")
	if cfg.Gmail.TokenPath == "" {
		cfg.Gmail.TokenPath = "token.json"
	}

	var missingVars []string

	if cfg.GeminiAPIKey == "" {
		missingVars = append(missingVars, "GEMINI_API_KEY")
	}

	if cfg.Gmail.NotifyTo != "" && cfg.Gmail.CredentialsPath == "" {
		missingVars = append(missingVars, "GMAIL_CREDENTIALS")
	}

	if len(missingVars) > 0 {
		return cfg, fmt.Errorf("missing required environment variables: %s", strings.Join(missingVars, ", "))
	}

	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return c.Host + ":" + c.Port
}

func loadScraperProfile(path string, sc *ScraperConfig) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read scraper profile: %w", err)
	}
	// Unmarshal on top of the defaults so a profile only lists what it changes.
	if err := yaml.Unmarshal(b, sc); err != nil {
		return fmt.Errorf("config: parse scraper profile %s: %w", path, err)
	}
	if sc.MaxResults <= 0 {
		return errors.New("config: scraper max_results must be positive")
	}
	if len(sc.SummarySelectors) == 0 {
		return errors.New("config: scraper summary_selectors must not be empty")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
