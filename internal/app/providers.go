package app

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/justsurfingit/job-finder/internal/auth"
	"github.com/justsurfingit/job-finder/internal/config"
	"github.com/justsurfingit/job-finder/internal/handlers"
	"github.com/justsurfingit/job-finder/internal/scraper"
	"github.com/justsurfingit/job-finder/internal/services"
	"github.com/justsurfingit/job-finder/internal/storage"
	"github.com/justsurfingit/job-finder/pkg/logging"
)

// retainedSearches is how many finished searches stay pollable by ID.
const retainedSearches = 50

func provideLLMService(ctx context.Context, cfg config.Config) (*services.LLMService, error) {
	return services.NewLLMService(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
}

func provideChrome(cfg config.Config) *scraper.Chrome {
	return scraper.NewChrome(cfg.Scraper.ChromePath)
}

func provideIndeed(browser scraper.Browser, cfg config.Config, log *logging.Logger) *scraper.Indeed {
	return scraper.NewIndeed(browser, cfg.Scraper, log)
}

func provideProgressStore() *services.ProgressStore {
	return services.NewProgressStore(retainedSearches)
}

func provideScratch(cfg config.Config) (*storage.Scratch, error) {
	return storage.NewScratch(cfg.ScratchDir)
}

// provideGmail returns nil when the digest is not configured or the client
// cannot be built. The digest is optional and never blocks startup.
func provideGmail(ctx context.Context, cfg config.Config, log *logging.Logger) *gmail.Service {
	if cfg.Gmail.NotifyTo == "" {
		return nil
	}

	httpClient, err := auth.GetGmailClient(ctx, cfg.Gmail.CredentialsPath, cfg.Gmail.TokenPath)
	if err != nil {
		log.Warn("gmail digest disabled", "err", err)
		return nil
	}

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		log.Warn("gmail digest disabled", "err", err)
		return nil
	}
	log.Info("gmail digest enabled", "to", cfg.Gmail.NotifyTo)
	return svc
}

func provideEmailService(client *gmail.Service, cfg config.Config, log *logging.Logger) *services.EmailService {
	return services.NewEmailService(client, cfg.Gmail.NotifyTo, log)
}

func provideNotifier(email *services.EmailService) services.ResultNotifier {
	if email == nil || email.GmailClient == nil {
		return nil
	}
	return email
}

func provideJobService(
	extractor services.Extractor,
	matcher services.Matcher,
	progress *services.ProgressStore,
	scratch *storage.Scratch,
	notifier services.ResultNotifier,
	log *logging.Logger,
	cfg config.Config,
) *services.JobService {
	return services.NewJobService(extractor, matcher, progress, scratch, notifier, log, cfg.StepDelay)
}

func provideRouter(jobs *handlers.JobHandler, cfg config.Config) *gin.Engine {
	if !strings.EqualFold(cfg.LogLevel, "debug") {
		gin.SetMode(gin.ReleaseMode)
	}
	return handlers.NewRouter(jobs, handlers.RouterConfig{
		TemplatesDir: cfg.TemplatesDir,
		StaticDir:    cfg.StaticDir,
	})
}
