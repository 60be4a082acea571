//go:build wireinject
// +build wireinject

package app

import (
	"context"

	"github.com/google/wire"

	"github.com/justsurfingit/job-finder/internal/config"
	"github.com/justsurfingit/job-finder/internal/handlers"
	"github.com/justsurfingit/job-finder/internal/scraper"
	"github.com/justsurfingit/job-finder/internal/services"
	"github.com/justsurfingit/job-finder/pkg/logging"
)

// InitializeServer creates the Server with every dependency wired up.
func InitializeServer(ctx context.Context, cfg config.Config, log *logging.Logger) (*Server, error) {
	wire.Build(
		// Gemini
		provideLLMService,
		wire.Bind(new(services.TextGenerator), new(*services.LLMService)),
		services.NewMatcherService,
		wire.Bind(new(services.Matcher), new(*services.MatcherService)),

		// Browser + extraction
		provideChrome,
		wire.Bind(new(scraper.Browser), new(*scraper.Chrome)),
		provideIndeed,
		wire.Bind(new(services.Extractor), new(*scraper.Indeed)),

		// Progress, scratch files, digest
		provideProgressStore,
		provideScratch,
		provideGmail,
		provideEmailService,
		provideNotifier,

		// Orchestrator
		provideJobService,
		wire.Bind(new(handlers.SearchService), new(*services.JobService)),

		// HTTP
		handlers.NewJobHandler,
		provideRouter,
		NewServer,
	)

	return &Server{}, nil
}
