package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/justsurfingit/job-finder/internal/models"
	"github.com/justsurfingit/job-finder/internal/scraper"
	"github.com/justsurfingit/job-finder/internal/storage"
	"github.com/justsurfingit/job-finder/pkg/logging"
)

var (
	ErrMissingCriteria = errors.New("position and location are required")
	ErrSearchNotFound  = errors.New("search not found")
	ErrShuttingDown    = errors.New("server is shutting down")
)

// Extractor scrapes listings for a search.
type Extractor interface {
	Extract(ctx context.Context, criteria models.SearchCriteria) scraper.Result
}

// Matcher ranks listings and returns the model's raw text.
type Matcher interface {
	Match(ctx context.Context, criteria models.SearchCriteria, listings []models.JobListing) string
}

// ResultNotifier is told about every search that finished with results.
type ResultNotifier interface {
	NotifyResults(ctx context.Context, searchID string, criteria models.SearchCriteria, result json.RawMessage) error
}

// JobService runs the scrape-then-match pipeline, one goroutine per search.
type JobService struct {
	Extractor Extractor
	Matcher   Matcher
	Progress  *ProgressStore
	Scratch   *storage.Scratch
	Notifier  ResultNotifier // optional
	Log       *logging.Logger

	// StepDelay is the pause after each progress checkpoint.
	StepDelay time.Duration
	NewID     func() string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewJobService(
	extractor Extractor,
	matcher Matcher,
	progress *ProgressStore,
	scratch *storage.Scratch,
	notifier ResultNotifier,
	log *logging.Logger,
	stepDelay time.Duration,
) *JobService {
	ctx, cancel := context.WithCancel(context.Background())
	return &JobService{
		Extractor: extractor,
		Matcher:   matcher,
		Progress:  progress,
		Scratch:   scratch,
		Notifier:  notifier,
		Log:       log,
		StepDelay: stepDelay,
		NewID:     uuid.NewString,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// StartSearch validates criteria, resets a fresh progress record and runs
// the pipeline in the background. The record is visible to pollers before
// StartSearch returns.
func (s *JobService) StartSearch(criteria models.SearchCriteria) (string, error) {
	if !criteria.Valid() {
		return "", ErrMissingCriteria
	}
	if s.ctx.Err() != nil {
		return "", ErrShuttingDown
	}

	id := s.NewID()
	s.Progress.Begin(id)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.Run(s.ctx, id, criteria)
	}()

	return id, nil
}

// Status returns the record for id, or the latest search when id is empty.
func (s *JobService) Status(id string) (models.SearchProgress, error) {
	if id == "" {
		return s.Progress.Latest(), nil
	}
	p, ok := s.Progress.Get(id)
	if !ok {
		return models.SearchProgress{}, fmt.Errorf("%w: %s", ErrSearchNotFound, id)
	}
	return p, nil
}

// Run executes the pipeline for an already begun record. Whatever happens,
// the record is no longer running when Run returns.
func (s *JobService) Run(ctx context.Context, id string, criteria models.SearchCriteria) {
	log := s.Log.With("search_id", id)
	log.Info("search started", "position", criteria.Position, "location", criteria.Location)

	result, err := s.execute(ctx, id, criteria, log)
	s.finish(id, err)

	if err != nil {
		log.Error("search failed", "err", err)
		return
	}
	log.Info("search completed", "has_results", len(result) > 0)

	if s.Notifier != nil && len(result) > 0 {
		if err := s.Notifier.NotifyResults(ctx, id, criteria, result); err != nil {
			log.Warn("result digest not sent", "err", err)
		}
	}
}

func (s *JobService) execute(ctx context.Context, id string, criteria models.SearchCriteria, log *logging.Logger) (result json.RawMessage, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()
	return s.pipeline(ctx, id, criteria, log)
}

func (s *JobService) pipeline(ctx context.Context, id string, criteria models.SearchCriteria, log *logging.Logger) (json.RawMessage, error) {
	if err := s.step(ctx, id, 5, models.StepSavingInput); err != nil {
		return nil, err
	}

	ws, err := s.Scratch.Workspace(id)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := ws.Close(); err != nil {
			log.Warn("scratch workspace not removed", "err", err)
		}
	}()

	input, err := ws.WriteJSON(storage.UserInputFile, criteria)
	if err != nil {
		return nil, err
	}
	defer removeArtifact(input, log)

	if err := s.step(ctx, id, 15, models.StepPreparing); err != nil {
		return nil, err
	}
	scraping := fmt.Sprintf("Scraping jobs for %s in %s", criteria.Position, criteria.Location)
	if err := s.step(ctx, id, 25, scraping); err != nil {
		return nil, err
	}

	res := s.Extractor.Extract(ctx, criteria)
	if res.Outcome == scraper.OutcomeFailed && res.Err != nil {
		// Shown to the user as "no jobs", but kept apart for pollers that care.
		log.Warn("extraction failed", "err", res.Err)
		s.Progress.Update(id, func(p *models.SearchProgress) {
			p.ExtractionFailure = res.Err.Error()
		})
	}
	jobs := res.Listings

	var scraped *storage.Artifact
	if len(jobs) > 0 {
		scraped, err = ws.WriteJSON(storage.ScrapedJobsFile, jobs)
		if err != nil {
			return nil, err
		}
		defer removeArtifact(scraped, log)
	}

	if err := s.step(ctx, id, 40, models.StepProcessing); err != nil {
		return nil, err
	}
	s.Progress.Update(id, func(p *models.SearchProgress) {
		p.TotalJobs = len(jobs)
		p.ScrapedJobs = len(jobs)
	})
	if err := s.step(ctx, id, 60, ""); err != nil {
		return nil, err
	}

	if len(jobs) == 0 {
		if err := s.step(ctx, id, 90, ""); err != nil {
			return nil, err
		}
		s.publish(id, json.RawMessage("[]"), models.StepCompletedNoJobs, models.MessageNoJobs)
		return nil, nil
	}

	found := fmt.Sprintf("Found %d jobs. Preparing for AI analysis...", len(jobs))
	if err := s.step(ctx, id, 65, found); err != nil {
		return nil, err
	}
	if err := s.step(ctx, id, 75, models.StepMatching); err != nil {
		return nil, err
	}

	// The matcher works from the saved artifacts, not the in-memory copies.
	matchCriteria, matchJobs, err := loadMatchInput(input, scraped)
	if err != nil {
		return nil, err
	}
	answer := s.Matcher.Match(ctx, matchCriteria, matchJobs)

	if err := s.step(ctx, id, 85, models.StepParsing); err != nil {
		return nil, err
	}

	if parsed, ok := ParseMatchResponse(answer); ok {
		s.Progress.Update(id, func(p *models.SearchProgress) { p.Result = parsed })
		if err := s.step(ctx, id, 95, models.StepFinalizing); err != nil {
			return nil, err
		}
		s.publish(id, parsed, models.StepCompleted, models.MessageMatched)
		return parsed, nil
	}

	log.Warn("model answer is not usable JSON, falling back to scraped listings", "answer_bytes", len(answer))
	raw, err := json.Marshal(matchJobs)
	if err != nil {
		return nil, fmt.Errorf("encode listings: %w", err)
	}
	s.Progress.Update(id, func(p *models.SearchProgress) { p.Result = raw })
	if err := s.step(ctx, id, 95, models.StepFinalizingRaw); err != nil {
		return nil, err
	}
	s.publish(id, raw, models.StepCompletedRaw, models.MessageRawFallback)
	return raw, nil
}

// step raises progress to pct, sets the step label when one is given and
// then pauses for StepDelay.
func (s *JobService) step(ctx context.Context, id string, pct int, label string) error {
	s.Progress.Update(id, func(p *models.SearchProgress) {
		if pct > p.Progress {
			p.Progress = pct
		}
		if label != "" {
			p.CurrentStep = label
		}
	})

	if s.StepDelay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.StepDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (s *JobService) publish(id string, result json.RawMessage, label, message string) {
	s.Progress.Update(id, func(p *models.SearchProgress) {
		p.Result = result
		p.CurrentStep = label
		p.Message = message
		p.Progress = 100
	})
}

func (s *JobService) finish(id string, err error) {
	now := time.Now()
	s.Progress.Update(id, func(p *models.SearchProgress) {
		if err != nil {
			msg := err.Error()
			p.Error = &msg
			p.CurrentStep = models.StepError
			p.Message = models.ErrorMessage(err)
		}
		p.IsRunning = false
		p.FinishedAt = &now
	})
}

// Shutdown cancels running searches and waits for them to record their
// final state, or for ctx to expire.
func (s *JobService) Shutdown(ctx context.Context) error {
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("searches still running: %w", ctx.Err())
	}
}

// loadMatchInput reads the criteria and listings back from the scratch
// workspace.
func loadMatchInput(input, scraped *storage.Artifact) (models.SearchCriteria, []models.JobListing, error) {
	var criteria models.SearchCriteria
	if err := input.ReadJSON(&criteria); err != nil {
		return criteria, nil, fmt.Errorf("load matcher input: %w", err)
	}
	var jobs []models.JobListing
	if err := scraped.ReadJSON(&jobs); err != nil {
		return criteria, nil, fmt.Errorf("load matcher input: %w", err)
	}
	return criteria, jobs, nil
}

func removeArtifact(a *storage.Artifact, log *logging.Logger) {
	if err := a.Remove(); err != nil {
		log.Warn("scratch artifact not removed", "err", err)
	}
}
