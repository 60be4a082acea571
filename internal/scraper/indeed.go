package scraper

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/justsurfingit/job-finder/internal/config"
	"github.com/justsurfingit/job-finder/internal/models"
	"github.com/justsurfingit/job-finder/pkg/logging"
)

// Indeed extracts listings from Indeed search results by driving a browser.
type Indeed struct {
	Browser Browser
	Config  config.ScraperConfig
	Log     *logging.Logger
}

func NewIndeed(browser Browser, cfg config.ScraperConfig, log *logging.Logger) *Indeed {
	return &Indeed{Browser: browser, Config: cfg, Log: log}
}

// SearchURL builds the results URL for a position and location.
func SearchURL(host, position, location string) string {
	return fmt.Sprintf("%s/jobs?q=%s&l=%s",
		strings.TrimSuffix(host, "/"), escapeTerm(position), escapeTerm(location))
}

func escapeTerm(s string) string {
	return strings.ReplaceAll(url.QueryEscape(strings.TrimSpace(s)), "+", "%20")
}

// Extract runs one scrape. It never panics and never returns a bare error:
// every failure is folded into a Failed result.
func (s *Indeed) Extract(ctx context.Context, criteria models.SearchCriteria) (res Result) {
	log := s.Log.With("position", criteria.Position, "location", criteria.Location)

	defer func() {
		if r := recover(); r != nil {
			log.Error("scraper panicked", "panic", r)
			res = Failed(fmt.Errorf("scraper: panic: %v", r))
		}
	}()

	listings, err := s.scrape(ctx, criteria, log)
	if err != nil {
		log.Warn("scrape failed", "err", err, "collected", len(listings))
		return Failed(err)
	}

	log.Info("scrape finished", "listings", len(listings))
	return Found(listings)
}

func (s *Indeed) scrape(ctx context.Context, criteria models.SearchCriteria, log *logging.Logger) ([]models.JobListing, error) {
	clearance, err := s.clear(ctx, log)
	if err != nil {
		return nil, err
	}

	session, err := s.Browser.OpenScrape(ctx, clearance.UserAgent)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.Debug("closing scrape browser", "err", err)
		}
	}()

	// Visits and clicks are spaced out so the site sees a human pace.
	limiter := rate.NewLimiter(rate.Every(s.Config.ClickInterval), 1)

	if err := limiter.Wait(ctx); err != nil {
		return nil, err
	}
	if err := session.Navigate(s.Config.Host); err != nil {
		return nil, err
	}
	if err := pause(ctx, s.Config.SettleDelay); err != nil {
		return nil, err
	}

	if err := session.SetCookies(s.Config.Host, clearance.Cookies); err != nil {
		// The scrape may still work without them.
		log.Warn("could not install clearance cookies", "err", err)
	}

	if err := limiter.Wait(ctx); err != nil {
		return nil, err
	}
	searchURL := SearchURL(s.Config.Host, criteria.Position, criteria.Location)
	if err := session.Navigate(searchURL); err != nil {
		return nil, err
	}

	count, err := s.findSummaries(session, log)
	if err != nil {
		return nil, err
	}
	if count > s.Config.MaxResults {
		count = s.Config.MaxResults
	}
	log.Info("result summaries found", "url", searchURL, "processing", count)

	jobs := make([]models.JobListing, 0, count)
	for i := 0; i < count; i++ {
		if err := limiter.Wait(ctx); err != nil {
			return jobs, err
		}
		if err := session.OpenSummary(i); err != nil {
			// The pane may already show this job; read it anyway.
			log.Debug("click on summary failed", "index", i, "err", err)
		}
		if err := pause(ctx, s.Config.SettleDelay); err != nil {
			return jobs, err
		}

		pane, err := session.DetailPane(s.Config.DetailSelector, s.Config.DetailTimeout)
		if err != nil {
			log.Debug("detail pane did not render, skipping", "index", i, "err", err)
			continue
		}
		jobs = append(jobs, ParseDetail(pane, i+1, criteria.Location))
	}

	return jobs, nil
}

func (s *Indeed) clear(ctx context.Context, log *logging.Logger) (Clearance, error) {
	challenge, err := s.Browser.OpenChallenge(ctx)
	if err != nil {
		return Clearance{}, err
	}
	defer func() {
		if err := challenge.Close(); err != nil {
			log.Debug("closing challenge browser", "err", err)
		}
	}()

	clearance, err := challenge.Clear(s.Config.ChallengeURL, s.Config.ChallengeTimeout)
	if err != nil {
		return Clearance{}, err
	}
	log.Debug("challenge cleared", "cookies", len(clearance.Cookies))
	return clearance, nil
}

// findSummaries tries each configured selector until one matches.
func (s *Indeed) findSummaries(session ScrapeSession, log *logging.Logger) (int, error) {
	for _, sel := range s.Config.SummarySelectors {
		n, err := session.FindSummaries(sel, s.Config.SummaryTimeout)
		if err != nil {
			return 0, err
		}
		if n > 0 {
			return n, nil
		}
		log.Debug("no summaries for selector", "selector", sel)
	}
	return 0, nil
}

func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
