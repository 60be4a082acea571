package scraper

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrChallengeUnresolved is returned when the anti-bot interstitial is still
// shown after the challenge timeout.
var ErrChallengeUnresolved = errors.New("scraper: anti-bot challenge not resolved")

// Cookie is the part of a browser cookie that survives the session handoff.
type Cookie struct {
	Name   string
	Value  string
	Domain string
	Path   string
}

// Clearance is what the challenge session hands to the scrape session.
type Clearance struct {
	Cookies   []Cookie
	UserAgent string
}

// Pane is the rendered job detail container.
type Pane struct {
	HTML string // outer HTML of the container
	Text string // rendered text of the container
	URL  string // page URL while the pane is open
}

// Browser opens the two sessions a scrape needs. Both sessions are bound to
// the context they were opened with and must be closed by the caller.
type Browser interface {
	OpenChallenge(ctx context.Context) (ChallengeSession, error)
	OpenScrape(ctx context.Context, userAgent string) (ScrapeSession, error)
}

// ChallengeSession is a visible browser used only to get past the anti-bot
// page. A person may solve the challenge by hand in that window.
type ChallengeSession interface {
	Clear(url string, timeout time.Duration) (Clearance, error)
	Close() error
}

// ScrapeSession is the headless browser that walks the result list.
type ScrapeSession interface {
	Navigate(url string) error
	SetCookies(url string, cookies []Cookie) error
	// FindSummaries waits up to timeout for selector and returns how many
	// result summaries matched. Zero matches is not an error.
	FindSummaries(selector string, timeout time.Duration) (int, error)
	// OpenSummary scrolls the i-th summary into view and clicks it.
	OpenSummary(i int) error
	DetailPane(selector string, timeout time.Duration) (Pane, error)
	Close() error
}

var challengeMarkers = []string{
	"just a moment",
	"cf-browser-verification",
	"additional verification required",
	"verify you are human",
	"checking your browser",
}

// IsChallengePage reports whether a page title or body still shows the
// anti-bot interstitial.
func IsChallengePage(title, body string) bool {
	t := strings.ToLower(title)
	b := strings.ToLower(body)
	for _, m := range challengeMarkers {
		if strings.Contains(t, m) || strings.Contains(b, m) {
			return true
		}
	}
	return false
}
