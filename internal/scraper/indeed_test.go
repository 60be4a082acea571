package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/justsurfingit/job-finder/internal/config"
	"github.com/justsurfingit/job-finder/internal/models"
	"github.com/justsurfingit/job-finder/pkg/logging"
)

// -- fakes ---------------------------------------------------------------------

type fakeBrowser struct {
	challengeErr error
	clearErr     error
	scrapeErr    error
	clearance    Clearance

	// selector -> number of summaries
	summaries map[string]int
	panes     []Pane
	paneErrAt map[int]bool
	panicOn   string

	challenge *fakeChallenge
	scrape    *fakeScrape
}

func (b *fakeBrowser) OpenChallenge(ctx context.Context) (ChallengeSession, error) {
	if b.challengeErr != nil {
		return nil, b.challengeErr
	}
	b.challenge = &fakeChallenge{b: b}
	return b.challenge, nil
}

func (b *fakeBrowser) OpenScrape(ctx context.Context, userAgent string) (ScrapeSession, error) {
	if b.scrapeErr != nil {
		return nil, b.scrapeErr
	}
	b.scrape = &fakeScrape{b: b, userAgent: userAgent}
	return b.scrape, nil
}

type fakeChallenge struct {
	b      *fakeBrowser
	url    string
	closed bool
}

func (c *fakeChallenge) Clear(url string, timeout time.Duration) (Clearance, error) {
	c.url = url
	if c.b.clearErr != nil {
		return Clearance{}, c.b.clearErr
	}
	return c.b.clearance, nil
}

func (c *fakeChallenge) Close() error {
	c.closed = true
	return nil
}

type fakeScrape struct {
	b         *fakeBrowser
	userAgent string
	visited   []string
	cookies   []Cookie
	count     int
	current   int
	opened    []int
	closed    bool
}

func (s *fakeScrape) Navigate(url string) error {
	s.visited = append(s.visited, url)
	return nil
}

func (s *fakeScrape) SetCookies(url string, cookies []Cookie) error {
	s.cookies = append(s.cookies, cookies...)
	return nil
}

func (s *fakeScrape) FindSummaries(selector string, timeout time.Duration) (int, error) {
	s.count = s.b.summaries[selector]
	return s.count, nil
}

func (s *fakeScrape) OpenSummary(i int) error {
	if s.b.panicOn == "open" {
		panic("node detached")
	}
	s.opened = append(s.opened, i)
	s.current = i
	return nil
}

func (s *fakeScrape) DetailPane(selector string, timeout time.Duration) (Pane, error) {
	if s.b.paneErrAt[s.current] {
		return Pane{}, errors.New("timeout")
	}
	return s.b.panes[s.current%len(s.b.panes)], nil
}

func (s *fakeScrape) Close() error {
	s.closed = true
	return nil
}

func testConfig() config.ScraperConfig {
	cfg := config.DefaultScraper()
	cfg.ChallengeTimeout = time.Second
	cfg.SummaryTimeout = time.Millisecond
	cfg.DetailTimeout = time.Millisecond
	cfg.ClickInterval = 0
	cfg.SettleDelay = 0
	return cfg
}

func paneHTML(title, company string) Pane {
	var b strings.Builder
	b.WriteString(`<div class="jobsearch-JobComponent">`)
	if title != "" {
		fmt.Fprintf(&b, `<h2 data-testid="jobsearch-JobInfoHeader-title"><span>%s<span> - job post</span></span></h2>`, title)
	}
	if company != "" {
		fmt.Fprintf(&b, `<div data-testid="inlineHeader-companyName"><a href="#">%s<svg><title>icon</title></svg></a></div>`, company)
	}
	b.WriteString(`<p>Rs 150,000 - Rs 250,000 a month</p><p>Job Type: Full-time</p><ul><li>Go: 3 years (Preferred)</li></ul></div>`)
	return Pane{HTML: b.String(), Text: title + " Work Location: In person", URL: "https://pk.indeed.com/viewjob?jk=" + title}
}

func newIndeed(b *fakeBrowser) *Indeed {
	return NewIndeed(b, testConfig(), logging.Nop())
}

// -- Extract -------------------------------------------------------------------

func TestExtract_CapsAtTenAndFillsRequiredFields(t *testing.T) {
	b := &fakeBrowser{
		clearance: Clearance{UserAgent: "UA/1.0", Cookies: []Cookie{{Name: "cf_clearance", Value: "x"}}},
		summaries: map[string]int{"h2[data-testid='jobTitle']": 14},
		panes: []Pane{
			paneHTML("Backend Developer", "Systems Limited"),
			paneHTML("Golang Engineer", ""),
			paneHTML("", "Arbisoft"),
		},
	}

	res := newIndeed(b).Extract(context.Background(), models.SearchCriteria{Position: "Backend Developer", Location: "Lahore"})

	if res.Outcome != OutcomeFound {
		t.Fatalf("Outcome = %v, want found (err=%v)", res.Outcome, res.Err)
	}
	if len(res.Listings) != 10 {
		t.Fatalf("got %d listings, want 10", len(res.Listings))
	}
	for _, l := range res.Listings {
		if l.Title == "" || l.Company == "" {
			t.Errorf("listing %d has empty title or company: %+v", l.ID, l)
		}
		if l.Location != "Lahore" {
			t.Errorf("listing %d location = %q", l.ID, l.Location)
		}
	}
	if res.Listings[1].Company != models.NotSpecified {
		t.Errorf("missing company should be sentinel, got %q", res.Listings[1].Company)
	}
	if res.Listings[2].Title != models.NotSpecified {
		t.Errorf("missing title should be sentinel, got %q", res.Listings[2].Title)
	}
}

func TestExtract_HandsClearanceToScrapeSession(t *testing.T) {
	b := &fakeBrowser{
		clearance: Clearance{UserAgent: "UA/2.0", Cookies: []Cookie{{Name: "a", Value: "1"}, {Name: "b", Value: "2"}}},
		summaries: map[string]int{"h2[data-testid='jobTitle']": 1},
		panes:     []Pane{paneHTML("Backend Developer", "Acme")},
	}

	newIndeed(b).Extract(context.Background(), models.SearchCriteria{Position: "Backend Developer", Location: "Lahore"})

	if b.challenge.url != "https://www.indeed.com/jobs/" {
		t.Errorf("challenge url = %q", b.challenge.url)
	}
	if b.scrape.userAgent != "UA/2.0" {
		t.Errorf("scrape user agent = %q", b.scrape.userAgent)
	}
	if len(b.scrape.cookies) != 2 {
		t.Errorf("installed %d cookies, want 2", len(b.scrape.cookies))
	}
	want := []string{"https://pk.indeed.com", "https://pk.indeed.com/jobs?q=Backend%20Developer&l=Lahore"}
	if strings.Join(b.scrape.visited, " ") != strings.Join(want, " ") {
		t.Errorf("visited = %v, want %v", b.scrape.visited, want)
	}
	if !b.challenge.closed || !b.scrape.closed {
		t.Error("both browser sessions must be closed")
	}
}

func TestExtract_FallsBackToLooseSelector(t *testing.T) {
	b := &fakeBrowser{
		summaries: map[string]int{"h2[class*='jobTitle']": 2},
		panes:     []Pane{paneHTML("Backend Developer", "Acme")},
	}

	res := newIndeed(b).Extract(context.Background(), models.SearchCriteria{Position: "Go", Location: "Karachi"})
	if len(res.Listings) != 2 {
		t.Fatalf("got %d listings, want 2", len(res.Listings))
	}
}

func TestExtract_NoSummariesIsEmpty(t *testing.T) {
	b := &fakeBrowser{summaries: map[string]int{}}

	res := newIndeed(b).Extract(context.Background(), models.SearchCriteria{Position: "Go", Location: "Karachi"})
	if res.Outcome != OutcomeEmpty {
		t.Fatalf("Outcome = %v, want empty", res.Outcome)
	}
	if res.Err != nil {
		t.Errorf("empty result should carry no error, got %v", res.Err)
	}
}

func TestExtract_SkipsPanesThatNeverRender(t *testing.T) {
	b := &fakeBrowser{
		summaries: map[string]int{"h2[data-testid='jobTitle']": 3},
		panes:     []Pane{paneHTML("A", "B")},
		paneErrAt: map[int]bool{1: true},
	}

	res := newIndeed(b).Extract(context.Background(), models.SearchCriteria{Position: "Go", Location: "Karachi"})
	if len(res.Listings) != 2 {
		t.Fatalf("got %d listings, want 2", len(res.Listings))
	}
	// IDs follow the summary position, not the count of parsed panes.
	if res.Listings[1].ID != 3 {
		t.Errorf("second listing ID = %d, want 3", res.Listings[1].ID)
	}
}

func TestExtract_UnresolvedChallengeFails(t *testing.T) {
	b := &fakeBrowser{clearErr: ErrChallengeUnresolved}

	res := newIndeed(b).Extract(context.Background(), models.SearchCriteria{Position: "Go", Location: "Karachi"})
	if res.Outcome != OutcomeFailed {
		t.Fatalf("Outcome = %v, want failed", res.Outcome)
	}
	if !errors.Is(res.Err, ErrChallengeUnresolved) {
		t.Errorf("Err = %v, want ErrChallengeUnresolved", res.Err)
	}
	if !b.challenge.closed {
		t.Error("challenge session must be closed on failure")
	}
	if b.scrape != nil {
		t.Error("scrape session must not open when the challenge fails")
	}
}

func TestExtract_BrowserLaunchFailureFails(t *testing.T) {
	b := &fakeBrowser{challengeErr: errors.New("chrome not found")}

	res := newIndeed(b).Extract(context.Background(), models.SearchCriteria{Position: "Go", Location: "Karachi"})
	if res.Outcome != OutcomeFailed || len(res.Listings) != 0 {
		t.Fatalf("got %+v, want failed with no listings", res)
	}
}

func TestExtract_PanicIsRecoveredAndSessionsClosed(t *testing.T) {
	b := &fakeBrowser{
		summaries: map[string]int{"h2[data-testid='jobTitle']": 2},
		panes:     []Pane{paneHTML("A", "B")},
		panicOn:   "open",
	}

	res := newIndeed(b).Extract(context.Background(), models.SearchCriteria{Position: "Go", Location: "Karachi"})
	if res.Outcome != OutcomeFailed {
		t.Fatalf("Outcome = %v, want failed", res.Outcome)
	}
	if !b.scrape.closed {
		t.Error("scrape session must be closed when extraction panics")
	}
}

func TestExtract_CancelledContextFails(t *testing.T) {
	b := &fakeBrowser{summaries: map[string]int{"h2[data-testid='jobTitle']": 2}, panes: []Pane{paneHTML("A", "B")}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := newIndeed(b).Extract(ctx, models.SearchCriteria{Position: "Go", Location: "Karachi"})
	if res.Outcome != OutcomeFailed {
		t.Fatalf("Outcome = %v, want failed", res.Outcome)
	}
}

func TestSearchURL(t *testing.T) {
	tests := []struct {
		position, location, want string
	}{
		{"Backend Developer", "Lahore", "https://pk.indeed.com/jobs?q=Backend%20Developer&l=Lahore"},
		{"C++ & Go", "Islamabad", "https://pk.indeed.com/jobs?q=C%2B%2B%20%26%20Go&l=Islamabad"},
		{" Go ", " Karachi ", "https://pk.indeed.com/jobs?q=Go&l=Karachi"},
	}
	for _, tt := range tests {
		if got := SearchURL("https://pk.indeed.com/", tt.position, tt.location); got != tt.want {
			t.Errorf("SearchURL(%q, %q) = %q, want %q", tt.position, tt.location, got, tt.want)
		}
	}
}

func TestIsChallengePage(t *testing.T) {
	if !IsChallengePage("Just a moment...", "") {
		t.Error("cloudflare title not detected")
	}
	if !IsChallengePage("indeed.com", "Additional Verification Required") {
		t.Error("verification body not detected")
	}
	if IsChallengePage("Job Search | Indeed", "Find jobs") {
		t.Error("normal page flagged as challenge")
	}
}
