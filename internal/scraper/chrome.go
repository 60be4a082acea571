package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

const challengePoll = 500 * time.Millisecond

// Chrome is the Browser backed by a local Chrome/Chromium via chromedp.
type Chrome struct {
	ExecPath string // empty means let chromedp find the binary
}

func NewChrome(execPath string) *Chrome {
	return &Chrome{ExecPath: execPath}
}

func (c *Chrome) OpenChallenge(ctx context.Context) (ChallengeSession, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", false),
	)
	s, err := c.open(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("scraper: open challenge browser: %w", err)
	}
	return &chromeChallenge{chromeTab: s}, nil
}

func (c *Chrome) OpenScrape(ctx context.Context, userAgent string) (ScrapeSession, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", "new"),
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if userAgent != "" {
		opts = append(opts, chromedp.UserAgent(userAgent))
	}
	s, err := c.open(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("scraper: open scrape browser: %w", err)
	}
	return &chromeScrape{chromeTab: s}, nil
}

func (c *Chrome) open(ctx context.Context, opts []chromedp.ExecAllocatorOption) (*chromeTab, error) {
	if c.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(c.ExecPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	// An empty Run starts the browser so launch errors surface here.
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		allocCancel()
		return nil, err
	}

	return &chromeTab{
		ctx: tabCtx,
		cancel: func() {
			tabCancel()
			allocCancel()
		},
	}, nil
}

type chromeTab struct {
	ctx    context.Context
	cancel context.CancelFunc
}

func (t *chromeTab) Close() error {
	err := chromedp.Cancel(t.ctx)
	t.cancel()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (t *chromeTab) Navigate(url string) error {
	if err := chromedp.Run(t.ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("scraper: navigate %s: %w", url, err)
	}
	return nil
}

type chromeChallenge struct {
	*chromeTab
}

// Clear loads url and polls until the interstitial is gone, then captures
// the cookies and user agent the site accepted.
func (s *chromeChallenge) Clear(url string, timeout time.Duration) (Clearance, error) {
	if err := s.Navigate(url); err != nil {
		return Clearance{}, err
	}

	deadline := time.Now().Add(timeout)
	for {
		var title, body string
		err := chromedp.Run(s.ctx,
			chromedp.Title(&title),
			chromedp.Evaluate(`document.body ? document.body.innerText.slice(0, 4000) : ""`, &body),
		)
		if err == nil && !IsChallengePage(title, body) {
			break
		}
		if time.Now().After(deadline) {
			return Clearance{}, ErrChallengeUnresolved
		}
		select {
		case <-s.ctx.Done():
			return Clearance{}, s.ctx.Err()
		case <-time.After(challengePoll):
		}
	}

	var (
		ua      string
		cookies []*network.Cookie
	)
	err := chromedp.Run(s.ctx,
		chromedp.Evaluate(`navigator.userAgent`, &ua),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			cookies, err = network.GetCookies().Do(ctx)
			return err
		}),
	)
	if err != nil {
		return Clearance{}, fmt.Errorf("scraper: capture clearance: %w", err)
	}

	out := Clearance{UserAgent: ua}
	for _, c := range cookies {
		out.Cookies = append(out.Cookies, Cookie{Name: c.Name, Value: c.Value, Domain: c.Domain, Path: c.Path})
	}
	return out, nil
}

type chromeScrape struct {
	*chromeTab
	nodes []*cdp.Node
}

func (s *chromeScrape) SetCookies(url string, cookies []Cookie) error {
	if len(cookies) == 0 {
		return nil
	}
	params := make([]*network.CookieParam, 0, len(cookies))
	for _, c := range cookies {
		// Bind to the scrape host rather than the domain the challenge ran on.
		params = append(params, &network.CookieParam{Name: c.Name, Value: c.Value, URL: url})
	}
	return chromedp.Run(s.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return network.SetCookies(params).Do(ctx)
	}))
}

func (s *chromeScrape) FindSummaries(selector string, timeout time.Duration) (int, error) {
	tctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	var nodes []*cdp.Node
	err := chromedp.Run(tctx, chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll))
	if errors.Is(err, context.DeadlineExceeded) {
		s.nodes = nil
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("scraper: query %s: %w", selector, err)
	}
	s.nodes = nodes
	return len(nodes), nil
}

func (s *chromeScrape) OpenSummary(i int) error {
	if i < 0 || i >= len(s.nodes) {
		return fmt.Errorf("scraper: summary %d out of range (%d found)", i, len(s.nodes))
	}
	n := s.nodes[i]
	return chromedp.Run(s.ctx,
		chromedp.ScrollIntoView([]cdp.NodeID{n.NodeID}, chromedp.ByNodeID),
		chromedp.MouseClickNode(n),
	)
}

func (s *chromeScrape) DetailPane(selector string, timeout time.Duration) (Pane, error) {
	tctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	var p Pane
	err := chromedp.Run(tctx,
		chromedp.WaitReady(selector, chromedp.ByQuery),
		chromedp.OuterHTML(selector, &p.HTML, chromedp.ByQuery),
		chromedp.Text(selector, &p.Text, chromedp.ByQuery),
		chromedp.Location(&p.URL),
	)
	if err != nil {
		return Pane{}, fmt.Errorf("scraper: detail pane %s: %w", selector, err)
	}
	return p, nil
}
