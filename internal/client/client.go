package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/justsurfingit/job-finder/internal/dtos"
	"github.com/justsurfingit/job-finder/internal/models"
)

const timeout = 30 * time.Second

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server answered %d: %s", e.StatusCode, e.Message)
}

// Client talks to a running job finder API.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// Submit posts the criteria as a form, the way the landing page does.
func (c *Client) Submit(ctx context.Context, criteria models.SearchCriteria) (dtos.JobSearchAccepted, error) {
	form := url.Values{
		"position":   {criteria.Position},
		"location":   {criteria.Location},
		"experience": {criteria.Experience},
		"salary":     {criteria.Salary},
		"jobNature":  {criteria.JobNature},
		"skills":     {criteria.Skills},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/search", strings.NewReader(form.Encode()))
	if err != nil {
		return dtos.JobSearchAccepted{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var out dtos.JobSearchAccepted
	err = c.do(req, func(body []byte) error { return json.Unmarshal(body, &out) })
	return out, err
}

// Status fetches the progress record of one search.
func (c *Client) Status(ctx context.Context, searchID string) (models.SearchProgress, error) {
	var out models.SearchProgress
	err := c.get(ctx, "/api/status", searchID, func(body []byte) error { return json.Unmarshal(body, &out) })
	return out, err
}

// Results fetches and normalizes the published list of one search.
func (c *Client) Results(ctx context.Context, searchID string) ([]models.MatchedJob, error) {
	var out []models.MatchedJob
	err := c.get(ctx, "/api/results", searchID, func(body []byte) error {
		jobs, err := models.NormalizeResult(body)
		out = jobs
		return err
	})
	return out, err
}

// Wait polls Status every interval until the search stops running. onUpdate
// sees every snapshot, including the last one.
func (c *Client) Wait(ctx context.Context, searchID string, interval time.Duration, onUpdate func(models.SearchProgress)) (models.SearchProgress, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		p, err := c.Status(ctx, searchID)
		if err != nil {
			return p, err
		}
		if onUpdate != nil {
			onUpdate(p)
		}
		if !p.IsRunning {
			return p, nil
		}

		select {
		case <-ctx.Done():
			return p, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *Client) get(ctx context.Context, path, searchID string, decode func([]byte) error) error {
	u := c.BaseURL + path
	if searchID != "" {
		u += "?search_id=" + url.QueryEscape(searchID)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	return c.do(req, decode)
}

func (c *Client) do(req *http.Request, decode func([]byte) error) error {
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("client: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(body))
		if json.Unmarshal(body, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if err := decode(body); err != nil {
		return fmt.Errorf("client: decode %s: %w", req.URL.Path, err)
	}
	return nil
}
