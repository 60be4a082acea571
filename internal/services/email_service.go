package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"

	"github.com/justsurfingit/job-finder/internal/models"
	"github.com/justsurfingit/job-finder/pkg/logging"
)

// EmailService mails a digest of a finished search. A nil GmailClient
// disables it.
type EmailService struct {
	GmailClient *gmail.Service
	To          string
	Log         *logging.Logger

	Attempts int
	Backoff  time.Duration
}

func NewEmailService(client *gmail.Service, to string, log *logging.Logger) *EmailService {
	return &EmailService{
		GmailClient: client,
		To:          to,
		Log:         log,
		Attempts:    3,
		Backoff:     time.Second,
	}
}

// NotifyResults sends one message listing the published jobs.
func (s *EmailService) NotifyResults(ctx context.Context, searchID string, criteria models.SearchCriteria, result json.RawMessage) error {
	if s == nil || s.GmailClient == nil || s.To == "" {
		return nil
	}

	jobs, err := models.NormalizeResult(result)
	if err != nil {
		return fmt.Errorf("email: %w", err)
	}
	if len(jobs) == 0 {
		return nil
	}

	subject, body := BuildDigest(criteria, jobs, time.Now())
	msg := &gmail.Message{Raw: encodeMessage(s.To, subject, body)}

	err = retry(ctx, s.Attempts, s.Backoff, func() error {
		_, err := s.GmailClient.Users.Messages.Send("me", msg).Context(ctx).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("email: send digest: %w", err)
	}

	s.Log.Info("result digest sent", "search_id", searchID, "to", s.To, "jobs", len(jobs))
	return nil
}

// BuildDigest renders the subject and plain-text body of a digest.
func BuildDigest(criteria models.SearchCriteria, jobs []models.MatchedJob, now time.Time) (string, string) {
	subject := fmt.Sprintf("%s %s for %s in %s",
		humanize.Comma(int64(len(jobs))),
		plural(len(jobs), "job", "jobs"),
		criteria.Position,
		criteria.Location,
	)

	var b strings.Builder
	fmt.Fprintf(&b, "Search finished %s.\n\n", now.Format(time.RFC1123))
	for i, j := range jobs {
		fmt.Fprintf(&b, "%s. %s\n", humanize.Ordinal(i+1), orDash(j.Title))
		fmt.Fprintf(&b, "   Company:  %s\n", orDash(j.Company))
		fmt.Fprintf(&b, "   Location: %s\n", orDash(j.Location))
		fmt.Fprintf(&b, "   Salary:   %s\n", orDash(j.Salary))
		if j.MatchScore != nil {
			fmt.Fprintf(&b, "   Match:    %s\n", humanize.FtoaWithDigits(*j.MatchScore, 2))
		}
		if j.ApplyLink != "" {
			fmt.Fprintf(&b, "   Apply:    %s\n", j.ApplyLink)
		}
		b.WriteString("\n")
	}
	return subject, b.String()
}

func encodeMessage(to, subject, body string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
	b.WriteString(body)
	return base64.URLEncoding.EncodeToString([]byte(b.String()))
}

// retry runs f up to attempts times with doubling backoff. Client errors
// (4xx) are not retried.
func retry(ctx context.Context, attempts int, sleep time.Duration, f func() error) error {
	if attempts <= 0 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		if err = f(); err == nil {
			return nil
		}
		if isClientError(err) || i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}
		sleep *= 2
	}
	return err
}

func isClientError(err error) bool {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return gErr.Code >= 400 && gErr.Code < 500
	}
	return false
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
