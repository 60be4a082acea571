package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/justsurfingit/job-finder/internal/models"
	"github.com/justsurfingit/job-finder/pkg/logging"
)

// TextGenerator is the one model call the matcher needs.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// MatcherService ranks scraped listings against the user's preferences.
type MatcherService struct {
	LLM TextGenerator
	Log *logging.Logger
}

func NewMatcherService(llm TextGenerator, log *logging.Logger) *MatcherService {
	return &MatcherService{LLM: llm, Log: log}
}

const jobMatchPrompt = `
I have the following list of job postings. Each job posting contains multiple fields like job title, company name, location, description, salary, etc.

User is looking for jobs that match the following preferences:
Position: %s
Experience: %s
Salary: %s
Job Nature: %s
Location: %s
Skills: %s

Please find the best matching jobs based on the above user preferences. Return the result in a structured JSON format with the following fields for each matching job:
- job_title
- company_name
- location
- description
- salary
- job_type (e.g., full-time, part-time, contract)
- experience_required
- skills_required
- apply_link

Here is the list of job postings (each job includes its full details):

%s

Match the jobs based on the user input and return the best matches as a JSON array. Return only the JSON, with no text before or after it.
`

// BuildMatchPrompt embeds the criteria and the full listing set in one prompt.
func BuildMatchPrompt(criteria models.SearchCriteria, listings []models.JobListing) (string, error) {
	jobs, err := json.MarshalIndent(listings, "", "    ")
	if err != nil {
		return "", fmt.Errorf("matcher: encode listings: %w", err)
	}
	return fmt.Sprintf(jobMatchPrompt,
		criteria.Position,
		criteria.Experience,
		criteria.Salary,
		criteria.JobNature,
		criteria.Location,
		criteria.Skills,
		jobs,
	), nil
}

// Match returns the model's answer as text. Failures are returned as a
// {"error": "..."} document rather than an error value; parsing the
// answer is the caller's job.
func (s *MatcherService) Match(ctx context.Context, criteria models.SearchCriteria, listings []models.JobListing) string {
	prompt, err := BuildMatchPrompt(criteria, listings)
	if err != nil {
		return errorDocument(err)
	}

	s.Log.Info("asking model to rank listings", "listings", len(listings), "prompt_bytes", len(prompt))

	resp, err := s.LLM.Generate(ctx, prompt)
	if err != nil {
		s.Log.Warn("model call failed", "err", err)
		return errorDocument(err)
	}

	return StripCodeFences(resp)
}

var codeFence = regexp.MustCompile("```json|```")

// StripCodeFences removes markdown code fences the model likes to add.
func StripCodeFences(s string) string {
	return strings.TrimSpace(codeFence.ReplaceAllString(s, ""))
}

func errorDocument(err error) string {
	b, _ := json.Marshal(map[string]string{"error": err.Error()})
	return string(b)
}

// ParseMatchResponse validates the matcher's text. It reports false when the
// text is not JSON or is the matcher's own error document.
func ParseMatchResponse(text string) (json.RawMessage, bool) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	if cleaned == "" || !json.Valid([]byte(cleaned)) {
		return nil, false
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &obj); err == nil {
		if _, isErr := obj["error"]; isErr && len(obj) == 1 {
			return nil, false
		}
	}

	return json.RawMessage(cleaned), true
}
