package models

import (
	"encoding/json"
	"strings"
	"time"
)

// NotSpecified is stored in any listing field the scraper could not locate.
const NotSpecified = "Not specified"

// SearchCriteria is what the user submitted. Position and Location are required.
type SearchCriteria struct {
	Position   string `json:"position"`
	Location   string `json:"location"`
	Experience string `json:"experience"`
	Salary     string `json:"salary"`
	JobNature  string `json:"jobNature"`
	Skills     string `json:"skills"`
}

// Valid reports whether both required fields are present.
func (c SearchCriteria) Valid() bool {
	return strings.TrimSpace(c.Position) != "" && strings.TrimSpace(c.Location) != ""
}

// JobListing is one posting as scraped from the job board.
type JobListing struct {
	ID                 int    `json:"job_id"`
	Title              string `json:"job_title"`
	Company            string `json:"company"`
	Location           string `json:"location"`
	Salary             string `json:"salary"`
	JobType            string `json:"job_type"`
	ExperienceRequired string `json:"experience_required"`
	JobNature          string `json:"job_nature"`
	ApplyLink          string `json:"apply_link"`
	Description        string `json:"job_description"`
}

// MatchedJob is one entry of the model's ranked answer. The model is not
// schema-bound, so every field may be empty.
type MatchedJob struct {
	Title              string   `json:"job_title"`
	Company            string   `json:"company_name"`
	Location           string   `json:"location"`
	Description        string   `json:"description"`
	Salary             string   `json:"salary"`
	JobType            string   `json:"job_type"`
	ExperienceRequired string   `json:"experience_required"`
	SkillsRequired     []string `json:"skills_required,omitempty"`
	ApplyLink          string   `json:"apply_link"`
	MatchScore         *float64 `json:"match_score,omitempty"`
}

// SearchProgress is the pollable state of one search run.
type SearchProgress struct {
	SearchID    string          `json:"search_id,omitempty"`
	IsRunning   bool            `json:"is_scraping"`
	TotalJobs   int             `json:"total_jobs"`
	ScrapedJobs int             `json:"scraped_jobs"`
	CurrentStep string          `json:"current_step"`
	Progress    int             `json:"progress"`
	Result      json.RawMessage `json:"-"`
	Message     string          `json:"message"`
	Error       *string         `json:"error"`

	StartedAt         *time.Time `json:"started_at,omitempty"`
	FinishedAt        *time.Time `json:"finished_at,omitempty"`
	ExtractionFailure string     `json:"extraction_failure,omitempty"`
}

// NewSearchProgress returns the zero state every run starts from.
func NewSearchProgress(id string) SearchProgress {
	return SearchProgress{
		SearchID:    id,
		CurrentStep: StepNotStarted,
	}
}

// Results returns the published list, or an empty JSON array when nothing
// has been published yet.
func (p SearchProgress) Results() json.RawMessage {
	if len(p.Result) == 0 {
		return json.RawMessage("[]")
	}
	return p.Result
}

// Step labels shown to the polling client.
const (
	StepNotStarted       = "Not started"
	StepSavingInput      = "Saving user input"
	StepPreparing        = "Preparing to scrape jobs"
	StepProcessing       = "Processing scraped job data"
	StepMatching         = "Processing jobs with Gemini AI"
	StepParsing          = "Parsing AI response"
	StepFinalizing       = "Finalizing results"
	StepFinalizingRaw    = "Finalizing results with raw data"
	StepCompleted        = "Completed! Found matching jobs."
	StepCompletedRaw     = "Completed! Using raw job data (LLM parsing failed)."
	StepCompletedNoJobs  = "Completed! No jobs found."
	StepError            = "Error occurred"
	MessageMatched       = "Successfully found matching jobs!"
	MessageRawFallback   = "Found jobs but couldn't process AI response. Showing raw results."
	MessageNoJobs        = "No jobs found matching your criteria."
	messageErrorTemplate = "An error occurred: "
)

// ErrorMessage is the user-facing message for a failed run.
func ErrorMessage(err error) string {
	return messageErrorTemplate + err.Error()
}
