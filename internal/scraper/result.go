package scraper

import "github.com/justsurfingit/job-finder/internal/models"

// Outcome tells "found nothing" apart from "could not look".
type Outcome int

const (
	OutcomeFound Outcome = iota
	OutcomeEmpty
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFound:
		return "found"
	case OutcomeEmpty:
		return "empty"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is what one extraction run produced.
type Result struct {
	Outcome  Outcome
	Listings []models.JobListing
	Err      error // set only when Outcome is OutcomeFailed
}

func Found(listings []models.JobListing) Result {
	if len(listings) == 0 {
		return Empty()
	}
	return Result{Outcome: OutcomeFound, Listings: listings}
}

func Empty() Result {
	return Result{Outcome: OutcomeEmpty}
}

func Failed(err error) Result {
	return Result{Outcome: OutcomeFailed, Err: err}
}
