package dtos

import (
	"strings"

	"github.com/justsurfingit/job-finder/internal/models"
)

// JobSearchRequest is the body of POST /api/search. The landing page posts
// a form; API clients may post JSON with the same keys.
type JobSearchRequest struct {
	Position   string `form:"position" json:"position"`
	Location   string `form:"location" json:"location"`
	Experience string `form:"experience" json:"experience"`
	Salary     string `form:"salary" json:"salary"`
	JobNature  string `form:"jobNature" json:"jobNature"`
	Skills     string `form:"skills" json:"skills"`
}

func (r JobSearchRequest) Criteria() models.SearchCriteria {
	return models.SearchCriteria{
		Position:   strings.TrimSpace(r.Position),
		Location:   strings.TrimSpace(r.Location),
		Experience: strings.TrimSpace(r.Experience),
		Salary:     strings.TrimSpace(r.Salary),
		JobNature:  strings.TrimSpace(r.JobNature),
		Skills:     strings.TrimSpace(r.Skills),
	}
}

type JobSearchAccepted struct {
	Message  string `json:"message"`
	Status   string `json:"status"`
	SearchID string `json:"search_id"`
}
