package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/justsurfingit/job-finder/internal/dtos"
	"github.com/justsurfingit/job-finder/internal/models"
	"github.com/justsurfingit/job-finder/internal/services"
)

const missingCriteriaMessage = "Position and location are required fields"

// SearchService is what the job routes need from the orchestrator.
type SearchService interface {
	StartSearch(criteria models.SearchCriteria) (string, error)
	Status(id string) (models.SearchProgress, error)
}

type JobHandler struct {
	Searches SearchService
}

func NewJobHandler(s SearchService) *JobHandler {
	return &JobHandler{Searches: s}
}

// SearchJobs is the POST /api/search endpoint. It accepts the landing page
// form or a JSON body with the same keys.
func (h *JobHandler) SearchJobs(c *gin.Context) {
	var req dtos.JobSearchRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	id, err := h.Searches.StartSearch(req.Criteria())
	switch {
	case errors.Is(err, services.ErrMissingCriteria):
		c.JSON(http.StatusBadRequest, gin.H{"error": missingCriteriaMessage})
		return
	case errors.Is(err, services.ErrShuttingDown):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, dtos.JobSearchAccepted{
		Message:  "Job search started",
		Status:   "processing",
		SearchID: id,
	})
}

// Status is GET /api/status. Without search_id it reports the latest search.
func (h *JobHandler) Status(c *gin.Context) {
	p, ok := h.lookup(c, c.Query("search_id"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, p)
}

// SearchByID is GET /api/searches/:id.
func (h *JobHandler) SearchByID(c *gin.Context) {
	p, ok := h.lookup(c, c.Param("id"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, p)
}

// Results is GET /api/results. A failed search answers 500 with its error.
func (h *JobHandler) Results(c *gin.Context) {
	p, ok := h.lookup(c, c.Query("search_id"))
	if !ok {
		return
	}
	if p.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": *p.Error})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", p.Results())
}

func (h *JobHandler) lookup(c *gin.Context, id string) (models.SearchProgress, bool) {
	p, err := h.Searches.Status(id)
	if errors.Is(err, services.ErrSearchNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return p, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return p, false
	}
	return p, true
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
