package services

import (
	"sync"
	"time"

	"github.com/justsurfingit/job-finder/internal/models"
)

const defaultRetainedSearches = 50

// ProgressStore keeps one progress record per search. The most recently
// started search is "latest" and backs the ID-less endpoints, so two quick
// submissions resolve last-writer-wins.
type ProgressStore struct {
	mu      sync.RWMutex
	records map[string]*models.SearchProgress
	order   []string
	latest  string
	retain  int
	clock   func() time.Time
}

func NewProgressStore(retain int) *ProgressStore {
	if retain <= 0 {
		retain = defaultRetainedSearches
	}
	return &ProgressStore{
		records: make(map[string]*models.SearchProgress),
		retain:  retain,
		clock:   time.Now,
	}
}

// Begin resets the record for id to its zero state, marks it running and
// makes it the latest search.
func (s *ProgressStore) Begin(id string) models.SearchProgress {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := models.NewSearchProgress(id)
	p.IsRunning = true
	now := s.clock()
	p.StartedAt = &now

	if _, exists := s.records[id]; !exists {
		s.order = append(s.order, id)
	}
	s.records[id] = &p
	s.latest = id
	s.evictLocked()

	return snapshot(&p)
}

// Update applies fn to the record for id under the write lock. It reports
// false when the record is gone.
func (s *ProgressStore) Update(id string, fn func(p *models.SearchProgress)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.records[id]
	if !ok {
		return false
	}
	fn(p)
	return true
}

// Get returns a copy of the record for id.
func (s *ProgressStore) Get(id string) (models.SearchProgress, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.records[id]
	if !ok {
		return models.SearchProgress{}, false
	}
	return snapshot(p), true
}

// Latest returns a copy of the most recently started search, or the
// not-started record when nothing has run yet.
func (s *ProgressStore) Latest() models.SearchProgress {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.records[s.latest]; ok {
		return snapshot(p)
	}
	return models.NewSearchProgress("")
}

// evictLocked drops the oldest finished records beyond the retention limit.
func (s *ProgressStore) evictLocked() {
	for i := 0; len(s.records) > s.retain && i < len(s.order); {
		id := s.order[i]
		if p := s.records[id]; id == s.latest || (p != nil && p.IsRunning) {
			i++
			continue
		}
		delete(s.records, id)
		s.order = append(s.order[:i], s.order[i+1:]...)
	}
}

func snapshot(p *models.SearchProgress) models.SearchProgress {
	out := *p
	if p.Error != nil {
		msg := *p.Error
		out.Error = &msg
	}
	if p.StartedAt != nil {
		t := *p.StartedAt
		out.StartedAt = &t
	}
	if p.FinishedAt != nil {
		t := *p.FinishedAt
		out.FinishedAt = &t
	}
	// Result bytes are replaced, never mutated, so sharing them is safe.
	return out
}
