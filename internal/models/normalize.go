package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// NormalizeResult turns a published result into typed entries. It accepts
// both the scraped listing shape and the model's shape, and unwraps an
// object holding a single list (the model sometimes answers
// {"matches": [...]}).
func NormalizeResult(raw json.RawMessage) ([]MatchedJob, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var entries []map[string]any
	if err := json.Unmarshal(raw, &entries); err != nil {
		var wrapper map[string]json.RawMessage
		if err2 := json.Unmarshal(raw, &wrapper); err2 != nil {
			return nil, fmt.Errorf("models: result is neither a list nor an object: %w", err)
		}
		found := false
		for _, v := range wrapper {
			if err := json.Unmarshal(v, &entries); err == nil {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("models: result object holds no job list")
		}
	}

	jobs := make([]MatchedJob, 0, len(entries))
	for _, e := range entries {
		job := MatchedJob{
			Title:              pick(e, "job_title", "title"),
			Company:            pick(e, "company_name", "company"),
			Location:           pick(e, "location"),
			Description:        pick(e, "description", "job_description"),
			Salary:             pick(e, "salary"),
			JobType:            pick(e, "job_type"),
			ExperienceRequired: pick(e, "experience_required"),
			ApplyLink:          pick(e, "apply_link"),
			SkillsRequired:     pickList(e, "skills_required"),
		}
		if v, ok := e["match_score"].(float64); ok {
			score := v
			job.MatchScore = &score
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func pick(e map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := e[k].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func pickList(e map[string]any, key string) []string {
	switch v := e[key].(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		var out []string
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return nil
}
