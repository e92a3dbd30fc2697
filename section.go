package prdflow

import (
	"time"
)

// =============================================================================
// Section Model
// =============================================================================

// Status is the lifecycle state of a document section.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"

	// StatusStale marks previously completed content that needs
	// re-validation because an upstream dependency was revised.
	StatusStale Status = "stale"
)

// CompletionThreshold is the minimum completion score for a section to
// transition to completed.
const CompletionThreshold = 0.8

// Section is one named subdivision of the document with its own
// checklist and dependency set. Dependencies express staleness edges,
// not execution order; execution order is a separate explicit sequence.
type Section struct {
	Key             string    `json:"key"`
	Content         string    `json:"content,omitempty"`
	Status          Status    `json:"status"`
	CompletionScore float64   `json:"completionScore"`
	LastUpdated     time.Time `json:"lastUpdated,omitempty"`
	Dependencies    []string  `json:"dependencies,omitempty"`
	Checklist       []string  `json:"checklist,omitempty"`
}

// Completable reports whether the score clears the completion bar.
func (s *Section) Completable() bool {
	return s.CompletionScore >= CompletionThreshold
}

// DependsOn reports whether key is a direct dependency of the section.
func (s *Section) DependsOn(key string) bool {
	for _, dep := range s.Dependencies {
		if dep == key {
			return true
		}
	}
	return false
}

// MarkStale flags every completed direct dependent of revisedKey as
// stale and returns the affected keys. Propagation is deliberately one
// level deep: transitive dependents keep their status.
func MarkStale(sections map[string]*Section, revisedKey string) []string {
	var affected []string
	for key, section := range sections {
		if key == revisedKey {
			continue
		}
		if section.Status == StatusCompleted && section.DependsOn(revisedKey) {
			section.Status = StatusStale
			affected = append(affected, key)
		}
	}
	return affected
}
