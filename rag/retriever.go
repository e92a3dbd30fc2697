// Package rag defines the context-retrieval capability boundary.
// Retrieval is optional everywhere: a nil retriever or an empty result
// set yields an empty context string and must not break any stage.
package rag

import (
	"context"
	"strings"
)

// Passage is one ranked piece of retrieved text.
type Passage struct {
	Content string            `json:"content"`
	Source  string            `json:"source,omitempty"`
	Score   float64           `json:"score"`
	Meta    map[string]string `json:"meta,omitempty"`
}

// Filter restricts retrieval by metadata, e.g. {"session_id": id}.
type Filter map[string]string

// Retriever returns the k best passages for a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, filter Filter, k int) ([]Passage, error)
}

// ContextString folds passages into the single context block stages
// consume. Empty input yields "".
func ContextString(passages []Passage) string {
	if len(passages) == 0 {
		return ""
	}
	parts := make([]string, 0, len(passages))
	for _, p := range passages {
		if strings.TrimSpace(p.Content) != "" {
			parts = append(parts, p.Content)
		}
	}
	return strings.Join(parts, "\n\n")
}
