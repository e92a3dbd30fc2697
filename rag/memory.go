package rag

import (
	"context"
	"sort"
	"strings"
	"sync"
	"unicode"
)

// Document is raw ingested text plus metadata used for filtering.
type Document struct {
	Content string
	Meta    map[string]string
}

// MemoryRetriever ranks in-process documents by keyword overlap with
// the query. It stands in for a hosted vector store during tests and
// offline use.
type MemoryRetriever struct {
	mu   sync.RWMutex
	docs []Document
}

// NewMemoryRetriever creates an empty retriever.
func NewMemoryRetriever() *MemoryRetriever {
	return &MemoryRetriever{}
}

// Add ingests a document.
func (r *MemoryRetriever) Add(doc Document) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs = append(r.docs, doc)
}

// Len returns the number of ingested documents.
func (r *MemoryRetriever) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.docs)
}

// Retrieve returns up to k passages whose metadata matches filter,
// ranked by term overlap with the query. Documents with no overlapping
// terms are omitted.
func (r *MemoryRetriever) Retrieve(_ context.Context, query string, filter Filter, k int) ([]Passage, error) {
	if k <= 0 {
		k = 5
	}
	terms := tokenize(query)
	if len(terms) == 0 {
		return nil, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Passage
	for _, doc := range r.docs {
		if !matchesFilter(doc.Meta, filter) {
			continue
		}
		score := overlap(terms, tokenize(doc.Content))
		if score == 0 {
			continue
		}
		out = append(out, Passage{
			Content: doc.Content,
			Score:   score,
			Meta:    doc.Meta,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}

func matchesFilter(meta map[string]string, filter Filter) bool {
	for key, want := range filter {
		if meta[key] != want {
			return false
		}
	}
	return true
}

// tokenize lowercases and splits on non-letter/digit runes, dropping
// short stop-ish tokens.
func tokenize(s string) map[string]bool {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	terms := make(map[string]bool, len(fields))
	for _, f := range fields {
		if len(f) >= 3 {
			terms[f] = true
		}
	}
	return terms
}

// overlap scores the fraction of query terms present in the document.
func overlap(query, doc map[string]bool) float64 {
	if len(query) == 0 {
		return 0
	}
	hits := 0
	for t := range query {
		if doc[t] {
			hits++
		}
	}
	return float64(hits) / float64(len(query))
}
