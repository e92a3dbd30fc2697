package rag

import (
	"context"
	"testing"
)

func seeded() *MemoryRetriever {
	r := NewMemoryRetriever()
	r.Add(Document{
		Content: "Nurses handle medication schedules across hospital shifts",
		Meta:    map[string]string{"source": "research"},
	})
	r.Add(Document{
		Content: "Medication errors spike during shift handoffs",
		Meta:    map[string]string{"source": "research"},
	})
	r.Add(Document{
		Content: "Quarterly revenue grew by twelve percent",
		Meta:    map[string]string{"source": "finance"},
	})
	return r
}

func TestMemoryRetriever_RanksByOverlap(t *testing.T) {
	r := seeded()

	passages, err := r.Retrieve(context.Background(), "medication errors during shifts", nil, 5)
	if err != nil {
		t.Fatalf("Retrieve() error: %v", err)
	}
	if len(passages) == 0 {
		t.Fatal("Retrieve() returned no passages")
	}
	for i := 1; i < len(passages); i++ {
		if passages[i].Score > passages[i-1].Score {
			t.Errorf("passages not sorted by score: %v then %v",
				passages[i-1].Score, passages[i].Score)
		}
	}
	// The finance document shares no terms and must be absent.
	for _, p := range passages {
		if p.Meta["source"] == "finance" {
			t.Errorf("irrelevant document retrieved: %q", p.Content)
		}
	}
}

func TestMemoryRetriever_Filter(t *testing.T) {
	r := seeded()

	passages, err := r.Retrieve(context.Background(), "medication shifts revenue",
		Filter{"source": "finance"}, 5)
	if err != nil {
		t.Fatalf("Retrieve() error: %v", err)
	}
	for _, p := range passages {
		if p.Meta["source"] != "finance" {
			t.Errorf("filter leaked document from %q", p.Meta["source"])
		}
	}
}

func TestMemoryRetriever_TopK(t *testing.T) {
	r := seeded()

	passages, err := r.Retrieve(context.Background(), "medication shifts hospital", nil, 1)
	if err != nil {
		t.Fatalf("Retrieve() error: %v", err)
	}
	if len(passages) > 1 {
		t.Errorf("Retrieve() returned %d passages, want at most 1", len(passages))
	}
}

func TestMemoryRetriever_EmptyQuery(t *testing.T) {
	r := seeded()

	passages, err := r.Retrieve(context.Background(), "a an is", nil, 5)
	if err != nil {
		t.Fatalf("Retrieve() error: %v", err)
	}
	if len(passages) != 0 {
		t.Errorf("Retrieve() on stop-word query returned %d passages", len(passages))
	}
}

func TestContextString(t *testing.T) {
	got := ContextString([]Passage{
		{Content: "first"},
		{Content: "second"},
	})
	if got != "first\n\nsecond" {
		t.Errorf("ContextString() = %q", got)
	}
	if ContextString(nil) != "" {
		t.Error("ContextString(nil) should be empty")
	}
}
