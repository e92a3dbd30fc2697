package prdflow

import (
	"context"
	"time"

	"github.com/randalmurphal/prdflow/flow"
	"github.com/randalmurphal/prdflow/llm"
	"github.com/randalmurphal/prdflow/prompt"
	"github.com/randalmurphal/prdflow/rag"
	"github.com/randalmurphal/prdflow/task"
)

// =============================================================================
// Context Injection Helpers
// =============================================================================
// These helpers inject prdflow services into context.Context for use by
// workflow stages.

// serviceContextKey is a private type for context keys to avoid collisions
type serviceContextKey string

const (
	llmServiceKey       serviceContextKey = "prdflow.llm"
	retrieverServiceKey serviceContextKey = "prdflow.retriever"
	promptServiceKey    serviceContextKey = "prdflow.prompts"
	catalogServiceKey   serviceContextKey = "prdflow.catalog"
	tuningServiceKey    serviceContextKey = "prdflow.tuning"
	modelsServiceKey    serviceContextKey = "prdflow.models"
)

// Tuning carries the timing and threshold knobs for a workflow run.
type Tuning struct {
	// AssemblerCooldown is the minimum gap between document assembly
	// passes. Requests inside the window are dropped, not queued.
	AssemblerCooldown time.Duration

	// SummaryInterval is the turn count between conversation summary
	// refreshes.
	SummaryInterval int

	// MaxIterations bounds stage executions per engine run.
	MaxIterations int
}

// DefaultTuning returns the standard knob values.
func DefaultTuning() Tuning {
	return Tuning{
		AssemblerCooldown: 5 * time.Second,
		SummaryInterval:   6,
		MaxIterations:     flow.DefaultMaxIterations,
	}
}

// WithLLM adds an LLM client to the context.
func WithLLM(ctx context.Context, client llm.Client) context.Context {
	return context.WithValue(ctx, llmServiceKey, client)
}

// LLM extracts the LLM client from context.
func LLM(ctx context.Context) llm.Client {
	if client, ok := ctx.Value(llmServiceKey).(llm.Client); ok {
		return client
	}
	return nil
}

// MustLLM extracts the LLM client or panics.
func MustLLM(ctx context.Context) llm.Client {
	client := LLM(ctx)
	if client == nil {
		panic("prdflow: llm.Client not found in context")
	}
	return client
}

// WithRetriever adds a passage retriever to the context.
func WithRetriever(ctx context.Context, retriever rag.Retriever) context.Context {
	return context.WithValue(ctx, retrieverServiceKey, retriever)
}

// Retriever extracts the passage retriever from context.
// Returns nil when retrieval is not configured.
func Retriever(ctx context.Context) rag.Retriever {
	if retriever, ok := ctx.Value(retrieverServiceKey).(rag.Retriever); ok {
		return retriever
	}
	return nil
}

// WithPrompts adds a prompt loader to the context.
func WithPrompts(ctx context.Context, loader *prompt.Loader) context.Context {
	return context.WithValue(ctx, promptServiceKey, loader)
}

// Prompts extracts the prompt loader from context.
func Prompts(ctx context.Context) *prompt.Loader {
	if loader, ok := ctx.Value(promptServiceKey).(*prompt.Loader); ok {
		return loader
	}
	return nil
}

// MustPrompts extracts the prompt loader or panics.
func MustPrompts(ctx context.Context) *prompt.Loader {
	loader := Prompts(ctx)
	if loader == nil {
		panic("prdflow: prompt.Loader not found in context")
	}
	return loader
}

// WithCatalog adds a section catalog to the context.
func WithCatalog(ctx context.Context, catalog *Catalog) context.Context {
	return context.WithValue(ctx, catalogServiceKey, catalog)
}

// CatalogFrom extracts the section catalog from context, falling back
// to the built-in catalog.
func CatalogFrom(ctx context.Context) *Catalog {
	if catalog, ok := ctx.Value(catalogServiceKey).(*Catalog); ok {
		return catalog
	}
	return DefaultCatalog()
}

// WithTuning adds tuning knobs to the context.
func WithTuning(ctx context.Context, tuning Tuning) context.Context {
	return context.WithValue(ctx, tuningServiceKey, tuning)
}

// TuningFrom extracts tuning knobs from context, falling back to the
// defaults.
func TuningFrom(ctx context.Context) Tuning {
	if tuning, ok := ctx.Value(tuningServiceKey).(Tuning); ok {
		return tuning
	}
	return DefaultTuning()
}

// WithModels adds a model selector to the context.
func WithModels(ctx context.Context, selector *task.ModelSelector) context.Context {
	return context.WithValue(ctx, modelsServiceKey, selector)
}

// Models extracts the model selector from context, falling back to the
// default selector.
func Models(ctx context.Context) *task.ModelSelector {
	if selector, ok := ctx.Value(modelsServiceKey).(*task.ModelSelector); ok {
		return selector
	}
	return task.DefaultModelSelector()
}
