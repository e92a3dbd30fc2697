package task

import (
	"github.com/randalmurphal/llmkit/model"
)

// Type represents the kind of work a workflow stage is asking the model
// to do. This determines which model tier is appropriate.
type Type string

const (
	// Document-shaping tasks - need reasoning
	Plan   Type = "plan"
	Refine Type = "refine"

	// Standard drafting tasks - default tier
	Normalize Type = "normalize"
	Question  Type = "question"
	Update    Type = "update"

	// Fast tasks - can use smaller models
	Classify    Type = "classify"
	Summarize   Type = "summarize"
	Substantive Type = "substantive"
)

// DefaultModelMap maps task types to default models.
var DefaultModelMap = map[Type]model.ModelName{
	Plan:        model.ModelOpus,
	Refine:      model.ModelOpus,
	Normalize:   model.ModelSonnet,
	Question:    model.ModelSonnet,
	Update:      model.ModelSonnet,
	Classify:    model.ModelHaiku,
	Summarize:   model.ModelHaiku,
	Substantive: model.ModelHaiku,
}

// TierForTask returns the appropriate tier for a task type.
func TierForTask(t Type) model.Tier {
	switch t {
	case Plan, Refine:
		return model.TierThinking
	case Classify, Summarize, Substantive:
		return model.TierFast
	default:
		return model.TierDefault
	}
}

// ModelSelector picks a model per task type, with optional overrides on
// top of the default map.
type ModelSelector struct {
	overrides map[Type]model.ModelName
	selector  *model.Selector
}

// DefaultModelSelector returns a selector with no overrides.
func DefaultModelSelector() *ModelSelector {
	return NewModelSelector(nil)
}

// NewModelSelector creates a selector with per-task model overrides.
func NewModelSelector(overrides map[Type]model.ModelName, opts ...model.SelectorOption) *ModelSelector {
	allOpts := append([]model.SelectorOption{
		model.WithTierFunc(func(task any) model.Tier {
			if t, ok := task.(Type); ok {
				return TierForTask(t)
			}
			return model.TierDefault
		}),
	}, opts...)

	return &ModelSelector{
		overrides: overrides,
		selector:  model.NewSelector(allOpts...),
	}
}

// Model returns the model for a task type.
func (s *ModelSelector) Model(t Type) model.ModelName {
	if m, ok := s.overrides[t]; ok {
		return m
	}
	if m, ok := DefaultModelMap[t]; ok {
		return m
	}
	switch TierForTask(t) {
	case model.TierThinking:
		return model.ModelOpus
	case model.TierFast:
		return model.ModelHaiku
	default:
		return model.ModelSonnet
	}
}

// Tier returns the tier for a task type.
func (s *ModelSelector) Tier(t Type) model.Tier {
	return TierForTask(t)
}
