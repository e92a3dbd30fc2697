// Package task provides task-based model selection for LLM operations.
//
// Core types:
//   - Type: Kind of work a stage performs (classify, update, refine, etc.)
//   - ModelSelector: Selects appropriate model based on task type
//
// Tiers:
//   - Thinking: document planning and refinement
//   - Default: drafting and section updates
//   - Fast: classification, gating, summarization
//
// Example usage:
//
//	selector := task.NewModelSelector(map[task.Type]model.ModelName{
//	    task.Update: model.ModelOpus,
//	})
//	m := selector.Model(task.Classify)
package task
