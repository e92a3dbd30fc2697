// Package prompt provides prompt template loading and management.
//
// Core types:
//   - Loader: Loads prompt templates from files or embedded resources
//   - Builder: Constructs prompts programmatically from parts
//
// Example usage:
//
//	loader := prompt.NewLoader(projectDir)
//	text, err := loader.LoadWithVars("update-section", map[string]any{
//	    "SectionTitle": "Problem Statement",
//	    "UserInput":    input,
//	})
package prompt
