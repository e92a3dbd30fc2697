package config

import (
	"strconv"
	"time"
)

// Configuration keys recognized by prdflow.
const (
	KeyModel             = "model"
	KeyClaudeBinary      = "claude_binary"
	KeyCheckpointPath    = "checkpoint_path"
	KeyPromptDir         = "prompt_dir"
	KeyCatalogPath       = "catalog_path"
	KeyAssemblerCooldown = "assembler_cooldown"
	KeySummaryInterval   = "summary_interval"
	KeyLogLevel          = "log_level"
)

// Defaults for prdflow configuration.
var prdflowDefaults = map[string]string{
	KeyModel:             "",
	KeyClaudeBinary:      "claude",
	KeyCheckpointPath:    "",
	KeyPromptDir:         "",
	KeyCatalogPath:       "",
	KeyAssemblerCooldown: "5s",
	KeySummaryInterval:   "6",
	KeyLogLevel:          "info",
}

// NewPRDResolver creates the resolver for prdflow's own configuration:
// PRDFLOW_* environment variables over .prdflow.yaml in the git root
// over ~/.config/prdflow/config.yaml over built-in defaults.
func NewPRDResolver() *Resolver {
	return NewResolver(ResolverConfig{
		EnvPrefix:       "PRDFLOW_",
		GlobalConfigDir: "prdflow",
		LocalConfigName: ".prdflow.yaml",
		Defaults:        prdflowDefaults,
	})
}

// Settings is the typed view of resolved prdflow configuration.
type Settings struct {
	// Model overrides the default model for every task tier.
	Model string

	// ClaudeBinary is the claude CLI binary path.
	ClaudeBinary string

	// CheckpointPath is the SQLite checkpoint database path. Empty
	// selects the in-memory store.
	CheckpointPath string

	// PromptDir is an extra directory searched for prompt templates.
	PromptDir string

	// CatalogPath points to a YAML section-catalog override.
	CatalogPath string

	AssemblerCooldown time.Duration
	SummaryInterval   int
	LogLevel          string
}

// LoadSettings resolves and types the prdflow configuration. Malformed
// values fall back to their defaults and are reported as warnings.
func LoadSettings() (Settings, []string) {
	return settingsFrom(NewPRDResolver())
}

func settingsFrom(resolver *Resolver) (Settings, []string) {
	resolved := resolver.Resolve()
	warnings := append([]string(nil), resolver.Warnings...)

	s := Settings{
		Model:          resolved.Get(KeyModel),
		ClaudeBinary:   resolved.Get(KeyClaudeBinary),
		CheckpointPath: resolved.Get(KeyCheckpointPath),
		PromptDir:      resolved.Get(KeyPromptDir),
		CatalogPath:    resolved.Get(KeyCatalogPath),
		LogLevel:       resolved.Get(KeyLogLevel),
	}

	cooldown, err := time.ParseDuration(resolved.Get(KeyAssemblerCooldown))
	if err != nil {
		warnings = append(warnings, "invalid "+KeyAssemblerCooldown+": "+resolved.Get(KeyAssemblerCooldown))
		cooldown, _ = time.ParseDuration(prdflowDefaults[KeyAssemblerCooldown])
	}
	s.AssemblerCooldown = cooldown

	interval, err := strconv.Atoi(resolved.Get(KeySummaryInterval))
	if err != nil || interval < 0 {
		warnings = append(warnings, "invalid "+KeySummaryInterval+": "+resolved.Get(KeySummaryInterval))
		interval, _ = strconv.Atoi(prdflowDefaults[KeySummaryInterval])
	}
	s.SummaryInterval = interval

	return s, warnings
}
