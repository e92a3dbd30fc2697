// Package config provides hierarchical configuration resolution for prdflow.
//
// This package supports layered configuration with clear precedence:
//  1. Environment variables (highest priority)
//  2. Local config (.prdflow.yaml in git root)
//  3. Global config (~/.config/prdflow/config.yaml)
//  4. Built-in defaults (lowest priority)
//
// # Basic Usage
//
// Most callers want the typed settings:
//
//	settings, warnings := config.LoadSettings()
//	for _, w := range warnings {
//	    log.Println(w)
//	}
//	fmt.Println(settings.ClaudeBinary)
//
// The generic resolver underneath is reusable for other key sets:
//
//	resolver := config.NewResolver(config.ResolverConfig{
//	    EnvPrefix:       "PRDFLOW_",
//	    GlobalConfigDir: "prdflow",
//	    LocalConfigName: ".prdflow.yaml",
//	    Defaults:        map[string]string{"log_level": "info"},
//	})
//	cfg := resolver.Resolve()
//	fmt.Println(cfg.Get("log_level"), cfg.Source("log_level"))
//
// # Environment Variables
//
// Environment variables are detected using the configured prefix:
//
//	PRDFLOW_MODEL=claude-opus        # sets "model"
//	PRDFLOW_CHECKPOINT_PATH=prd.db   # sets "checkpoint_path"
//
// # Config Sources
//
// Each resolved value tracks where it came from:
//   - "default": Built-in default value
//   - "global": ~/.config/prdflow/config.yaml
//   - "local": .prdflow.yaml in git root
//   - "env": Environment variable
package config
