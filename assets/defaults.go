// Package assets embeds the files nlsh writes or reads on first run.
package assets

import (
	_ "embed"
)

// DefaultConfigYAML contains the embedded default configuration.
//
//go:embed defaults/config.yaml
var DefaultConfigYAML []byte

// DefaultSafetyRulesYAML contains the built-in safety rules.
//
//go:embed defaults/safety_rules.yaml
var DefaultSafetyRulesYAML []byte
