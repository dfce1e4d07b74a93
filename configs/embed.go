// Package configs provides the embedded configuration template for
// pocketbible.
//
// The template is embedded at build time so `pocketbible config init` works
// from source builds and binary releases alike. Its values must match
// config.NewConfig(); a test enforces this.
package configs

import _ "embed"

// UserConfigTemplate is the commented user configuration written by
// `pocketbible config init` at ~/.config/pocketbible/config.yaml.
//
//go:embed user-config.example.yaml
var UserConfigTemplate string
