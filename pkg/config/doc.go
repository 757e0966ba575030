// Package config handles configuration management for stackops.
// It supports loading configuration from multiple sources including
// TOML files, environment variables, and command-line flags.
//
// Precedence, lowest first:
//
//  1. embedded defaults (embedded/defaults.toml)
//  2. the config file (--config, else /etc/stackops/stackops.toml if present)
//  3. STACKOPS_* environment variables, "_" mapping to "."
//  4. command line overrides
package config
