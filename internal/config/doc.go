// Package config loads, normalizes, and validates the TOML configuration for
// the audesc engine.
//
// Load resolves an explicit path, a project-local audesc.toml, or the default
// ~/.config/audesc/config.toml, applies defaults for anything unset, expands
// tildes, and rejects unusable values before any component sees the config.
package config
