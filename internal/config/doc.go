// Package config loads, normalizes, and validates tutorec configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// TUTOREC_FFMPEG. The Config type centralizes every knob the daemon and CLI
// need, so staging/export directories and encoder settings are discovered in
// one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
