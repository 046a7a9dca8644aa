// Package config loads, normalizes, and validates decant configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// DECANT_DEFAULT_PASSWORD. Each [services.<name>] section describes one
// source directory, its two staging roots, the target library, and the move
// policy used when relocating unpacked output.
//
// Always obtain settings through this package so downstream code receives
// absolute paths and clear validation errors.
package config
