// Package config loads, normalizes, and validates the pipeline's TOML run
// configuration, plus the optional YAML documents for externally managed
// source lists and trending keyword tables.
package config
