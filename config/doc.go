// Package config provides unified configuration loading for the engine,
// supporting YAML files with environment variable overrides.
package config
