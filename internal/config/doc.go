// Package config loads application configuration from environment variables
// (SHIPPULSE_ prefix) merged over an optional config.yaml, and resolves the
// filesystem layout via Paths.
package config
