// Package infrastructure provides the shared observability plumbing: the
// slog-based JSON logger with trace ID correlation, OpenTelemetry tracing
// setup, and the Prometheus pipeline metrics.
package infrastructure
