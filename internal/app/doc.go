// Package app wires the application together: configuration, logging,
// tracing, the service layer, the chi router with its middleware chain, and
// the HTTP server lifecycle with graceful shutdown.
package app
