// Package middleware provides the HTTP middleware chain: request ID and
// trace correlation, structured request logging, panic recovery, rate
// limiting, timeouts and security headers.
package middleware
