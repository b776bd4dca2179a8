// Package http contains the HTTP transport layer: chi routers and handlers
// for order uploads, the enriched order listing and download, the dashboard
// aggregates, and health. Errors render as RFC 7807 problem details.
package http
