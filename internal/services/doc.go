// Package services contains the business service layer between the HTTP
// transport and the data processing pipeline.
//
// DataService owns the order dataset lifecycle: saving uploads, running the
// feature pipeline, caching the enriched rows, and serving filtered views
// and aggregates. HealthService reports process and dataset health.
package services
