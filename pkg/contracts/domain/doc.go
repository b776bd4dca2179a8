// Package domain defines the order record shared across the loader, the
// feature pipeline, the aggregation layer and the API, plus the logical
// column names, the header alias table and the dashboard filter.
package domain
