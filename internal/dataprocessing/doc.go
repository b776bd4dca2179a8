// Package dataprocessing implements the order feature pipeline and the
// dashboard aggregation layer.
//
// The pipeline turns a raw uploaded orders file into an enriched table in
// four stages: load (CSV or XLSX into typed records, absorbing cell-level
// parse failures as warnings), clean (categorical "Unknown" fill and median
// imputation of monetary columns), derive (processing, delay and fulfillment
// day counts plus the delayed and late flags), persist (write the enriched
// CSV that the dashboard reads back).
//
// The Summarizer computes the dashboard aggregates over the enriched rows:
// headline KPIs, late-rate and average-delay breakdowns by group column, and
// the monthly performance trend. ApplyFilter narrows the row set before
// aggregation; all aggregates respect the active filter.
package dataprocessing
