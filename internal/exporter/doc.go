// Package exporter writes enriched order datasets to CSV files.
package exporter
