// Package validation checks uploaded order tables against the required
// column set before the pipeline touches them.
package validation
