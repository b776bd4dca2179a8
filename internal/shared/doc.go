// Package shared holds cross-cutting utilities that belong to no single
// domain layer. Currently that is the testutil subpackage: log capture
// helpers and order fixture builders used by tests across the codebase.
package shared
