// Package errors provides the application error taxonomy and RFC 7807
// problem-details rendering for the HTTP layer.
//
// Three error shapes exist:
//
//   - AppError: internal errors with a type tag (SCHEMA, PARSING, STORAGE,
//     VALIDATION, NOT_FOUND, CONFIG) and optional context
//   - SchemaError: an upload missing required columns, carrying the full
//     missing set
//   - APIError: transport-level errors with an HTTP status and error code
//
// ErrorHandler converts any of them (or an unknown error) into an RFC 7807
// ProblemDetails response, logging each failure with its trace ID.
package errors
