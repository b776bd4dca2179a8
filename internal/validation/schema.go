package validation

import (
	"log/slog"
	"strings"

	"shippulse/internal/errors"
	"shippulse/pkg/contracts/domain"
)

// SchemaValidator checks that an uploaded table carries every required
// column before any other processing touches it. It is a pure check: no
// side effects, no mutation of the input.
type SchemaValidator struct {
	logger *slog.Logger
}

// NewSchemaValidator creates a new schema validator
func NewSchemaValidator(logger *slog.Logger) *SchemaValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &SchemaValidator{logger: logger}
}

// Validate verifies the presence of the required logical column set against
// the raw header row. A logical column counts as present when the header
// contains its canonical name or any accepted alias. On failure the returned
// SchemaError names every missing column, not just the first.
func (v *SchemaValidator) Validate(headers []string) error {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[strings.TrimSpace(h)] = true
	}

	var missing []string
	for _, col := range domain.RequiredColumns {
		if hasColumn(present, col) {
			continue
		}
		missing = append(missing, col)
	}

	if len(missing) > 0 {
		v.logger.Warn("schema validation failed",
			slog.Any("missing_columns", missing),
			slog.Int("header_count", len(headers)))
		return errors.NewSchemaError(missing)
	}

	return nil
}

// hasColumn reports whether a logical column is satisfied by the header set,
// consulting the alias table when one exists.
func hasColumn(present map[string]bool, logical string) bool {
	aliases, ok := domain.ColumnAliases[logical]
	if !ok {
		return present[logical]
	}
	for _, alias := range aliases {
		if present[alias] {
			return true
		}
	}
	return false
}
