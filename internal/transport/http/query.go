package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	apierrors "shippulse/internal/errors"
	"shippulse/pkg/contracts/domain"
)

// defaultListLimit caps the orders preview when no limit parameter is given.
const defaultListLimit = 20

// validate is shared across handlers; validator instances cache struct
// metadata and are safe for concurrent use.
var validate = validator.New()

// filterQuery carries the raw dashboard filter query parameters before they
// become a domain filter. Dates use ISO form in the query string.
type filterQuery struct {
	From    string `validate:"omitempty,datetime=2006-01-02"`
	To      string `validate:"omitempty,datetime=2006-01-02"`
	Courier string `validate:"omitempty,max=100"`
	Region  string `validate:"omitempty,max=100"`
}

// groupQuery validates the group-by column of the breakdown endpoints.
type groupQuery struct {
	By string `validate:"omitempty,oneof=Courier Region Status"`
}

// parseFilter builds the domain filter from query parameters. An invalid
// parameter yields a field-level validation error for the API layer.
func parseFilter(r *http.Request) (domain.Filter, *apierrors.APIError) {
	q := r.URL.Query()
	raw := filterQuery{
		From:    q.Get("from"),
		To:      q.Get("to"),
		Courier: q.Get("courier"),
		Region:  q.Get("region"),
	}

	if err := validate.Struct(raw); err != nil {
		for _, fieldErr := range err.(validator.ValidationErrors) {
			switch fieldErr.Field() {
			case "From":
				return domain.Filter{}, apierrors.ErrValidation("from", "must be a date in YYYY-MM-DD form")
			case "To":
				return domain.Filter{}, apierrors.ErrValidation("to", "must be a date in YYYY-MM-DD form")
			case "Courier":
				return domain.Filter{}, apierrors.ErrValidation("courier", "value too long")
			case "Region":
				return domain.Filter{}, apierrors.ErrValidation("region", "value too long")
			}
		}
		return domain.Filter{}, apierrors.ErrValidationFailed
	}

	filter := domain.Filter{
		Courier: raw.Courier,
		Region:  raw.Region,
	}
	if raw.From != "" {
		t, _ := time.Parse("2006-01-02", raw.From)
		filter.From = &t
	}
	if raw.To != "" {
		t, _ := time.Parse("2006-01-02", raw.To)
		filter.To = &t
	}

	return filter, nil
}

// parseLimit resolves the row cap of the orders listing. Absent means the
// default preview size; limit=0 disables the cap for full exports.
func parseLimit(r *http.Request) (int, *apierrors.APIError) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultListLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apierrors.ErrValidation("limit", "must be a non-negative integer")
	}
	return n, nil
}

// parseGroupColumn resolves the group-by column of a breakdown request.
// Defaults to Courier when absent.
func parseGroupColumn(r *http.Request) (string, *apierrors.APIError) {
	raw := groupQuery{By: r.URL.Query().Get("by")}
	if err := validate.Struct(raw); err != nil {
		return "", apierrors.ErrValidation("by", "must be one of Courier, Region, Status")
	}
	if raw.By == "" {
		return domain.ColumnCourier, nil
	}
	return raw.By, nil
}
