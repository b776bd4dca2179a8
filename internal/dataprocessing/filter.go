package dataprocessing

import (
	"shippulse/pkg/contracts/domain"
)

// ApplyFilter returns the orders matching every populated filter condition.
// The input slice is never mutated.
func ApplyFilter(orders []domain.Order, filter domain.Filter) []domain.Order {
	matched := make([]domain.Order, 0, len(orders))
	for i := range orders {
		if filter.Matches(&orders[i]) {
			matched = append(matched, orders[i])
		}
	}
	return matched
}
