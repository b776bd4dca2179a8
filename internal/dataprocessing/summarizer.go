package dataprocessing

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"shippulse/pkg/contracts/domain"
)

// KPIReport is the headline card set of the dashboard. Percentages and
// averages are rounded to two decimal places; nil means the metric had no
// eligible rows under the active filter.
type KPIReport struct {
	TotalOrders     int      `json:"total_orders"`
	OnTimeRatePct   *float64 `json:"on_time_rate_pct"`
	AvgDelayDays    *float64 `json:"avg_delay_days"`
	AvgShippingCost *float64 `json:"avg_shipping_cost"`
	AvgOrderValue   *float64 `json:"avg_order_value"`
}

// GroupMetric is one row of a grouped breakdown.
type GroupMetric struct {
	Group  string  `json:"group"`
	Value  float64 `json:"value"`
	Orders int     `json:"orders"`
}

// TrendPoint is one month of the delivery performance trend.
type TrendPoint struct {
	Month          string   `json:"month"`
	Orders         int      `json:"orders"`
	OnTimeRatePct  *float64 `json:"on_time_rate_pct"`
	AvgFulfillment *float64 `json:"avg_fulfillment_days"`
}

// FilterOptions lists the values the presentation layer offers for each
// filter control, plus the date bounds of the loaded data.
type FilterOptions struct {
	Couriers []string   `json:"couriers"`
	Regions  []string   `json:"regions"`
	MinDate  *time.Time `json:"min_date"`
	MaxDate  *time.Time `json:"max_date"`
}

// Summarizer computes dashboard aggregates over an enriched order set. It is
// stateless; every method takes the (already filtered) rows it should
// aggregate.
type Summarizer struct{}

// NewSummarizer creates a new summarizer.
func NewSummarizer() *Summarizer {
	return &Summarizer{}
}

// KPIs computes the headline metrics. The on-time denominator is the rows
// whose delay status is known; the monetary averages skip rows still missing
// after imputation.
func (s *Summarizer) KPIs(orders []domain.Order) KPIReport {
	report := KPIReport{TotalOrders: len(orders)}

	onTime, known := 0, 0
	var delaySum float64
	delayCount := 0
	var costSum, valueSum float64
	costCount, valueCount := 0, 0

	for i := range orders {
		o := &orders[i]
		if o.IsDelayed != nil {
			known++
			if !*o.IsDelayed {
				onTime++
			}
		}
		if o.DeliveryDelayDays != nil {
			delaySum += float64(*o.DeliveryDelayDays)
			delayCount++
		}
		if o.ShippingCost != nil {
			costSum += *o.ShippingCost
			costCount++
		}
		if o.OrderValue != nil {
			valueSum += *o.OrderValue
			valueCount++
		}
	}

	if known > 0 {
		report.OnTimeRatePct = round2(float64(onTime) / float64(known) * 100)
	}
	if delayCount > 0 {
		report.AvgDelayDays = round2(delaySum / float64(delayCount))
	}
	if costCount > 0 {
		report.AvgShippingCost = round2(costSum / float64(costCount))
	}
	if valueCount > 0 {
		report.AvgOrderValue = round2(valueSum / float64(valueCount))
	}

	return report
}

// RateByGroup computes the delayed fraction (mean of the delay flag, 0 to 1)
// per value of the given group column. Rows with an empty group value or
// unknown delay status are skipped; results are ordered by ascending group
// key. Values are unrounded, presentation decides precision.
func (s *Summarizer) RateByGroup(orders []domain.Order, column string) []GroupMetric {
	type bucket struct {
		delayed int
		known   int
		total   int
	}
	buckets := make(map[string]*bucket)

	for i := range orders {
		o := &orders[i]
		key := o.GroupValue(column)
		if key == "" {
			continue
		}
		b := buckets[key]
		if b == nil {
			b = &bucket{}
			buckets[key] = b
		}
		b.total++
		if o.IsDelayed != nil {
			b.known++
			if *o.IsDelayed {
				b.delayed++
			}
		}
	}

	metrics := make([]GroupMetric, 0, len(buckets))
	for key, b := range buckets {
		if b.known == 0 {
			continue
		}
		metrics = append(metrics, GroupMetric{
			Group:  key,
			Value:  float64(b.delayed) / float64(b.known),
			Orders: b.total,
		})
	}
	sortMetrics(metrics)
	return metrics
}

// AvgDelayByGroup computes the mean delivery delay in days per value of the
// given group column. Skips empty group values and rows with unknown delay.
func (s *Summarizer) AvgDelayByGroup(orders []domain.Order, column string) []GroupMetric {
	type bucket struct {
		sum   float64
		count int
		total int
	}
	buckets := make(map[string]*bucket)

	for i := range orders {
		o := &orders[i]
		key := o.GroupValue(column)
		if key == "" {
			continue
		}
		b := buckets[key]
		if b == nil {
			b = &bucket{}
			buckets[key] = b
		}
		b.total++
		if o.DeliveryDelayDays != nil {
			b.sum += float64(*o.DeliveryDelayDays)
			b.count++
		}
	}

	metrics := make([]GroupMetric, 0, len(buckets))
	for key, b := range buckets {
		if b.count == 0 {
			continue
		}
		metrics = append(metrics, GroupMetric{
			Group:  key,
			Value:  b.sum / float64(b.count),
			Orders: b.total,
		})
	}
	sortMetrics(metrics)
	return metrics
}

// MonthlyTrend computes per-month order counts, on-time percentage and mean
// fulfillment time. Months sort lexically, which for the "2006-01" form is
// chronological. Rows with no order month are skipped.
func (s *Summarizer) MonthlyTrend(orders []domain.Order) []TrendPoint {
	type bucket struct {
		orders       int
		onTime       int
		known        int
		fulfillSum   float64
		fulfillCount int
	}
	buckets := make(map[string]*bucket)

	for i := range orders {
		o := &orders[i]
		if o.OrderMonth == "" {
			continue
		}
		b := buckets[o.OrderMonth]
		if b == nil {
			b = &bucket{}
			buckets[o.OrderMonth] = b
		}
		b.orders++
		if o.IsDelayed != nil {
			b.known++
			if !*o.IsDelayed {
				b.onTime++
			}
		}
		if o.TotalFulfillmentDays != nil {
			b.fulfillSum += float64(*o.TotalFulfillmentDays)
			b.fulfillCount++
		}
	}

	months := make([]string, 0, len(buckets))
	for m := range buckets {
		months = append(months, m)
	}
	sort.Strings(months)

	points := make([]TrendPoint, 0, len(months))
	for _, m := range months {
		b := buckets[m]
		point := TrendPoint{Month: m, Orders: b.orders}
		if b.known > 0 {
			point.OnTimeRatePct = round2(float64(b.onTime) / float64(b.known) * 100)
		}
		if b.fulfillCount > 0 {
			point.AvgFulfillment = round2(b.fulfillSum / float64(b.fulfillCount))
		}
		points = append(points, point)
	}
	return points
}

// Filters lists the distinct courier and region values plus the order date
// bounds of the data set, for populating the dashboard filter controls.
func (s *Summarizer) Filters(orders []domain.Order) FilterOptions {
	couriers := make(map[string]bool)
	regions := make(map[string]bool)
	var min, max *time.Time

	for i := range orders {
		o := &orders[i]
		if o.Courier != "" {
			couriers[o.Courier] = true
		}
		if o.Region != "" {
			regions[o.Region] = true
		}
		if o.OrderDate != nil {
			if min == nil || o.OrderDate.Before(*min) {
				min = o.OrderDate
			}
			if max == nil || o.OrderDate.After(*max) {
				max = o.OrderDate
			}
		}
	}

	return FilterOptions{
		Couriers: sortedKeys(couriers),
		Regions:  sortedKeys(regions),
		MinDate:  min,
		MaxDate:  max,
	}
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortMetrics(metrics []GroupMetric) {
	sort.Slice(metrics, func(i, j int) bool {
		return metrics[i].Group < metrics[j].Group
	})
}

// round2 rounds to two decimal places, half away from zero.
func round2(v float64) *float64 {
	r, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return &r
}
