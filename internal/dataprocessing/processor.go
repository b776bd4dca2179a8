package dataprocessing

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"shippulse/internal/exporter"
	"shippulse/internal/infrastructure"
	"shippulse/internal/validation"
	"shippulse/pkg/contracts/domain"
)

// DefaultLateThresholdDays marks an order late when total fulfillment takes
// longer than this many days.
const DefaultLateThresholdDays = 7

// unknownValue substitutes for missing categorical fields after cleaning.
const unknownValue = "Unknown"

// PipelineConfig holds configuration options for the feature pipeline.
type PipelineConfig struct {
	LateThresholdDays int
}

// DefaultPipelineConfig returns the default pipeline configuration.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{LateThresholdDays: DefaultLateThresholdDays}
}

// Pipeline runs the full prepare flow over an uploaded orders file:
// load, clean, derive, persist. It holds no state between runs; every
// invocation reprocesses its input from scratch.
type Pipeline struct {
	logger        *slog.Logger
	validator     *validation.SchemaValidator
	writer        *exporter.CSVWriter
	lateThreshold int
}

// NewPipeline creates a new feature pipeline.
func NewPipeline(logger *slog.Logger, config PipelineConfig) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if config.LateThresholdDays <= 0 {
		config.LateThresholdDays = DefaultLateThresholdDays
	}
	return &Pipeline{
		logger:        logger,
		validator:     validation.NewSchemaValidator(logger),
		writer:        exporter.NewCSVWriter(logger),
		lateThreshold: config.LateThresholdDays,
	}
}

// PrepareStats summarizes one pipeline run.
type PrepareStats struct {
	Rows                int `json:"rows"`
	Warnings            int `json:"warnings"`
	ImputedShippingCost int `json:"imputed_shipping_cost"`
	ImputedOrderValue   int `json:"imputed_order_value"`
}

// Prepare runs the full pipeline: read the raw file, validate its schema,
// clean and enrich every row, then persist the enriched table to dstPath
// (overwriting prior content). The enriched records are returned to the
// caller. Schema failures halt before any derived column is computed.
func (p *Pipeline) Prepare(ctx context.Context, srcPath, dstPath string) ([]domain.Order, *PrepareStats, error) {
	ctx, span := infrastructure.Tracer().Start(ctx, "pipeline.prepare")
	defer span.End()

	table, err := ReadTable(srcPath)
	if err != nil {
		return nil, nil, err
	}

	if err := p.validator.Validate(table.Headers); err != nil {
		infrastructure.SchemaRejectionsTotal.Inc()
		return nil, nil, err
	}

	loaded := ParseOrders(table, LoadOptions{})
	stats := &PrepareStats{
		Rows:     len(loaded.Orders),
		Warnings: loaded.Warnings,
	}

	orders := loaded.Orders
	p.Clean(ctx, orders, stats)
	p.Derive(ctx, orders)

	if err := p.writer.WriteOrders(dstPath, orders); err != nil {
		return nil, nil, err
	}

	infrastructure.OrdersProcessedTotal.Add(float64(stats.Rows))
	infrastructure.DataQualityWarningsTotal.Add(float64(stats.Warnings))

	span.SetAttributes(
		attribute.Int("orders.rows", stats.Rows),
		attribute.Int("orders.warnings", stats.Warnings),
	)

	p.logger.InfoContext(ctx, "pipeline run complete",
		slog.String("source", srcPath),
		slog.String("destination", dstPath),
		slog.Int("rows", stats.Rows),
		slog.Int("warnings", stats.Warnings),
		slog.Int("imputed_shipping_cost", stats.ImputedShippingCost),
		slog.Int("imputed_order_value", stats.ImputedOrderValue))

	return orders, stats, nil
}

// Clean normalizes categorical fields and imputes missing monetary values in
// place. Text fields are trimmed at load time; here empty values become
// "Unknown". ShippingCost and OrderValue get the column median of the valid
// values.
func (p *Pipeline) Clean(ctx context.Context, orders []domain.Order, stats *PrepareStats) {
	_, span := infrastructure.Tracer().Start(ctx, "pipeline.clean")
	defer span.End()

	for i := range orders {
		if orders[i].CustomerID == "" {
			orders[i].CustomerID = unknownValue
		}
		if orders[i].Region == "" {
			orders[i].Region = unknownValue
		}
		if orders[i].Courier == "" {
			orders[i].Courier = unknownValue
		}
		if orders[i].Status == "" {
			orders[i].Status = unknownValue
		}
	}

	imputedCost := p.imputeMedian(ctx, orders, domain.ColumnShippingCost)
	imputedValue := p.imputeMedian(ctx, orders, domain.ColumnOrderValue)
	if stats != nil {
		stats.ImputedShippingCost = imputedCost
		stats.ImputedOrderValue = imputedValue
	}
}

// imputeMedian fills missing values of one monetary column with the median of
// the valid values. A column with no valid values at all stays missing and is
// logged as a warning.
func (p *Pipeline) imputeMedian(ctx context.Context, orders []domain.Order, column string) int {
	field := func(o *domain.Order) **float64 {
		if column == domain.ColumnShippingCost {
			return &o.ShippingCost
		}
		return &o.OrderValue
	}

	valid := make([]float64, 0, len(orders))
	for i := range orders {
		if v := *field(&orders[i]); v != nil {
			valid = append(valid, *v)
		}
	}

	if len(valid) == 0 {
		missing := 0
		for i := range orders {
			if *field(&orders[i]) == nil {
				missing++
			}
		}
		if missing > 0 {
			p.logger.WarnContext(ctx, "no valid values to impute from, leaving column missing",
				slog.String("column", column),
				slog.Int("missing_rows", missing))
		}
		return 0
	}

	median := medianOf(valid)
	imputed := 0
	for i := range orders {
		if *field(&orders[i]) == nil {
			v := median
			*field(&orders[i]) = &v
			imputed++
		}
	}
	return imputed
}

// medianOf returns the true median: the middle value for odd counts, the
// mean of the two middle values for even counts.
func medianOf(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// Derive computes the fulfillment-timing features in place. Day differences
// are whole days; a missing endpoint date propagates as a missing derived
// field rather than defaulting to zero.
func (p *Pipeline) Derive(ctx context.Context, orders []domain.Order) {
	_, span := infrastructure.Tracer().Start(ctx, "pipeline.derive")
	defer span.End()

	for i := range orders {
		o := &orders[i]

		o.ProcessingDays = daysBetween(o.OrderDate, o.ShipDate)
		o.DeliveryDelayDays = daysBetween(o.ShipDate, o.DeliveryDate)
		o.TotalFulfillmentDays = daysBetween(o.OrderDate, o.DeliveryDate)

		if o.DeliveryDelayDays != nil {
			delayed := *o.DeliveryDelayDays > 0
			o.IsDelayed = &delayed
		} else {
			o.IsDelayed = nil
		}

		if o.TotalFulfillmentDays != nil {
			late := *o.TotalFulfillmentDays > p.lateThreshold
			o.LateDelivery = &late
		} else {
			o.LateDelivery = nil
		}

		if o.OrderDate != nil {
			o.OrderMonth = o.OrderDate.Format("2006-01")
		} else {
			o.OrderMonth = ""
		}
	}
}

// daysBetween returns the whole-day difference to minus from, nil when either
// endpoint is missing. Negative differences are kept as-is.
func daysBetween(from, to *time.Time) *int {
	if from == nil || to == nil {
		return nil
	}
	days := int(to.Sub(*from) / (24 * time.Hour))
	return &days
}
