package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"shippulse/internal/errors"
	"shippulse/pkg/contracts/domain"
)

// OrderHeaders is the column order of a processed orders file. Raw columns
// first, derived columns after, matching the layout the dashboard reads back.
var OrderHeaders = []string{
	domain.ColumnOrderID,
	domain.ColumnCustomerID,
	domain.ColumnOrderDate,
	domain.ColumnShipDate,
	domain.ColumnDeliveryDate,
	domain.ColumnRegion,
	domain.ColumnCourier,
	domain.ColumnStatus,
	domain.ColumnShippingCost,
	domain.ColumnOrderValue,
	domain.ColumnProcessingDays,
	domain.ColumnDeliveryDelayDays,
	domain.ColumnTotalFulfillmentDays,
	domain.ColumnIsDelayed,
	domain.ColumnLateDelivery,
	domain.ColumnOrderMonth,
}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	Append    bool
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes data to a CSV file with the given options
func (w *CSVWriter) WriteCSV(path string, options WriteOptions) error {
	w.logger.Info("writing CSV file",
		slog.String("path", path),
		slog.Int("record_count", len(options.Records)))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewStorageError("failed to create directory", err).
			WithContext("path", path)
	}

	flags := os.O_CREATE | os.O_WRONLY
	if options.Append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	file, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return errors.NewStorageError("failed to open file", err).
			WithContext("path", path)
	}
	defer file.Close()

	// BOM helps Excel recognize UTF-8
	if options.BOMPrefix && !options.Append {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return errors.NewStorageError("failed to write BOM", err).
				WithContext("path", path)
		}
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if !options.Append && len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return errors.NewStorageError("failed to write headers", err).
				WithContext("path", path)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return errors.NewStorageError(
				fmt.Sprintf("failed to write record %d", i), err).
				WithContext("path", path)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return errors.NewStorageError("failed to flush CSV writer", err).
			WithContext("path", path)
	}

	return nil
}

// WriteOrders persists enriched order records to path, replacing any previous
// content. Dates use ISO form so the file round-trips through the loader;
// missing values serialize as empty cells.
func (w *CSVWriter) WriteOrders(path string, orders []domain.Order) error {
	records := make([][]string, 0, len(orders))
	for i := range orders {
		records = append(records, orderRecord(&orders[i]))
	}

	return w.WriteCSV(path, WriteOptions{
		Headers: OrderHeaders,
		Records: records,
	})
}

func orderRecord(o *domain.Order) []string {
	return []string{
		o.OrderID,
		o.CustomerID,
		formatDate(o.OrderDate),
		formatDate(o.ShipDate),
		formatDate(o.DeliveryDate),
		o.Region,
		o.Courier,
		o.Status,
		formatAmount(o.ShippingCost),
		formatAmount(o.OrderValue),
		formatInt(o.ProcessingDays),
		formatInt(o.DeliveryDelayDays),
		formatInt(o.TotalFulfillmentDays),
		formatBool(o.IsDelayed),
		formatBool(o.LateDelivery),
		o.OrderMonth,
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatAmount(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatBool(v *bool) string {
	if v == nil {
		return ""
	}
	return strconv.FormatBool(*v)
}
