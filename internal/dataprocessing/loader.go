package dataprocessing

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"shippulse/internal/errors"
	"shippulse/pkg/contracts/domain"
)

// Table is a raw tabular file held in memory: one header row and the data
// rows below it. The dataset is small enough to reprocess synchronously per
// interaction, so there is no streaming path.
type Table struct {
	Headers []string
	Rows    [][]string
}

// dayFirstDateFormats are tried in order when parsing date cells. Uploads use
// a day-first locale format; the ISO form covers re-reading our own processed
// output.
var dayFirstDateFormats = []string{
	"02/01/2006",
	"02-01-2006",
	"2/1/2006",
	"2-1-2006",
	"2006-01-02",
}

// ReadTable reads a CSV or XLSX file into a Table. XLSX files use the first
// sheet. An unreadable source is a storage error, fatal for the operation.
func ReadTable(path string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return readXLSXTable(path)
	default:
		return readCSVTable(path)
	}
}

func readCSVTable(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.NewStorageError("failed to open orders file", err).
			WithContext("path", path)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // ragged rows are a data quality issue, not a parse failure

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.NewParsingError("failed to parse CSV", err).
			WithContext("path", path)
	}
	if len(rows) == 0 {
		return &Table{}, nil
	}

	headers := rows[0]
	if len(headers) > 0 {
		// Strip a UTF-8 BOM left by spreadsheet exports
		headers[0] = strings.TrimPrefix(headers[0], "\uFEFF")
	}

	return &Table{Headers: headers, Rows: rows[1:]}, nil
}

func readXLSXTable(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.NewStorageError("failed to open orders workbook", err).
			WithContext("path", path)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.NewParsingError("workbook has no sheets", nil).
			WithContext("path", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.NewParsingError("failed to read worksheet", err).
			WithContext("path", path)
	}
	if len(rows) == 0 {
		return &Table{}, nil
	}

	return &Table{Headers: rows[0], Rows: rows[1:]}, nil
}

// LoadOptions controls how raw rows become order records.
type LoadOptions struct {
	// SynthesizeCustomerID fills a missing customer column with a 1-based
	// sequence over row order. Used when re-reading processed files; the
	// strict pipeline path relies on schema validation instead.
	SynthesizeCustomerID bool
}

// LoadResult carries the parsed orders plus the count of row-level data
// quality issues that were absorbed (unparseable dates, non-numeric amounts).
type LoadResult struct {
	Orders   []domain.Order
	Warnings int
}

// columnIndex resolves the position of each logical column in the header,
// consulting the alias table in priority order. Missing columns resolve to -1.
func columnIndex(headers []string) map[string]int {
	position := make(map[string]int, len(headers))
	for i, h := range headers {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF"))
		if _, seen := position[name]; !seen {
			position[name] = i
		}
	}

	index := make(map[string]int)
	logical := append([]string{}, domain.RequiredColumns...)
	logical = append(logical, domain.ColumnStatus)

	for _, col := range logical {
		index[col] = -1
		aliases, ok := domain.ColumnAliases[col]
		if !ok {
			aliases = []string{col}
		}
		for _, alias := range aliases {
			if pos, found := position[alias]; found {
				index[col] = pos
				break
			}
		}
	}

	return index
}

// ParseOrders converts raw table rows into order records. Cell-level parse
// failures never reject a row: bad dates and amounts become missing values
// and are counted as warnings.
func ParseOrders(table *Table, opts LoadOptions) *LoadResult {
	index := columnIndex(table.Headers)
	result := &LoadResult{Orders: make([]domain.Order, 0, len(table.Rows))}

	for i, row := range table.Rows {
		cell := func(col string) string {
			pos := index[col]
			if pos < 0 || pos >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[pos])
		}

		order := domain.Order{
			OrderID:    cell(domain.ColumnOrderID),
			CustomerID: cell(domain.ColumnCustomerID),
			Region:     cell(domain.ColumnRegion),
			Courier:    cell(domain.ColumnCourier),
			Status:     cell(domain.ColumnStatus),
		}

		if order.CustomerID == "" && opts.SynthesizeCustomerID {
			order.CustomerID = strconv.Itoa(i + 1)
		}

		order.OrderDate = parseDateCell(cell(domain.ColumnOrderDate), &result.Warnings)
		order.ShipDate = parseDateCell(cell(domain.ColumnShipDate), &result.Warnings)
		order.DeliveryDate = parseDateCell(cell(domain.ColumnDeliveryDate), &result.Warnings)

		order.ShippingCost = parseAmountCell(cell(domain.ColumnShippingCost), &result.Warnings)
		order.OrderValue = parseAmountCell(cell(domain.ColumnOrderValue), &result.Warnings)

		result.Orders = append(result.Orders, order)
	}

	return result
}

// parseDateCell parses a date cell using the day-first formats. An empty cell
// is simply missing; a non-empty unparseable cell is missing plus a warning.
func parseDateCell(raw string, warnings *int) *time.Time {
	if raw == "" {
		return nil
	}
	for _, format := range dayFirstDateFormats {
		if t, err := time.Parse(format, raw); err == nil {
			return &t
		}
	}
	*warnings++
	return nil
}

// parseAmountCell parses a non-negative numeric cell, tolerating thousands
// separators. Negative amounts are treated as data quality issues.
func parseAmountCell(raw string, warnings *int) *float64 {
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil || v < 0 {
		*warnings++
		return nil
	}
	return &v
}
