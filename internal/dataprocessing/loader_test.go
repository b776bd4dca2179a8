package dataprocessing

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"shippulse/pkg/contracts/domain"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "orders.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReadTable_CSV(t *testing.T) {
	path := writeCSV(t, "OrderID,Region\nO1,North\nO2,South\n")

	table, err := ReadTable(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"OrderID", "Region"}, table.Headers)
	assert.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"O2", "South"}, table.Rows[1])
}

func TestReadTable_StripsBOM(t *testing.T) {
	path := writeCSV(t, "\uFEFF"+"OrderID,Region\nO1,North\n")

	table, err := ReadTable(path)
	require.NoError(t, err)
	assert.Equal(t, "OrderID", table.Headers[0])
}

func TestReadTable_EmptyFile(t *testing.T) {
	path := writeCSV(t, "")

	table, err := ReadTable(path)
	require.NoError(t, err)
	assert.Empty(t, table.Headers)
	assert.Empty(t, table.Rows)
}

func TestReadTable_MissingFile(t *testing.T) {
	_, err := ReadTable(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}

func TestReadTable_XLSXMatchesCSV(t *testing.T) {
	rows := [][]string{
		{"OrderID", "CustomerID", "OrderDate", "ShipDate", "DeliveryDate", "Region", "Courier", "ShippingCost", "OrderValue"},
		{"O1", "C1", "05/01/2024", "07/01/2024", "10/01/2024", "North", "FastShip", "4.50", "120.00"},
		{"O2", "C2", "06/01/2024", "", "not-a-date", "South", "SlowBoat", "1,200.50", ""},
	}

	dir := t.TempDir()

	csvPath := filepath.Join(dir, "orders.csv")
	csvFile, err := os.Create(csvPath)
	require.NoError(t, err)
	require.NoError(t, csv.NewWriter(csvFile).WriteAll(rows))
	require.NoError(t, csvFile.Close())

	xlsxPath := filepath.Join(dir, "orders.xlsx")
	wb := excelize.NewFile()
	sheet := wb.GetSheetName(0)
	for i, row := range rows {
		for j, value := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, wb.SetCellStr(sheet, cell, value))
		}
	}
	require.NoError(t, wb.SaveAs(xlsxPath))
	require.NoError(t, wb.Close())

	csvTable, err := ReadTable(csvPath)
	require.NoError(t, err)
	xlsxTable, err := ReadTable(xlsxPath)
	require.NoError(t, err)

	assert.Equal(t, csvTable.Headers, xlsxTable.Headers)

	fromCSV := ParseOrders(csvTable, LoadOptions{})
	fromXLSX := ParseOrders(xlsxTable, LoadOptions{})

	assert.Equal(t, fromCSV.Orders, fromXLSX.Orders, "both formats must yield the same records")
	assert.Equal(t, fromCSV.Warnings, fromXLSX.Warnings)

	require.Len(t, fromXLSX.Orders, 2)
	require.NotNil(t, fromXLSX.Orders[0].OrderDate)
	assert.True(t, fromXLSX.Orders[0].OrderDate.Equal(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)))
	require.NotNil(t, fromXLSX.Orders[1].ShippingCost)
	assert.InDelta(t, 1200.50, *fromXLSX.Orders[1].ShippingCost, 0.001)
}

func TestParseOrders_DayFirstDates(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{"slash day first", "05/01/2024", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)},
		{"dash day first", "13-02-2024", time.Date(2024, 2, 13, 0, 0, 0, 0, time.UTC)},
		{"no zero padding", "5/1/2024", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)},
		{"iso fallback", "2024-01-05", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := &Table{
				Headers: []string{"OrderID", "OrderDate"},
				Rows:    [][]string{{"O1", tt.raw}},
			}
			result := ParseOrders(table, LoadOptions{})
			require.Len(t, result.Orders, 1)
			require.NotNil(t, result.Orders[0].OrderDate)
			assert.True(t, result.Orders[0].OrderDate.Equal(tt.want))
			assert.Zero(t, result.Warnings)
		})
	}
}

func TestParseOrders_BadCellsBecomeWarnings(t *testing.T) {
	table := &Table{
		Headers: []string{"OrderID", "OrderDate", "ShippingCost", "OrderValue"},
		Rows: [][]string{
			{"O1", "not-a-date", "abc", "-5"},
			{"O2", "", "", ""},
		},
	}

	result := ParseOrders(table, LoadOptions{})
	require.Len(t, result.Orders, 2)

	// Bad non-empty cells each count once
	assert.Equal(t, 3, result.Warnings)
	assert.Nil(t, result.Orders[0].OrderDate)
	assert.Nil(t, result.Orders[0].ShippingCost)
	assert.Nil(t, result.Orders[0].OrderValue)

	// Empty cells are silently missing
	assert.Nil(t, result.Orders[1].OrderDate)
	assert.Nil(t, result.Orders[1].ShippingCost)
}

func TestParseOrders_ThousandsSeparators(t *testing.T) {
	table := &Table{
		Headers: []string{"OrderID", "OrderValue"},
		Rows:    [][]string{{"O1", "1,234.50"}},
	}

	result := ParseOrders(table, LoadOptions{})
	require.NotNil(t, result.Orders[0].OrderValue)
	assert.InDelta(t, 1234.50, *result.Orders[0].OrderValue, 0.001)
}

func TestParseOrders_CustomerIDAlias(t *testing.T) {
	table := &Table{
		Headers: []string{"OrderID", "Customer Id"},
		Rows:    [][]string{{"O1", "C42"}},
	}

	result := ParseOrders(table, LoadOptions{})
	assert.Equal(t, "C42", result.Orders[0].CustomerID)
}

func TestParseOrders_SynthesizeCustomerID(t *testing.T) {
	table := &Table{
		Headers: []string{"OrderID"},
		Rows:    [][]string{{"O1"}, {"O2"}, {"O3"}},
	}

	strict := ParseOrders(table, LoadOptions{})
	assert.Empty(t, strict.Orders[0].CustomerID)

	synth := ParseOrders(table, LoadOptions{SynthesizeCustomerID: true})
	assert.Equal(t, "1", synth.Orders[0].CustomerID)
	assert.Equal(t, "3", synth.Orders[2].CustomerID)
}

func TestParseOrders_RaggedRows(t *testing.T) {
	table := &Table{
		Headers: []string{"OrderID", "Region", "Courier"},
		Rows:    [][]string{{"O1", "North"}},
	}

	result := ParseOrders(table, LoadOptions{})
	require.Len(t, result.Orders, 1)
	assert.Equal(t, "North", result.Orders[0].Region)
	assert.Empty(t, result.Orders[0].Courier)
}

func TestParseOrders_TrimsCells(t *testing.T) {
	table := &Table{
		Headers: []string{"OrderID", "Courier"},
		Rows:    [][]string{{" O1 ", "  FastShip  "}},
	}

	result := ParseOrders(table, LoadOptions{})
	assert.Equal(t, "O1", result.Orders[0].OrderID)
	assert.Equal(t, "FastShip", result.Orders[0].Courier)
}

func TestColumnIndex_FirstAliasWins(t *testing.T) {
	index := columnIndex([]string{"CustomerID", "customer_id", "OrderID"})
	assert.Equal(t, 1, index[domain.ColumnCustomerID], "alias priority outranks header position")
	assert.Equal(t, 2, index[domain.ColumnOrderID])
	assert.Equal(t, -1, index[domain.ColumnRegion])
}
