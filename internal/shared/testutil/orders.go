package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// OrdersCSVHeader is the canonical header row of a raw orders upload.
const OrdersCSVHeader = "OrderID,CustomerID,OrderDate,ShipDate,DeliveryDate,Region,Courier,Status,ShippingCost,OrderValue"

// WriteOrdersCSV writes a raw orders CSV into dir and returns its path.
// Rows are given without the header, which is prepended automatically.
func WriteOrdersCSV(t *testing.T, dir string, rows ...string) string {
	t.Helper()
	content := OrdersCSVHeader + "\n" + strings.Join(rows, "\n") + "\n"
	return WriteFile(t, dir, "orders.csv", content)
}

// WriteFile writes content to name inside dir and returns the full path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
