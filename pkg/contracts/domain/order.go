package domain

import (
	"time"
)

// Order represents a single fulfillment order row. Raw fields come from the
// uploaded file; derived fields are computed by the feature pipeline and are
// never user-supplied. Nullable fields use pointers so that missing values
// propagate through aggregation instead of collapsing to zero.
type Order struct {
	OrderID    string `json:"order_id" csv:"OrderID"`
	CustomerID string `json:"customer_id" csv:"CustomerID"`

	Region  string `json:"region" csv:"Region"`
	Courier string `json:"courier" csv:"Courier"`
	Status  string `json:"status" csv:"Status"`

	OrderDate    *time.Time `json:"order_date" csv:"OrderDate"`
	ShipDate     *time.Time `json:"ship_date" csv:"ShipDate"`
	DeliveryDate *time.Time `json:"delivery_date" csv:"DeliveryDate"`

	ShippingCost *float64 `json:"shipping_cost" csv:"ShippingCost"`
	OrderValue   *float64 `json:"order_value" csv:"OrderValue"`

	// Derived fields
	ProcessingDays       *int   `json:"processing_days" csv:"ProcessingDays"`
	DeliveryDelayDays    *int   `json:"delivery_delay_days" csv:"DeliveryDelay_Days"`
	TotalFulfillmentDays *int   `json:"total_fulfillment_days" csv:"TotalFulfillmentDays"`
	IsDelayed            *bool  `json:"is_delayed" csv:"IsDelayed"`
	LateDelivery         *bool  `json:"late_delivery" csv:"LateDelivery"`
	OrderMonth           string `json:"order_month" csv:"OrderMonth"`
}

// GroupValue returns the value of a categorical group column by logical name.
// Returns the zero string for columns that are not groupable.
func (o *Order) GroupValue(column string) string {
	switch column {
	case ColumnCourier:
		return o.Courier
	case ColumnRegion:
		return o.Region
	case ColumnStatus:
		return o.Status
	case ColumnOrderMonth:
		return o.OrderMonth
	}
	return ""
}

// Logical column names shared by the schema validator, the loader and the
// aggregation layer.
const (
	ColumnOrderID      = "OrderID"
	ColumnCustomerID   = "CustomerID"
	ColumnOrderDate    = "OrderDate"
	ColumnShipDate     = "ShipDate"
	ColumnDeliveryDate = "DeliveryDate"
	ColumnRegion       = "Region"
	ColumnCourier      = "Courier"
	ColumnStatus       = "Status"
	ColumnShippingCost = "ShippingCost"
	ColumnOrderValue   = "OrderValue"

	ColumnProcessingDays       = "ProcessingDays"
	ColumnDeliveryDelayDays    = "DeliveryDelay_Days"
	ColumnTotalFulfillmentDays = "TotalFulfillmentDays"
	ColumnIsDelayed            = "IsDelayed"
	ColumnLateDelivery         = "LateDelivery"
	ColumnOrderMonth           = "OrderMonth"
)

// RequiredColumns is the fixed set of logical columns an upload must provide.
// Status is optional.
var RequiredColumns = []string{
	ColumnOrderID,
	ColumnCustomerID,
	ColumnOrderDate,
	ColumnShipDate,
	ColumnDeliveryDate,
	ColumnRegion,
	ColumnCourier,
	ColumnShippingCost,
	ColumnOrderValue,
}

// ColumnAliases maps a logical column name to the accepted raw header
// spellings, in priority order; the first match wins during load.
var ColumnAliases = map[string][]string{
	ColumnCustomerID: {"Customer Id", "customer_id", "CustomerID"},
}

// AllSentinel disables a courier or region filter.
const AllSentinel = "All"

// Filter narrows the enriched table before aggregation. All populated
// conditions apply conjunctively. Nil bounds leave that side of the date
// range open; rows with no parseable OrderDate are excluded whenever either
// bound is set.
type Filter struct {
	From    *time.Time
	To      *time.Time
	Courier string
	Region  string
}

// Matches reports whether the order satisfies every populated condition.
func (f Filter) Matches(o *Order) bool {
	if f.From != nil || f.To != nil {
		if o.OrderDate == nil {
			return false
		}
		if f.From != nil && o.OrderDate.Before(*f.From) {
			return false
		}
		if f.To != nil && o.OrderDate.After(*f.To) {
			return false
		}
	}
	if f.Courier != "" && f.Courier != AllSentinel && o.Courier != f.Courier {
		return false
	}
	if f.Region != "" && f.Region != AllSentinel && o.Region != f.Region {
		return false
	}
	return true
}
