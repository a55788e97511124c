package core

import (
	"github.com/shopspring/decimal"
)

// OrderStatus is a named order state. An order references exactly one
// status; changing it overwrites the reference.
type OrderStatus struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Archived bool   `json:"archived"`
	Timestamps
}

func (s OrderStatus) EntityID() int64  { return s.ID }
func (s OrderStatus) IsArchived() bool { return s.Archived }

// Order is the header of a placed order. TotalPrice is always the sum of the
// line totals and is never edited on its own.
type Order struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"user_id"`
	EmployeeID  *int64          `json:"employee_id,omitempty"`
	WarehouseID int64           `json:"warehouse_id"`
	StatusID    int64           `json:"status_id"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	Archived    bool            `json:"archived"`
	Timestamps
}

func (o Order) EntityID() int64  { return o.ID }
func (o Order) IsArchived() bool { return o.Archived }

// OrderLine is one product on an order. UnitPrice is the product price
// captured when the order was placed; later price changes do not touch it.
type OrderLine struct {
	ID        int64           `json:"id"`
	OrderID   int64           `json:"order_id"`
	ProductID int64           `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// OrderLineSummary is an order line joined with the product name.
type OrderLineSummary struct {
	OrderLine
	ProductName string `json:"product_name"`
}

// OrderSummary is the read model returned by every order operation.
type OrderSummary struct {
	Order
	StatusName       string             `json:"status_name"`
	UserLogin        string             `json:"user_login"`
	EmployeeName     string             `json:"employee_name,omitempty"`
	WarehouseAddress string             `json:"warehouse_address"`
	Lines            []OrderLineSummary `json:"lines"`
}

// OrderStatusSummary is the read model for order statuses.
type OrderStatusSummary struct {
	OrderStatus
}

// PlaceOrderRequest is the input of the placement engine.
type PlaceOrderRequest struct {
	WarehouseID int64              `json:"warehouse_id" jsonschema:"required,minimum=1"`
	UserID      int64              `json:"user_id" jsonschema:"required,minimum=1"`
	Lines       []OrderLineRequest `json:"lines" jsonschema:"required,minItems=1"`
}

// OrderLineRequest asks for Quantity units of one product.
type OrderLineRequest struct {
	ProductID int64 `json:"product_id" jsonschema:"required,minimum=1"`
	Quantity  int64 `json:"quantity" jsonschema:"required,minimum=1"`
}
