package core

import (
	"github.com/shopspring/decimal"
)

// Warehouse represents a physical storage site. It owns stock rows and orders.
type Warehouse struct {
	ID        int64           `json:"id"`
	Address   string          `json:"address"`
	FloorArea decimal.Decimal `json:"floor_area"`
	Archived  bool            `json:"archived"`
	Timestamps
}

func (w Warehouse) EntityID() int64  { return w.ID }
func (w Warehouse) IsArchived() bool { return w.Archived }

// Category groups products for browsing and filtering.
type Category struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Archived bool   `json:"archived"`
	Timestamps
}

func (c Category) EntityID() int64  { return c.ID }
func (c Category) IsArchived() bool { return c.Archived }

// Product is a catalog item. Price changes are persisted as-is; history is
// kept by the audit sink, not here.
type Product struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Weight     decimal.Decimal `json:"weight"`
	CategoryID int64           `json:"category_id"`
	Archived   bool            `json:"archived"`
	Timestamps
}

func (p Product) EntityID() int64  { return p.ID }
func (p Product) IsArchived() bool { return p.Archived }

// Stock is the quantity of one product held at one warehouse.
// Quantity never drops below zero.
type Stock struct {
	ID          int64 `json:"id"`
	ProductID   int64 `json:"product_id"`
	WarehouseID int64 `json:"warehouse_id"`
	Quantity    int64 `json:"quantity"`
	Archived    bool  `json:"archived"`
	Timestamps
}

func (s Stock) EntityID() int64  { return s.ID }
func (s Stock) IsArchived() bool { return s.Archived }

// WarehouseSummary is the read model for warehouses.
type WarehouseSummary struct {
	Warehouse
	StockRows     int   `json:"stock_rows"`
	TotalQuantity int64 `json:"total_quantity"`
}

// CategorySummary is the read model for categories.
type CategorySummary struct {
	Category
}

// ProductSummary is the read model for products, joined with the category name.
type ProductSummary struct {
	Product
	CategoryName string `json:"category_name"`
}

// StockSummary is the read model for stock rows, joined with product and
// warehouse details.
type StockSummary struct {
	Stock
	ProductName      string          `json:"product_name"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	WarehouseAddress string          `json:"warehouse_address"`
}
