package core

import (
	"github.com/shopspring/decimal"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 200
)

// ListFilter is the paging contract shared by every listing.
// A zero Page or PageSize falls back to the defaults.
type ListFilter struct {
	Page            int  `json:"page"`
	PageSize        int  `json:"page_size"`
	IncludeArchived bool `json:"include_archived"`
}

// Normalize applies defaults and validates the paging bounds. A zero page
// or page size means "not supplied"; page sizes above MaxPageSize are
// clamped.
func (f ListFilter) Normalize() (ListFilter, error) {
	if f.Page == 0 {
		f.Page = 1
	}
	if f.PageSize == 0 {
		f.PageSize = DefaultPageSize
	}
	if f.Page < 1 {
		return f, Validation("page", "page must be >= 1, got %d", f.Page)
	}
	if f.PageSize < 1 {
		return f, Validation("page_size", "page size must be > 0, got %d", f.PageSize)
	}
	f.PageSize = min(f.PageSize, MaxPageSize)
	return f, nil
}

// Offset is the number of rows skipped before the requested page.
func (f ListFilter) Offset() int { return (f.Page - 1) * f.PageSize }

// Filter narrows a listing. Entity filters embed ListFilter and contribute
// their own predicates.
type Filter interface {
	Paging() ListFilter
	Predicates() []Predicate
}

func (f ListFilter) Paging() ListFilter      { return f }
func (f ListFilter) Predicates() []Predicate { return nil }

// Op is a predicate operator understood by every store.
type Op string

const (
	OpEq       Op = "eq"
	OpContains Op = "contains"
	OpGte      Op = "gte"
	OpLte      Op = "lte"
)

// Predicate restricts one field. Field names are checked against the
// entity's column whitelist by the store.
type Predicate struct {
	Field string
	Op    Op
	Value any
}

func Eq(field string, v any) Predicate { return Predicate{Field: field, Op: OpEq, Value: v} }
func Contains(field string, s string) Predicate {
	return Predicate{Field: field, Op: OpContains, Value: s}
}
func Gte(field string, v any) Predicate { return Predicate{Field: field, Op: OpGte, Value: v} }
func Lte(field string, v any) Predicate { return Predicate{Field: field, Op: OpLte, Value: v} }

// Query is what the framework hands to a store table.
type Query struct {
	Predicates      []Predicate
	IncludeArchived bool
	Limit           int
	Offset          int
}

// PagedResult echoes the paging input next to the slice and the total count
// of rows matching the filter.
type PagedResult[S any] struct {
	Items    []S `json:"items"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Total    int `json:"total"`
}

// Pages is the number of pages needed for Total rows.
func (r PagedResult[S]) Pages() int {
	if r.PageSize == 0 {
		return 0
	}
	return (r.Total + r.PageSize - 1) / r.PageSize
}

// ── Entity filters ───────────────────────────────────────────────────────────

type WarehouseFilter struct {
	ListFilter
	AddressContains string           `json:"address_contains"`
	MinFloorArea    *decimal.Decimal `json:"min_floor_area"`
}

func (f WarehouseFilter) Predicates() []Predicate {
	var p []Predicate
	if f.AddressContains != "" {
		p = append(p, Contains("address", f.AddressContains))
	}
	if f.MinFloorArea != nil {
		p = append(p, Gte("floor_area", *f.MinFloorArea))
	}
	return p
}

type CategoryFilter struct {
	ListFilter
	NameContains string `json:"name_contains"`
}

func (f CategoryFilter) Predicates() []Predicate {
	if f.NameContains == "" {
		return nil
	}
	return []Predicate{Contains("name", f.NameContains)}
}

type ProductFilter struct {
	ListFilter
	NameContains string           `json:"name_contains"`
	CategoryID   *int64           `json:"category_id"`
	MinPrice     *decimal.Decimal `json:"min_price"`
	MaxPrice     *decimal.Decimal `json:"max_price"`
}

func (f ProductFilter) Predicates() []Predicate {
	var p []Predicate
	if f.NameContains != "" {
		p = append(p, Contains("name", f.NameContains))
	}
	if f.CategoryID != nil {
		p = append(p, Eq("category_id", *f.CategoryID))
	}
	if f.MinPrice != nil {
		p = append(p, Gte("price", *f.MinPrice))
	}
	if f.MaxPrice != nil {
		p = append(p, Lte("price", *f.MaxPrice))
	}
	return p
}

type StockFilter struct {
	ListFilter
	ProductID   *int64 `json:"product_id"`
	WarehouseID *int64 `json:"warehouse_id"`
	MinQuantity *int64 `json:"min_quantity"`
}

func (f StockFilter) Predicates() []Predicate {
	var p []Predicate
	if f.ProductID != nil {
		p = append(p, Eq("product_id", *f.ProductID))
	}
	if f.WarehouseID != nil {
		p = append(p, Eq("warehouse_id", *f.WarehouseID))
	}
	if f.MinQuantity != nil {
		p = append(p, Gte("quantity", *f.MinQuantity))
	}
	return p
}

type OrderFilter struct {
	ListFilter
	WarehouseID *int64 `json:"warehouse_id"`
	UserID      *int64 `json:"user_id"`
	EmployeeID  *int64 `json:"employee_id"`
	StatusID    *int64 `json:"status_id"`
}

func (f OrderFilter) Predicates() []Predicate {
	var p []Predicate
	if f.WarehouseID != nil {
		p = append(p, Eq("warehouse_id", *f.WarehouseID))
	}
	if f.UserID != nil {
		p = append(p, Eq("user_id", *f.UserID))
	}
	if f.EmployeeID != nil {
		p = append(p, Eq("employee_id", *f.EmployeeID))
	}
	if f.StatusID != nil {
		p = append(p, Eq("status_id", *f.StatusID))
	}
	return p
}

type StatusFilter struct {
	ListFilter
	NameContains string `json:"name_contains"`
}

func (f StatusFilter) Predicates() []Predicate {
	if f.NameContains == "" {
		return nil
	}
	return []Predicate{Contains("name", f.NameContains)}
}

type EmployeeFilter struct {
	ListFilter
	NameContains string `json:"name_contains"`
	WarehouseID  *int64 `json:"warehouse_id"`
}

func (f EmployeeFilter) Predicates() []Predicate {
	var p []Predicate
	if f.NameContains != "" {
		p = append(p, Contains("last_name", f.NameContains))
	}
	if f.WarehouseID != nil {
		p = append(p, Eq("warehouse_id", *f.WarehouseID))
	}
	return p
}

type UserFilter struct {
	ListFilter
	LoginContains string `json:"login_contains"`
	Role          string `json:"role"`
}

func (f UserFilter) Predicates() []Predicate {
	var p []Predicate
	if f.LoginContains != "" {
		p = append(p, Contains("login", f.LoginContains))
	}
	if f.Role != "" {
		p = append(p, Eq("role", f.Role))
	}
	return p
}
