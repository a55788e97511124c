package sqlstore

import (
	"strings"

	"warehouse-backend/internal/core"
)

// colKind tells the query builder how to compare a filterable column.
type colKind int

const (
	colInt colKind = iota
	colText
	colDecimal
)

// schema maps an entity type to its table. Every entity table has id,
// archived, created_at and updated_at; columns lists the rest in the order
// values and the middle of targets use.
type schema[T any] struct {
	table   string
	columns []string
	// filters whitelists the predicate fields a listing may use.
	filters map[string]colKind
	values  func(*T) []any
	targets func(*T) []any
	id      func(*T) *int64
	meta    func(*T) (*bool, *core.Timestamps)
}

func (s *schema[T]) selectList() string {
	return "id, " + strings.Join(s.columns, ", ") + ", archived, created_at, updated_at"
}

// scanTargets returns pointers for a row in selectList order.
func (s *schema[T]) scanTargets(row *T) []any {
	archived, ts := s.meta(row)
	dest := append([]any{s.id(row)}, s.targets(row)...)
	return append(dest, archived, &ts.CreatedAt, &ts.UpdatedAt)
}

var warehouseSchema = &schema[core.Warehouse]{
	table:   "warehouses",
	columns: []string{"address", "floor_area"},
	filters: map[string]colKind{"address": colText, "floor_area": colDecimal},
	values:  func(w *core.Warehouse) []any { return []any{w.Address, w.FloorArea} },
	targets: func(w *core.Warehouse) []any { return []any{&w.Address, &w.FloorArea} },
	id:      func(w *core.Warehouse) *int64 { return &w.ID },
	meta:    func(w *core.Warehouse) (*bool, *core.Timestamps) { return &w.Archived, &w.Timestamps },
}

var categorySchema = &schema[core.Category]{
	table:   "categories",
	columns: []string{"name"},
	filters: map[string]colKind{"name": colText},
	values:  func(c *core.Category) []any { return []any{c.Name} },
	targets: func(c *core.Category) []any { return []any{&c.Name} },
	id:      func(c *core.Category) *int64 { return &c.ID },
	meta:    func(c *core.Category) (*bool, *core.Timestamps) { return &c.Archived, &c.Timestamps },
}

var productSchema = &schema[core.Product]{
	table:   "products",
	columns: []string{"name", "price", "weight", "category_id"},
	filters: map[string]colKind{
		"name":        colText,
		"price":       colDecimal,
		"weight":      colDecimal,
		"category_id": colInt,
	},
	values:  func(p *core.Product) []any { return []any{p.Name, p.Price, p.Weight, p.CategoryID} },
	targets: func(p *core.Product) []any { return []any{&p.Name, &p.Price, &p.Weight, &p.CategoryID} },
	id:      func(p *core.Product) *int64 { return &p.ID },
	meta:    func(p *core.Product) (*bool, *core.Timestamps) { return &p.Archived, &p.Timestamps },
}

var stockSchema = &schema[core.Stock]{
	table:   "stock",
	columns: []string{"product_id", "warehouse_id", "quantity"},
	filters: map[string]colKind{"product_id": colInt, "warehouse_id": colInt, "quantity": colInt},
	values:  func(s *core.Stock) []any { return []any{s.ProductID, s.WarehouseID, s.Quantity} },
	targets: func(s *core.Stock) []any { return []any{&s.ProductID, &s.WarehouseID, &s.Quantity} },
	id:      func(s *core.Stock) *int64 { return &s.ID },
	meta:    func(s *core.Stock) (*bool, *core.Timestamps) { return &s.Archived, &s.Timestamps },
}

var statusSchema = &schema[core.OrderStatus]{
	table:   "order_statuses",
	columns: []string{"name"},
	filters: map[string]colKind{"name": colText},
	values:  func(s *core.OrderStatus) []any { return []any{s.Name} },
	targets: func(s *core.OrderStatus) []any { return []any{&s.Name} },
	id:      func(s *core.OrderStatus) *int64 { return &s.ID },
	meta:    func(s *core.OrderStatus) (*bool, *core.Timestamps) { return &s.Archived, &s.Timestamps },
}

var employeeSchema = &schema[core.Employee]{
	table:   "employees",
	columns: []string{"first_name", "last_name", "position", "warehouse_id"},
	filters: map[string]colKind{"last_name": colText, "first_name": colText, "warehouse_id": colInt},
	values: func(e *core.Employee) []any {
		return []any{e.FirstName, e.LastName, e.Position, e.WarehouseID}
	},
	targets: func(e *core.Employee) []any {
		return []any{&e.FirstName, &e.LastName, &e.Position, &e.WarehouseID}
	},
	id:   func(e *core.Employee) *int64 { return &e.ID },
	meta: func(e *core.Employee) (*bool, *core.Timestamps) { return &e.Archived, &e.Timestamps },
}

var userSchema = &schema[core.User]{
	table:   "users",
	columns: []string{"login", "email", "role"},
	filters: map[string]colKind{"login": colText, "email": colText, "role": colText},
	values:  func(u *core.User) []any { return []any{u.Login, u.Email, u.Role} },
	targets: func(u *core.User) []any { return []any{&u.Login, &u.Email, &u.Role} },
	id:      func(u *core.User) *int64 { return &u.ID },
	meta:    func(u *core.User) (*bool, *core.Timestamps) { return &u.Archived, &u.Timestamps },
}

var orderSchema = &schema[core.Order]{
	table:   "orders",
	columns: []string{"user_id", "employee_id", "warehouse_id", "status_id", "total_price"},
	filters: map[string]colKind{
		"user_id":      colInt,
		"employee_id":  colInt,
		"warehouse_id": colInt,
		"status_id":    colInt,
		"total_price":  colDecimal,
	},
	values: func(o *core.Order) []any {
		return []any{o.UserID, o.EmployeeID, o.WarehouseID, o.StatusID, o.TotalPrice}
	},
	targets: func(o *core.Order) []any {
		return []any{&o.UserID, &o.EmployeeID, &o.WarehouseID, &o.StatusID, &o.TotalPrice}
	},
	id:   func(o *core.Order) *int64 { return &o.ID },
	meta: func(o *core.Order) (*bool, *core.Timestamps) { return &o.Archived, &o.Timestamps },
}
