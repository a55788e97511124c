package app

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"warehouse-backend/internal/core"
)

// ListParams are the raw listing parameters from a query string or the
// command line: page, page_size, include_archived, and entity filters.
// Unknown keys are ignored.
type ListParams map[string]string

func (p ListParams) str(key string) string { return strings.TrimSpace(p[key]) }

func (p ListParams) intVal(key string) (int, error) {
	v := p.str(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, core.Validation(key, "%s must be an integer, got %q", key, v)
	}
	return n, nil
}

// positive reads an optional integer that must be at least 1 when given.
func (p ListParams) positive(key string) (int, error) {
	n, err := p.intVal(key)
	if err != nil {
		return 0, err
	}
	if p.str(key) != "" && n < 1 {
		return 0, core.Validation(key, "%s must be >= 1, got %d", key, n)
	}
	return n, nil
}

func (p ListParams) int64Ptr(key string) (*int64, error) {
	v := p.str(key)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, core.Validation(key, "%s must be an integer, got %q", key, v)
	}
	return &n, nil
}

func (p ListParams) decimalPtr(key string) (*decimal.Decimal, error) {
	v := p.str(key)
	if v == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, core.Validation(key, "%s must be a decimal number, got %q", key, v)
	}
	return &d, nil
}

// Paging reads page, page_size and include_archived.
func (p ListParams) Paging() (core.ListFilter, error) {
	var f core.ListFilter
	var err error
	if f.Page, err = p.positive("page"); err != nil {
		return f, err
	}
	if f.PageSize, err = p.positive("page_size"); err != nil {
		return f, err
	}
	if v := p.str("include_archived"); v != "" {
		if f.IncludeArchived, err = strconv.ParseBool(v); err != nil {
			return f, core.Validation("include_archived", "include_archived must be true or false, got %q", v)
		}
	}
	return f, nil
}

// ids reads several optional integer parameters, stopping at the first error.
func (p ListParams) ids(keys ...string) ([]*int64, error) {
	out := make([]*int64, len(keys))
	for i, k := range keys {
		v, err := p.int64Ptr(k)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func warehouseFilter(p ListParams) (core.Filter, error) {
	lf, err := p.Paging()
	if err != nil {
		return nil, err
	}
	minArea, err := p.decimalPtr("min_floor_area")
	if err != nil {
		return nil, err
	}
	return core.WarehouseFilter{ListFilter: lf, AddressContains: p.str("address"), MinFloorArea: minArea}, nil
}

func categoryFilter(p ListParams) (core.Filter, error) {
	lf, err := p.Paging()
	if err != nil {
		return nil, err
	}
	return core.CategoryFilter{ListFilter: lf, NameContains: p.str("name")}, nil
}

func productFilter(p ListParams) (core.Filter, error) {
	lf, err := p.Paging()
	if err != nil {
		return nil, err
	}
	categoryID, err := p.int64Ptr("category_id")
	if err != nil {
		return nil, err
	}
	minPrice, err := p.decimalPtr("min_price")
	if err != nil {
		return nil, err
	}
	maxPrice, err := p.decimalPtr("max_price")
	if err != nil {
		return nil, err
	}
	return core.ProductFilter{
		ListFilter:   lf,
		NameContains: p.str("name"),
		CategoryID:   categoryID,
		MinPrice:     minPrice,
		MaxPrice:     maxPrice,
	}, nil
}

func stockFilter(p ListParams) (core.Filter, error) {
	lf, err := p.Paging()
	if err != nil {
		return nil, err
	}
	ids, err := p.ids("product_id", "warehouse_id", "min_quantity")
	if err != nil {
		return nil, err
	}
	return core.StockFilter{ListFilter: lf, ProductID: ids[0], WarehouseID: ids[1], MinQuantity: ids[2]}, nil
}

func orderFilter(p ListParams) (core.Filter, error) {
	lf, err := p.Paging()
	if err != nil {
		return nil, err
	}
	ids, err := p.ids("warehouse_id", "user_id", "employee_id", "status_id")
	if err != nil {
		return nil, err
	}
	return core.OrderFilter{ListFilter: lf, WarehouseID: ids[0], UserID: ids[1], EmployeeID: ids[2], StatusID: ids[3]}, nil
}

func statusFilter(p ListParams) (core.Filter, error) {
	lf, err := p.Paging()
	if err != nil {
		return nil, err
	}
	return core.StatusFilter{ListFilter: lf, NameContains: p.str("name")}, nil
}

func employeeFilter(p ListParams) (core.Filter, error) {
	lf, err := p.Paging()
	if err != nil {
		return nil, err
	}
	warehouseID, err := p.int64Ptr("warehouse_id")
	if err != nil {
		return nil, err
	}
	return core.EmployeeFilter{ListFilter: lf, NameContains: p.str("name"), WarehouseID: warehouseID}, nil
}

func userFilter(p ListParams) (core.Filter, error) {
	lf, err := p.Paging()
	if err != nil {
		return nil, err
	}
	return core.UserFilter{ListFilter: lf, LoginContains: p.str("login"), Role: p.str("role")}, nil
}
