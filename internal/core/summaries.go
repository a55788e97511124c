package core

import (
	"context"
	"errors"
)

// Summarizers for every entity. Related rows are read with plain Get, not the
// guard: an archived category still names the products that used it.

func summarizeWarehouse(ctx context.Context, uow UnitOfWork, w Warehouse) (WarehouseSummary, error) {
	// Archived stock rows are left out of the totals.
	rows, _, err := uow.Stock().List(ctx, Query{Predicates: []Predicate{Eq("warehouse_id", w.ID)}})
	if err != nil {
		return WarehouseSummary{}, err
	}
	s := WarehouseSummary{Warehouse: w, StockRows: len(rows)}
	for _, r := range rows {
		s.TotalQuantity += r.Quantity
	}
	return s, nil
}

func summarizeCategory(_ context.Context, _ UnitOfWork, c Category) (CategorySummary, error) {
	return CategorySummary{Category: c}, nil
}

func summarizeStatus(_ context.Context, _ UnitOfWork, s OrderStatus) (OrderStatusSummary, error) {
	return OrderStatusSummary{OrderStatus: s}, nil
}

func summarizeProduct(ctx context.Context, uow UnitOfWork, p Product) (ProductSummary, error) {
	s := ProductSummary{Product: p}
	c, err := lookup(ctx, uow.Categories(), p.CategoryID)
	if err != nil {
		return s, err
	}
	if c != nil {
		s.CategoryName = c.Name
	}
	return s, nil
}

func summarizeStock(ctx context.Context, uow UnitOfWork, st Stock) (StockSummary, error) {
	s := StockSummary{Stock: st}
	p, err := lookup(ctx, uow.Products(), st.ProductID)
	if err != nil {
		return s, err
	}
	if p != nil {
		s.ProductName = p.Name
		s.UnitPrice = p.Price
	}
	w, err := lookup(ctx, uow.Warehouses(), st.WarehouseID)
	if err != nil {
		return s, err
	}
	if w != nil {
		s.WarehouseAddress = w.Address
	}
	return s, nil
}

func summarizeUser(ctx context.Context, uow UnitOfWork, u User) (UserSummary, error) {
	_, total, err := uow.Orders().List(ctx, Query{
		Predicates:      []Predicate{Eq("user_id", u.ID)},
		IncludeArchived: true,
		Limit:           1,
	})
	if err != nil {
		return UserSummary{}, err
	}
	return UserSummary{User: u, OrderCount: total}, nil
}

func summarizeEmployee(ctx context.Context, uow UnitOfWork, e Employee) (EmployeeSummary, error) {
	s := EmployeeSummary{Employee: e, FullName: e.FullName()}
	if e.WarehouseID == nil {
		return s, nil
	}
	w, err := lookup(ctx, uow.Warehouses(), *e.WarehouseID)
	if err != nil {
		return s, err
	}
	if w != nil {
		s.WarehouseAddress = w.Address
	}
	return s, nil
}

func summarizeOrder(ctx context.Context, uow UnitOfWork, o Order) (OrderSummary, error) {
	s := OrderSummary{Order: o, Lines: []OrderLineSummary{}}

	st, err := lookup(ctx, uow.Statuses(), o.StatusID)
	if err != nil {
		return s, err
	}
	if st != nil {
		s.StatusName = st.Name
	}
	u, err := lookup(ctx, uow.Users(), o.UserID)
	if err != nil {
		return s, err
	}
	if u != nil {
		s.UserLogin = u.Login
	}
	w, err := lookup(ctx, uow.Warehouses(), o.WarehouseID)
	if err != nil {
		return s, err
	}
	if w != nil {
		s.WarehouseAddress = w.Address
	}
	if o.EmployeeID != nil {
		e, err := lookup(ctx, uow.Employees(), *o.EmployeeID)
		if err != nil {
			return s, err
		}
		if e != nil {
			s.EmployeeName = e.FullName()
		}
	}

	lines, err := uow.Orders().Lines(ctx, o.ID)
	if err != nil {
		return s, err
	}
	for _, l := range lines {
		ls := OrderLineSummary{OrderLine: l}
		p, err := lookup(ctx, uow.Products(), l.ProductID)
		if err != nil {
			return s, err
		}
		if p != nil {
			ls.ProductName = p.Name
		}
		s.Lines = append(s.Lines, ls)
	}
	return s, nil
}

// lookup is Get with a missing row mapped to nil.
func lookup[T any](ctx context.Context, t Table[T], id int64) (*T, error) {
	row, err := t.Get(ctx, id)
	if errors.Is(err, ErrNoRow) {
		return nil, nil
	}
	return row, err
}
