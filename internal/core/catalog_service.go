package core

import (
	"context"
	"errors"
	"math"
	"net/mail"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// CatalogService maintains the reference data orders are placed against:
// warehouses, categories, products, stock, statuses, employees, and users.
// Listing, lookup, and archive/restore come from the embedded entity services.
type CatalogService struct {
	Warehouses *EntityService[Warehouse, WarehouseSummary]
	Categories *EntityService[Category, CategorySummary]
	Products   *EntityService[Product, ProductSummary]
	Stock      *EntityService[Stock, StockSummary]
	Statuses   *EntityService[OrderStatus, OrderStatusSummary]
	Employees  *EntityService[Employee, EmployeeSummary]
	Users      *EntityService[User, UserSummary]

	log zerolog.Logger
}

func NewCatalogService(tx *TxManager, sink AuditSink, log zerolog.Logger) *CatalogService {
	return &CatalogService{
		Warehouses: NewEntityService(EntityWarehouse, WorkflowCatalog, tx,
			func(u UnitOfWork) Table[Warehouse] { return u.Warehouses() }, summarizeWarehouse, sink),
		Categories: NewEntityService(EntityCategory, WorkflowCatalog, tx,
			func(u UnitOfWork) Table[Category] { return u.Categories() }, summarizeCategory, sink),
		Products: NewEntityService(EntityProduct, WorkflowCatalog, tx,
			func(u UnitOfWork) Table[Product] { return u.Products() }, summarizeProduct, sink),
		Stock: NewEntityService(EntityStock, WorkflowCatalog, tx,
			func(u UnitOfWork) Table[Stock] { return u.Stock() }, summarizeStock, sink),
		Statuses: NewEntityService(EntityStatus, WorkflowCatalog, tx,
			func(u UnitOfWork) Table[OrderStatus] { return u.Statuses() }, summarizeStatus, sink),
		Employees: NewEntityService(EntityEmployee, WorkflowUser, tx,
			func(u UnitOfWork) Table[Employee] { return u.Employees() }, summarizeEmployee, sink),
		Users: NewEntityService(EntityUser, WorkflowUser, tx,
			func(u UnitOfWork) Table[User] { return u.Users() }, summarizeUser, sink),
		log: log,
	}
}

// ── Creation ─────────────────────────────────────────────────────────────────

func (s *CatalogService) CreateWarehouse(ctx context.Context, w Warehouse) (*WarehouseSummary, error) {
	w.Address = strings.TrimSpace(w.Address)
	if w.Address == "" {
		return nil, Validation("address", "address is required")
	}
	if w.FloorArea.IsNegative() {
		return nil, Validation("floor_area", "floor area must not be negative, got %s", w.FloorArea)
	}
	w.ID, w.Archived = 0, false
	return insertRow(ctx, s.Warehouses, &w, nil)
}

func (s *CatalogService) CreateCategory(ctx context.Context, c Category) (*CategorySummary, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return nil, Validation("name", "name is required")
	}
	c.ID, c.Archived = 0, false
	return insertRow(ctx, s.Categories, &c, nil)
}

func (s *CatalogService) CreateProduct(ctx context.Context, p Product) (*ProductSummary, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return nil, Validation("name", "name is required")
	}
	if err := validatePrice(p.Price); err != nil {
		return nil, err
	}
	if p.Weight.IsNegative() {
		return nil, Validation("weight", "weight must not be negative, got %s", p.Weight)
	}
	p.ID, p.Archived = 0, false
	return insertRow(ctx, s.Products, &p, func(ctx context.Context, uow UnitOfWork) error {
		_, err := requireActive(ctx, uow.Categories(), EntityCategory, p.CategoryID)
		return err
	})
}

func (s *CatalogService) CreateStatus(ctx context.Context, st OrderStatus) (*OrderStatusSummary, error) {
	st.Name = strings.TrimSpace(st.Name)
	if st.Name == "" {
		return nil, Validation("name", "name is required")
	}
	st.ID, st.Archived = 0, false
	return insertRow(ctx, s.Statuses, &st, nil)
}

func (s *CatalogService) CreateEmployee(ctx context.Context, e Employee) (*EmployeeSummary, error) {
	e.FirstName = strings.TrimSpace(e.FirstName)
	e.LastName = strings.TrimSpace(e.LastName)
	if e.FirstName == "" {
		return nil, Validation("first_name", "first name is required")
	}
	if e.LastName == "" {
		return nil, Validation("last_name", "last name is required")
	}
	e.ID, e.Archived = 0, false
	return insertRow(ctx, s.Employees, &e, func(ctx context.Context, uow UnitOfWork) error {
		if e.WarehouseID == nil {
			return nil
		}
		_, err := requireActive(ctx, uow.Warehouses(), EntityWarehouse, *e.WarehouseID)
		return err
	})
}

func (s *CatalogService) CreateUser(ctx context.Context, u User) (*UserSummary, error) {
	u.Login = strings.TrimSpace(u.Login)
	if u.Login == "" {
		return nil, Validation("login", "login is required")
	}
	if u.Email != "" {
		if _, err := mail.ParseAddress(u.Email); err != nil {
			return nil, Validation("email", "invalid email address %q", u.Email)
		}
	}
	u.ID, u.Archived = 0, false
	return insertRow(ctx, s.Users, &u, nil)
}

// CreateStock opens a stock row for a product at a warehouse. Each active
// (product, warehouse) pair has at most one row.
func (s *CatalogService) CreateStock(ctx context.Context, productID, warehouseID, quantity int64) (*StockSummary, error) {
	if quantity < 0 {
		return nil, Validation("quantity", "quantity must not be negative, got %d", quantity)
	}
	st := &Stock{ProductID: productID, WarehouseID: warehouseID, Quantity: quantity}
	return insertRow(ctx, s.Stock, st, func(ctx context.Context, uow UnitOfWork) error {
		if _, err := requireActive(ctx, uow.Products(), EntityProduct, productID); err != nil {
			return err
		}
		if _, err := requireActive(ctx, uow.Warehouses(), EntityWarehouse, warehouseID); err != nil {
			return err
		}
		existing, err := uow.Stock().Find(ctx, productID, warehouseID, false)
		if err == nil {
			return Domain("product %d already has stock row %d at warehouse %d", productID, existing.ID, warehouseID)
		}
		if !errors.Is(err, ErrNoRow) {
			return err
		}
		return nil
	})
}

// ── Updates ──────────────────────────────────────────────────────────────────

// UpdateProductPrice changes the current price. Lines of existing orders
// keep the price they were placed at.
func (s *CatalogService) UpdateProductPrice(ctx context.Context, productID int64, price decimal.Decimal) (*ProductSummary, error) {
	if err := validatePrice(price); err != nil {
		return nil, err
	}
	return updateRow(ctx, s.Products, productID, func(_ context.Context, _ UnitOfWork, p *Product) error {
		p.Price = price
		return nil
	})
}

// AdjustStock adds delta (which may be negative) to a stock row. The
// quantity never drops below zero.
func (s *CatalogService) AdjustStock(ctx context.Context, stockID, delta int64) (*StockSummary, error) {
	if delta == 0 {
		return nil, Validation("delta", "delta must not be zero")
	}
	summary, err := updateRow(ctx, s.Stock, stockID, func(ctx context.Context, uow UnitOfWork, st *Stock) error {
		if delta > 0 && st.Quantity > math.MaxInt64-delta {
			return Validation("delta", "delta %d would overflow quantity %d", delta, st.Quantity)
		}
		if err := uow.Stock().Adjust(ctx, st.ID, delta); err != nil {
			return err
		}
		st.Quantity += delta
		return nil
	}, skipUpdate())
	if err != nil {
		return nil, err
	}
	s.log.Info().Int64("stock_id", stockID).Int64("delta", delta).Int64("quantity", summary.Quantity).Msg("stock adjusted")
	return summary, nil
}

func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return Validation("price", "price must not be negative, got %s", price)
	}
	return nil
}

// ── Generic write helpers ────────────────────────────────────────────────────

// insertRow runs check and the insert in one transaction of the service's
// workflow, then reports the new row to the audit sink.
func insertRow[T Archivable, S any](ctx context.Context, svc *EntityService[T, S], row *T, check func(context.Context, UnitOfWork) error) (*S, error) {
	summary, err := InTx(ctx, svc.tx, svc.workflow, func(ctx context.Context, uow UnitOfWork) (S, error) {
		var zero S
		if check != nil {
			if err := check(ctx, uow); err != nil {
				return zero, err
			}
		}
		if err := svc.table(uow).Insert(ctx, row); err != nil {
			return zero, err
		}
		return svc.summarize(ctx, uow, *row)
	})
	if err != nil {
		return nil, err
	}
	notifyAll(ctx, svc.sink, svc.now(), []AuditEvent{{
		TableName: svc.entity,
		Operation: OpInsert,
		RecordID:  (*row).EntityID(),
		NewState:  *row,
	}})
	return &summary, nil
}

type updateOptions struct {
	persist bool
}

type updateOption func(*updateOptions)

// skipUpdate is for changes that already wrote the row themselves.
func skipUpdate() updateOption {
	return func(o *updateOptions) { o.persist = false }
}

// updateRow applies change to an active row and persists it in one
// transaction. Missing rows are NotFound and archived rows a Domain error.
func updateRow[T Archivable, S any](ctx context.Context, svc *EntityService[T, S], id int64, change func(context.Context, UnitOfWork, *T) error, opts ...updateOption) (*S, error) {
	o := updateOptions{persist: true}
	for _, opt := range opts {
		opt(&o)
	}

	type result struct {
		before, after T
		summary       S
	}
	res, err := InTx(ctx, svc.tx, svc.workflow, func(ctx context.Context, uow UnitOfWork) (result, error) {
		row, err := requireActive(ctx, svc.table(uow), svc.entity, id)
		if err != nil {
			return result{}, err
		}
		before := *row
		if err := change(ctx, uow, row); err != nil {
			return result{}, err
		}
		if o.persist {
			if err := svc.table(uow).Update(ctx, row); err != nil {
				return result{}, err
			}
		}
		summary, err := svc.summarize(ctx, uow, *row)
		if err != nil {
			return result{}, err
		}
		return result{before: before, after: *row, summary: summary}, nil
	})
	if err != nil {
		return nil, err
	}
	notifyAll(ctx, svc.sink, svc.now(), []AuditEvent{{
		TableName: svc.entity,
		Operation: OpUpdate,
		RecordID:  id,
		OldState:  res.before,
		NewState:  res.after,
	}})
	return &res.summary, nil
}
