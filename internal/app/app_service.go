package app

import (
	"context"
	"sort"

	"github.com/invopop/jsonschema"

	"warehouse-backend/internal/core"
)

// Pinger reports whether the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
	Dialect() string
}

// AuditStats is implemented by the audit dispatcher.
type AuditStats interface {
	Dropped() uint64
	Failed() uint64
}

type appService struct {
	store    Pinger
	audit    AuditStats
	catalog  *core.CatalogService
	orders   *core.OrderService
	entities map[string]EntityAccess
	schemas  map[string]*jsonschema.Schema
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(store Pinger, audit AuditStats, catalog *core.CatalogService, orders *core.OrderService) ApplicationService {
	s := &appService{store: store, audit: audit, catalog: catalog, orders: orders}
	s.entities = map[string]EntityAccess{
		"orders": &entityAccess[core.Order, core.OrderSummary]{
			name: "orders", svc: orders.Orders(), filter: orderFilter, create: creator(s.PlaceOrder),
		},
		"warehouses": &entityAccess[core.Warehouse, core.WarehouseSummary]{
			name: "warehouses", svc: catalog.Warehouses, filter: warehouseFilter, create: creator(s.CreateWarehouse),
		},
		"categories": &entityAccess[core.Category, core.CategorySummary]{
			name: "categories", svc: catalog.Categories, filter: categoryFilter, create: creator(s.CreateCategory),
		},
		"products": &entityAccess[core.Product, core.ProductSummary]{
			name: "products", svc: catalog.Products, filter: productFilter, create: creator(s.CreateProduct),
		},
		"stock": &entityAccess[core.Stock, core.StockSummary]{
			name: "stock", svc: catalog.Stock, filter: stockFilter, create: creator(s.CreateStock),
		},
		"statuses": &entityAccess[core.OrderStatus, core.OrderStatusSummary]{
			name: "statuses", svc: catalog.Statuses, filter: statusFilter, create: creator(s.CreateStatus),
		},
		"employees": &entityAccess[core.Employee, core.EmployeeSummary]{
			name: "employees", svc: catalog.Employees, filter: employeeFilter, create: creator(s.CreateEmployee),
		},
		"users": &entityAccess[core.User, core.UserSummary]{
			name: "users", svc: catalog.Users, filter: userFilter, create: creator(s.CreateUser),
		},
	}
	s.schemas = requestSchemas()
	return s
}

func (s *appService) Health(ctx context.Context) (*HealthResult, error) {
	res := &HealthResult{Status: "ok", Database: s.store.Dialect()}
	if s.audit != nil {
		res.AuditDropped = s.audit.Dropped()
		res.AuditFailures = s.audit.Failed()
	}
	if err := s.store.Ping(ctx); err != nil {
		res.Status = "unavailable"
		return res, err
	}
	return res, nil
}

func (s *appService) Entity(name string) (EntityAccess, error) {
	e, ok := s.entities[name]
	if !ok {
		return nil, core.Validation("entity", "unknown entity %q", name)
	}
	return e, nil
}

func (s *appService) EntityNames() []string {
	names := make([]string, 0, len(s.entities))
	for n := range s.entities {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ── Orders ───────────────────────────────────────────────────────────────────

func (s *appService) PlaceOrder(ctx context.Context, req core.PlaceOrderRequest) (*core.OrderSummary, error) {
	return s.orders.PlaceOrder(ctx, req)
}

func (s *appService) UpdateOrderStatus(ctx context.Context, orderID int64, req UpdateStatusRequest) (*core.OrderSummary, error) {
	return s.orders.UpdateStatus(ctx, orderID, req.StatusID)
}

func (s *appService) AssignEmployee(ctx context.Context, orderID int64, req AssignEmployeeRequest) (*core.OrderSummary, error) {
	return s.orders.AssignEmployee(ctx, orderID, req.EmployeeID)
}

// ── Catalog ──────────────────────────────────────────────────────────────────

func (s *appService) CreateWarehouse(ctx context.Context, req CreateWarehouseRequest) (*core.WarehouseSummary, error) {
	return s.catalog.CreateWarehouse(ctx, core.Warehouse{Address: req.Address, FloorArea: req.FloorArea})
}

func (s *appService) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*core.CategorySummary, error) {
	return s.catalog.CreateCategory(ctx, core.Category{Name: req.Name})
}

func (s *appService) CreateProduct(ctx context.Context, req CreateProductRequest) (*core.ProductSummary, error) {
	return s.catalog.CreateProduct(ctx, core.Product{
		Name:       req.Name,
		Price:      req.Price,
		Weight:     req.Weight,
		CategoryID: req.CategoryID,
	})
}

func (s *appService) CreateStatus(ctx context.Context, req CreateStatusRequest) (*core.OrderStatusSummary, error) {
	return s.catalog.CreateStatus(ctx, core.OrderStatus{Name: req.Name})
}

func (s *appService) CreateEmployee(ctx context.Context, req CreateEmployeeRequest) (*core.EmployeeSummary, error) {
	return s.catalog.CreateEmployee(ctx, core.Employee{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Position:    req.Position,
		WarehouseID: req.WarehouseID,
	})
}

func (s *appService) CreateUser(ctx context.Context, req CreateUserRequest) (*core.UserSummary, error) {
	role := req.Role
	if role == "" {
		role = "customer"
	}
	return s.catalog.CreateUser(ctx, core.User{Login: req.Login, Email: req.Email, Role: role})
}

func (s *appService) CreateStock(ctx context.Context, req CreateStockRequest) (*core.StockSummary, error) {
	return s.catalog.CreateStock(ctx, req.ProductID, req.WarehouseID, req.Quantity)
}

func (s *appService) UpdateProductPrice(ctx context.Context, productID int64, req UpdatePriceRequest) (*core.ProductSummary, error) {
	return s.catalog.UpdateProductPrice(ctx, productID, req.Price)
}

func (s *appService) AdjustStock(ctx context.Context, stockID int64, req AdjustStockRequest) (*core.StockSummary, error) {
	return s.catalog.AdjustStock(ctx, stockID, req.Delta)
}

// ── Schemas ──────────────────────────────────────────────────────────────────

func (s *appService) Schema(name string) (*jsonschema.Schema, error) {
	sc, ok := s.schemas[name]
	if !ok {
		return nil, core.Validation("name", "unknown schema %q", name)
	}
	return sc, nil
}

func (s *appService) SchemaNames() []string {
	names := make([]string, 0, len(s.schemas))
	for n := range s.schemas {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
