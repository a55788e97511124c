package app

import (
	"context"

	"github.com/invopop/jsonschema"

	"warehouse-backend/internal/core"
)

// ApplicationService is the single interface all UI adapters (CLI, Web) call.
// It decouples presentation from business logic. Implementations must contain
// no fmt.Println, no ANSI codes, and no display logic of any kind.
type ApplicationService interface {
	// Health reports whether the store is reachable and how the audit queue
	// is doing.
	Health(ctx context.Context) (*HealthResult, error)

	// Entity returns uniform get/list/create/archive access to one entity by
	// its API name ("orders", "warehouses", ...).
	Entity(name string) (EntityAccess, error)

	// EntityNames lists the API names Entity accepts, sorted.
	EntityNames() []string

	// PlaceOrder validates, reserves stock, and persists an order atomically.
	PlaceOrder(ctx context.Context, req core.PlaceOrderRequest) (*core.OrderSummary, error)

	// UpdateOrderStatus moves an order to another active status.
	UpdateOrderStatus(ctx context.Context, orderID int64, req UpdateStatusRequest) (*core.OrderSummary, error)

	// AssignEmployee sets or clears the employee handling an order.
	AssignEmployee(ctx context.Context, orderID int64, req AssignEmployeeRequest) (*core.OrderSummary, error)

	CreateWarehouse(ctx context.Context, req CreateWarehouseRequest) (*core.WarehouseSummary, error)
	CreateCategory(ctx context.Context, req CreateCategoryRequest) (*core.CategorySummary, error)
	CreateProduct(ctx context.Context, req CreateProductRequest) (*core.ProductSummary, error)
	CreateStatus(ctx context.Context, req CreateStatusRequest) (*core.OrderStatusSummary, error)
	CreateEmployee(ctx context.Context, req CreateEmployeeRequest) (*core.EmployeeSummary, error)
	CreateUser(ctx context.Context, req CreateUserRequest) (*core.UserSummary, error)

	// CreateStock opens the stock row for a (product, warehouse) pair.
	CreateStock(ctx context.Context, req CreateStockRequest) (*core.StockSummary, error)

	// UpdateProductPrice changes a product's current price. Existing order
	// lines keep their snapshot.
	UpdateProductPrice(ctx context.Context, productID int64, req UpdatePriceRequest) (*core.ProductSummary, error)

	// AdjustStock adds a signed delta to a stock row.
	AdjustStock(ctx context.Context, stockID int64, req AdjustStockRequest) (*core.StockSummary, error)

	// Schema returns the JSON schema of a request body by name.
	Schema(name string) (*jsonschema.Schema, error)

	// SchemaNames lists the names Schema accepts, sorted.
	SchemaNames() []string
}

// EntityAccess is the framework surface of one entity, with rows returned as
// their summaries.
type EntityAccess interface {
	Name() string
	Get(ctx context.Context, id int64, includeArchived bool) (any, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	// Create decodes a request body with decode and creates the row.
	Create(ctx context.Context, decode func(v any) error) (any, error)
	Archive(ctx context.Context, id int64) (bool, error)
	Restore(ctx context.Context, id int64) (bool, error)
}
