package app

import (
	"github.com/shopspring/decimal"
)

// CreateWarehouseRequest is the input for creating a warehouse.
type CreateWarehouseRequest struct {
	Address   string          `json:"address" jsonschema:"required,minLength=1"`
	FloorArea decimal.Decimal `json:"floor_area"`
}

type CreateCategoryRequest struct {
	Name string `json:"name" jsonschema:"required,minLength=1"`
}

// CreateProductRequest is the input for creating a product in an active
// category.
type CreateProductRequest struct {
	Name       string          `json:"name" jsonschema:"required,minLength=1"`
	Price      decimal.Decimal `json:"price" jsonschema:"required"`
	Weight     decimal.Decimal `json:"weight"`
	CategoryID int64           `json:"category_id" jsonschema:"required,minimum=1"`
}

type CreateStatusRequest struct {
	Name string `json:"name" jsonschema:"required,minLength=1"`
}

// CreateEmployeeRequest is the input for hiring an employee, optionally
// attached to a warehouse.
type CreateEmployeeRequest struct {
	FirstName   string `json:"first_name" jsonschema:"required,minLength=1"`
	LastName    string `json:"last_name" jsonschema:"required,minLength=1"`
	Position    string `json:"position"`
	WarehouseID *int64 `json:"warehouse_id,omitempty" jsonschema:"minimum=1"`
}

type CreateUserRequest struct {
	Login string `json:"login" jsonschema:"required,minLength=1"`
	Email string `json:"email" jsonschema:"format=email"`
	Role  string `json:"role" jsonschema:"enum=customer,enum=manager,enum=admin"`
}

// CreateStockRequest opens the stock row for a product at a warehouse.
type CreateStockRequest struct {
	ProductID   int64 `json:"product_id" jsonschema:"required,minimum=1"`
	WarehouseID int64 `json:"warehouse_id" jsonschema:"required,minimum=1"`
	Quantity    int64 `json:"quantity" jsonschema:"minimum=0"`
}

type UpdateStatusRequest struct {
	StatusID int64 `json:"status_id" jsonschema:"required,minimum=1"`
}

// AssignEmployeeRequest sets the order's employee. A null employee_id
// clears the assignment.
type AssignEmployeeRequest struct {
	EmployeeID *int64 `json:"employee_id" jsonschema:"minimum=1"`
}

type UpdatePriceRequest struct {
	Price decimal.Decimal `json:"price" jsonschema:"required"`
}

// AdjustStockRequest adds Delta (negative to remove) to a stock row.
type AdjustStockRequest struct {
	Delta int64 `json:"delta" jsonschema:"required"`
}
