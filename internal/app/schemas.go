package app

import (
	"reflect"

	"github.com/invopop/jsonschema"
	"github.com/shopspring/decimal"

	"warehouse-backend/internal/core"
)

// requestSchemas reflects the JSON schema of every request body the API
// accepts. Decimals travel as strings.
func requestSchemas() map[string]*jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t == reflect.TypeOf(decimal.Decimal{}) {
				return &jsonschema.Schema{Type: "string", Pattern: `^-?[0-9]+(\.[0-9]+)?$`}
			}
			return nil
		},
	}
	bodies := map[string]any{
		"orders":         core.PlaceOrderRequest{},
		"warehouses":     CreateWarehouseRequest{},
		"categories":     CreateCategoryRequest{},
		"products":       CreateProductRequest{},
		"statuses":       CreateStatusRequest{},
		"employees":      CreateEmployeeRequest{},
		"users":          CreateUserRequest{},
		"stock":          CreateStockRequest{},
		"order_status":   UpdateStatusRequest{},
		"order_employee": AssignEmployeeRequest{},
		"product_price":  UpdatePriceRequest{},
		"stock_adjust":   AdjustStockRequest{},
	}
	out := make(map[string]*jsonschema.Schema, len(bodies))
	for name, v := range bodies {
		out[name] = reflector.Reflect(v)
	}
	return out
}
