package core

import "time"

// Archivable is satisfied by every stored entity. Archiving is a soft delete:
// the row stays, but it disappears from default listings and can no longer be
// referenced by new records.
type Archivable interface {
	EntityID() int64
	IsArchived() bool
}

// Workflow names the transaction policy a group of operations shares.
type Workflow string

const (
	WorkflowOrder   Workflow = "order"
	WorkflowUser    Workflow = "user"
	WorkflowCatalog Workflow = "catalog"
)

// Entity names double as table names in audit events.
const (
	EntityWarehouse = "warehouses"
	EntityProduct   = "products"
	EntityCategory  = "categories"
	EntityStock     = "stock"
	EntityOrder     = "orders"
	EntityOrderLine = "order_lines"
	EntityStatus    = "order_statuses"
	EntityEmployee  = "employees"
	EntityUser      = "users"
)

// Timestamps are maintained by the store on insert and update.
type Timestamps struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
