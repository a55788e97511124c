package core

import "context"

// Isolation is the transaction isolation a workflow asks for.
type Isolation int

const (
	ReadCommitted Isolation = iota
	RepeatableRead
	Serializable
)

// TxOptions is derived from the workflow category by the TxManager.
type TxOptions struct {
	Isolation Isolation
	ReadOnly  bool
}

// EntityStore opens units of work. Implementations live in internal/store.
type EntityStore interface {
	Begin(ctx context.Context, opts TxOptions) (Tx, error)
}

// Tx is a unit of work with an explicit outcome. Rollback after Commit is a
// no-op, so callers can always defer it.
type Tx interface {
	UnitOfWork
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UnitOfWork exposes every table inside one transaction.
type UnitOfWork interface {
	Warehouses() Table[Warehouse]
	Categories() Table[Category]
	Products() Table[Product]
	Statuses() Table[OrderStatus]
	Employees() Table[Employee]
	Users() Table[User]
	Stock() StockTable
	Orders() OrderTable
}

// Table is row access for one entity type. Get returns ErrNoRow when no row
// has the id. List returns the requested page plus the number of rows
// matching the query before offset and limit.
type Table[T any] interface {
	Get(ctx context.Context, id int64) (*T, error)
	List(ctx context.Context, q Query) ([]T, int, error)
	Insert(ctx context.Context, row *T) error
	Update(ctx context.Context, row *T) error
	SetArchived(ctx context.Context, id int64, archived bool) error
}

// StockTable adds the quantity operations the order workflow relies on.
type StockTable interface {
	Table[Stock]
	// Find returns the active stock row for the pair, or ErrNoRow. With lock
	// set the row is locked until the transaction ends where the store
	// supports row locks.
	Find(ctx context.Context, productID, warehouseID int64, lock bool) (*Stock, error)
	// Decrement subtracts qty only if the row still holds at least qty.
	// It returns a Conflict error when the guard fails.
	Decrement(ctx context.Context, id, qty int64) error
	// Adjust adds delta, refusing to go below zero with a Domain error.
	Adjust(ctx context.Context, id, delta int64) error
}

// OrderTable adds order line access.
type OrderTable interface {
	Table[Order]
	InsertLines(ctx context.Context, orderID int64, lines []OrderLine) error
	Lines(ctx context.Context, orderID int64) ([]OrderLine, error)
}
