package core_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"warehouse-backend/internal/core"
	"warehouse-backend/internal/store/sqlstore"
)

// recordingSink keeps every audit event it is handed.
type recordingSink struct {
	mu     sync.Mutex
	events []core.AuditEvent
}

func (s *recordingSink) Notify(_ context.Context, ev core.AuditEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *recordingSink) all() []core.AuditEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.AuditEvent(nil), s.events...)
}

func (s *recordingSink) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}

type testEnv struct {
	ctx     context.Context
	store   *sqlstore.Store
	tx      *core.TxManager
	sink    *recordingSink
	catalog *core.CatalogService
	orders  *core.OrderService
}

// newEnv opens a migrated in-memory database and wires the services over it.
func newEnv(t *testing.T, cfg core.OrderServiceConfig) *testEnv {
	t.Helper()
	ctx := context.Background()
	store, err := sqlstore.OpenSQLite(ctx, ":memory:", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(store.Close)
	_, err = store.Migrate(ctx)
	require.NoError(t, err)
	return wireEnv(store, cfg)
}

// newPostgresEnv wires the services over TEST_DATABASE_URL, inside a
// dedicated schema that is emptied first. It skips without a database.
func newPostgresEnv(t *testing.T, cfg core.OrderServiceConfig) *testEnv {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pcfg, err := pgxpool.ParseConfig(url)
	require.NoError(t, err)
	pcfg.ConnConfig.RuntimeParams["search_path"] = "core_test"
	pcfg.MaxConns = 16
	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	require.NoError(t, err)
	store := sqlstore.NewPostgres(pool, zerolog.Nop())
	t.Cleanup(store.Close)

	_, err = pool.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS core_test")
	require.NoError(t, err)
	_, err = store.Migrate(ctx)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `TRUNCATE order_lines, orders, stock, employees, products,
		categories, warehouses, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return wireEnv(store, cfg)
}

func wireEnv(store *sqlstore.Store, cfg core.OrderServiceConfig) *testEnv {
	ctx := context.Background()
	sink := &recordingSink{}
	tx := core.NewTxManager(store, 5*time.Second, zerolog.Nop())
	return &testEnv{
		ctx:     ctx,
		store:   store,
		tx:      tx,
		sink:    sink,
		catalog: core.NewCatalogService(tx, sink, zerolog.Nop()),
		orders:  core.NewOrderService(tx, sink, cfg, zerolog.Nop()),
	}
}

// fixture is one warehouse holding 15 units of a product priced 4.00, plus
// a user to order them.
type fixture struct {
	warehouse int64
	category  int64
	product   int64
	user      int64
	stock     int64
}

func (e *testEnv) seed(t *testing.T) fixture {
	t.Helper()
	var f fixture
	w, err := e.catalog.CreateWarehouse(e.ctx, core.Warehouse{Address: "1 Dock Road", FloorArea: decimal.NewFromInt(1000)})
	require.NoError(t, err)
	f.warehouse = w.ID
	c, err := e.catalog.CreateCategory(e.ctx, core.Category{Name: "Tools"})
	require.NoError(t, err)
	f.category = c.ID
	f.product = e.product(t, "Hammer", "4.00", f.category)
	u, err := e.catalog.CreateUser(e.ctx, core.User{Login: "alice", Email: "alice@example.com", Role: "customer"})
	require.NoError(t, err)
	f.user = u.ID
	f.stock = e.stock(t, f.product, f.warehouse, 15)
	e.sink.reset()
	return f
}

func (e *testEnv) product(t *testing.T, name, price string, category int64) int64 {
	t.Helper()
	p, err := e.catalog.CreateProduct(e.ctx, core.Product{
		Name:       name,
		Price:      decimal.RequireFromString(price),
		CategoryID: category,
	})
	require.NoError(t, err)
	return p.ID
}

func (e *testEnv) stock(t *testing.T, product, warehouse, qty int64) int64 {
	t.Helper()
	st, err := e.catalog.CreateStock(e.ctx, product, warehouse, qty)
	require.NoError(t, err)
	return st.ID
}

func (e *testEnv) quantity(t *testing.T, stockID int64) int64 {
	t.Helper()
	st, err := e.catalog.Stock.GetAnyByID(e.ctx, stockID)
	require.NoError(t, err)
	return st.Quantity
}

func (e *testEnv) orderCount(t *testing.T) int {
	t.Helper()
	page, err := e.orders.ListOrders(e.ctx, core.OrderFilter{ListFilter: core.ListFilter{IncludeArchived: true}})
	require.NoError(t, err)
	return page.Total
}

func line(product, qty int64) core.OrderLineRequest {
	return core.OrderLineRequest{ProductID: product, Quantity: qty}
}
