package repl

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warehouse-backend/internal/app"
	"warehouse-backend/internal/audit"
	"warehouse-backend/internal/store/sqlstore"
)

func newTestService(t *testing.T) app.ApplicationService {
	t.Helper()
	ctx := context.Background()
	store, err := sqlstore.OpenSQLite(ctx, ":memory:", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(store.Close)
	_, err = store.Migrate(ctx)
	require.NoError(t, err)
	return app.Wire(store, audit.NewLogPublisher(zerolog.Nop()), app.Options{
		TxTimeout:   5 * time.Second,
		AuditBuffer: 64,
	}, zerolog.Nop()).Service
}

func session(t *testing.T, svc app.ApplicationService, input string) string {
	t.Helper()
	var out bytes.Buffer
	Run(context.Background(), svc, bufio.NewReader(strings.NewReader(input)), &out)
	return out.String()
}

func TestNewOrderWizard(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	wh, err := svc.CreateWarehouse(ctx, app.CreateWarehouseRequest{Address: "3 Pier", FloorArea: decimal.NewFromInt(90)})
	require.NoError(t, err)
	cat, err := svc.CreateCategory(ctx, app.CreateCategoryRequest{Name: "Rope"})
	require.NoError(t, err)
	p, err := svc.CreateProduct(ctx, app.CreateProductRequest{Name: "Nylon Rope", Price: decimal.RequireFromString("2.20"), CategoryID: cat.ID})
	require.NoError(t, err)
	u, err := svc.CreateUser(ctx, app.CreateUserRequest{Login: "carol"})
	require.NoError(t, err)
	_, err = svc.CreateStock(ctx, app.CreateStockRequest{ProductID: p.ID, WarehouseID: wh.ID, Quantity: 9})
	require.NoError(t, err)

	input := fmt.Sprintf("/new-order %d %d\nbogus\n%d 4\ndone\n/stock\n/quit\n", wh.ID, u.ID, p.ID)
	out := session(t, svc, input)

	assert.Contains(t, out, "Invalid format")
	assert.Contains(t, out, "Order placed (ID: 1, Status: created)")
	assert.Contains(t, out, "8.80")
	assert.Contains(t, out, `"quantity": 5`)
	assert.Contains(t, out, "Goodbye!")
}

func TestConsoleErrors(t *testing.T) {
	svc := newTestService(t)

	out := session(t, svc, "hello\n/order 77\n/new-order\nx\n")
	assert.Contains(t, out, "Commands start with '/'")
	assert.Contains(t, out, "Error: not found: order 77 not found")
	assert.Contains(t, out, `Invalid id "x"`)
}
