package core_test

import (
	"math"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"warehouse-backend/internal/core"
)

func TestPlaceOrder_DecrementsStockAndTotals(t *testing.T) {
	e := newEnv(t, core.OrderServiceConfig{})
	f := e.seed(t)

	order, err := e.orders.PlaceOrder(e.ctx, core.PlaceOrderRequest{
		WarehouseID: f.warehouse,
		UserID:      f.user,
		Lines:       []core.OrderLineRequest{line(f.product, 5)},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(10), e.quantity(t, f.stock))
	assert.True(t, decimal.RequireFromString("20").Equal(order.TotalPrice), order.TotalPrice.String())
	assert.Equal(t, "created", order.StatusName)
	assert.Equal(t, "alice", order.UserLogin)
	require.Len(t, order.Lines, 1)
	assert.Equal(t, "Hammer", order.Lines[0].ProductName)
	assert.True(t, decimal.RequireFromString("4").Equal(order.Lines[0].UnitPrice))
}

func TestPlaceOrder_InsufficientStockLeavesNothingBehind(t *testing.T) {
	e := newEnv(t, core.OrderServiceConfig{})
	f := e.seed(t)
	other := e.product(t, "Saw", "10.00", f.category)
	otherStock := e.stock(t, other, f.warehouse, 50)
	e.sink.reset()

	// The first line fits; the second does not, so the first must roll back.
	_, err := e.orders.PlaceOrder(e.ctx, core.PlaceOrderRequest{
		WarehouseID: f.warehouse,
		UserID:      f.user,
		Lines:       []core.OrderLineRequest{line(other, 5), line(f.product, 20)},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrDomain)
	assert.Contains(t, err.Error(), "insufficient stock")
	assert.Contains(t, err.Error(), "short by 5")

	assert.Equal(t, int64(15), e.quantity(t, f.stock))
	assert.Equal(t, int64(50), e.quantity(t, otherStock))
	assert.Equal(t, 0, e.orderCount(t))
	assert.Empty(t, e.sink.all())
}

func TestPlaceOrder_MergesRepeatedProducts(t *testing.T) {
	e := newEnv(t, core.OrderServiceConfig{})
	f := e.seed(t)

	order, err := e.orders.PlaceOrder(e.ctx, core.PlaceOrderRequest{
		WarehouseID: f.warehouse,
		UserID:      f.user,
		Lines:       []core.OrderLineRequest{line(f.product, 6), line(f.product, 6)},
	})
	require.NoError(t, err)
	require.Len(t, order.Lines, 1)
	assert.Equal(t, int64(12), order.Lines[0].Quantity)
	assert.Equal(t, int64(3), e.quantity(t, f.stock))

	// Merged demand is checked as a whole.
	_, err = e.orders.PlaceOrder(e.ctx, core.PlaceOrderRequest{
		WarehouseID: f.warehouse,
		UserID:      f.user,
		Lines:       []core.OrderLineRequest{line(f.product, 2), line(f.product, 2)},
	})
	assert.ErrorIs(t, err, core.ErrDomain)
	assert.Equal(t, int64(3), e.quantity(t, f.stock))
}

func TestPlaceOrder_Validation(t *testing.T) {
	e := newEnv(t, core.OrderServiceConfig{})
	f := e.seed(t)

	cases := []struct {
		name  string
		lines []core.OrderLineRequest
		field string
	}{
		{"no lines", nil, "lines"},
		{"zero quantity", []core.OrderLineRequest{line(f.product, 1), line(f.product, 0)}, "lines[1].quantity"},
		{"negative quantity", []core.OrderLineRequest{line(f.product, -3)}, "lines[0].quantity"},
		{"unknown product", []core.OrderLineRequest{line(f.product, 1), line(9999, 1)}, "lines[1].product_id"},
		{"merged quantity overflows", []core.OrderLineRequest{line(f.product, math.MaxInt64), line(f.product, 1)}, "lines[1].quantity"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.orders.PlaceOrder(e.ctx, core.PlaceOrderRequest{WarehouseID: f.warehouse, UserID: f.user, Lines: tc.lines})
			require.ErrorIs(t, err, core.ErrValidation)
			var cerr *core.Error
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, tc.field, cerr.Field)
		})
	}
	assert.Equal(t, int64(15), e.quantity(t, f.stock))
	assert.Zero(t, e.orderCount(t))
	assert.Empty(t, e.sink.all())
}

func TestPlaceOrder_ArchivedReferences(t *testing.T) {
	e := newEnv(t, core.OrderServiceConfig{})
	f := e.seed(t)
	req := core.PlaceOrderRequest{WarehouseID: f.warehouse, UserID: f.user, Lines: []core.OrderLineRequest{line(f.product, 1)}}

	t.Run("product", func(t *testing.T) {
		_, err := e.catalog.Products.Archive(e.ctx, f.product)
		require.NoError(t, err)
		defer e.catalog.Products.Restore(e.ctx, f.product)

		_, err = e.orders.PlaceOrder(e.ctx, req)
		assert.ErrorIs(t, err, core.ErrValidation)
	})
	t.Run("warehouse", func(t *testing.T) {
		_, err := e.catalog.Warehouses.Archive(e.ctx, f.warehouse)
		require.NoError(t, err)
		defer e.catalog.Warehouses.Restore(e.ctx, f.warehouse)

		_, err = e.orders.PlaceOrder(e.ctx, req)
		assert.ErrorIs(t, err, core.ErrDomain)
		assert.NotErrorIs(t, err, core.ErrNotFound)
	})
	t.Run("user", func(t *testing.T) {
		_, err := e.catalog.Users.Archive(e.ctx, f.user)
		require.NoError(t, err)
		defer e.catalog.Users.Restore(e.ctx, f.user)

		_, err = e.orders.PlaceOrder(e.ctx, req)
		assert.ErrorIs(t, err, core.ErrDomain)
	})
	t.Run("missing warehouse", func(t *testing.T) {
		bad := req
		bad.WarehouseID = 9999
		_, err := e.orders.PlaceOrder(e.ctx, bad)
		assert.ErrorIs(t, err, core.ErrDomain)
	})
	t.Run("archived stock row", func(t *testing.T) {
		_, err := e.catalog.Stock.Archive(e.ctx, f.stock)
		require.NoError(t, err)
		defer e.catalog.Stock.Restore(e.ctx, f.stock)

		_, err = e.orders.PlaceOrder(e.ctx, req)
		assert.ErrorIs(t, err, core.ErrDomain)
		assert.Contains(t, err.Error(), "not stocked")
	})

	assert.Equal(t, 0, e.orderCount(t))
	assert.Equal(t, int64(15), e.quantity(t, f.stock))
}

func TestPlaceOrder_UnstockedAtWarehouse(t *testing.T) {
	e := newEnv(t, core.OrderServiceConfig{})
	f := e.seed(t)
	w2, err := e.catalog.CreateWarehouse(e.ctx, core.Warehouse{Address: "2 Quay", FloorArea: decimal.NewFromInt(10)})
	require.NoError(t, err)

	_, err = e.orders.PlaceOrder(e.ctx, core.PlaceOrderRequest{WarehouseID: w2.ID, UserID: f.user, Lines: []core.OrderLineRequest{line(f.product, 1)}})
	assert.ErrorIs(t, err, core.ErrDomain)
	assert.Contains(t, err.Error(), "not stocked")
}

func TestPlaceOrder_PriceSnapshot(t *testing.T) {
	e := newEnv(t, core.OrderServiceConfig{})
	f := e.seed(t)

	order, err := e.orders.PlaceOrder(e.ctx, core.PlaceOrderRequest{WarehouseID: f.warehouse, UserID: f.user, Lines: []core.OrderLineRequest{line(f.product, 2)}})
	require.NoError(t, err)

	_, err = e.catalog.UpdateProductPrice(e.ctx, f.product, decimal.RequireFromString("99.99"))
	require.NoError(t, err)

	again, err := e.orders.GetOrder(e.ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("8").Equal(again.TotalPrice))
	assert.True(t, decimal.RequireFromString("4").Equal(again.Lines[0].UnitPrice))
}

func TestPlaceOrder_ConcurrentNeverOversells(t *testing.T) {
	envs := map[string]func(*testing.T, core.OrderServiceConfig) *testEnv{
		"sqlite":   newEnv,
		"postgres": newPostgresEnv,
	}
	for name, open := range envs {
		t.Run(name, func(t *testing.T) {
			placeConcurrently(t, open(t, core.OrderServiceConfig{}))
		})
	}
}

// placeConcurrently races eight orders of 4 units for the 15 in stock.
func placeConcurrently(t *testing.T, e *testEnv) {
	t.Helper()
	f := e.seed(t)

	var placed, refused atomic.Int64
	var g errgroup.Group
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			_, err := e.orders.PlaceOrder(e.ctx, core.PlaceOrderRequest{
				WarehouseID: f.warehouse,
				UserID:      f.user,
				Lines:       []core.OrderLineRequest{line(f.product, 4)},
			})
			switch {
			case err == nil:
				placed.Add(1)
			case core.KindOf(err) == core.KindDomain || core.KindOf(err) == core.KindConflict:
				refused.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int64(3), placed.Load())
	assert.Equal(t, int64(5), refused.Load())
	assert.Equal(t, int64(3), e.quantity(t, f.stock))
	assert.Equal(t, 3, e.orderCount(t))
}

func TestPlaceOrder_MissingDefaultStatus(t *testing.T) {
	e := newEnv(t, core.OrderServiceConfig{DefaultStatus: "pending-review"})
	f := e.seed(t)

	_, err := e.orders.PlaceOrder(e.ctx, core.PlaceOrderRequest{WarehouseID: f.warehouse, UserID: f.user, Lines: []core.OrderLineRequest{line(f.product, 1)}})
	assert.ErrorIs(t, err, core.ErrDomain)
	assert.Equal(t, int64(15), e.quantity(t, f.stock))
}

func TestPlaceOrder_AuditEvents(t *testing.T) {
	e := newEnv(t, core.OrderServiceConfig{})
	f := e.seed(t)

	order, err := e.orders.PlaceOrder(e.ctx, core.PlaceOrderRequest{WarehouseID: f.warehouse, UserID: f.user, Lines: []core.OrderLineRequest{line(f.product, 1)}})
	require.NoError(t, err)

	events := e.sink.all()
	require.Len(t, events, 3)
	assert.Equal(t, core.EntityStock, events[0].TableName)
	assert.Equal(t, core.OpUpdate, events[0].Operation)
	assert.Equal(t, core.EntityOrder, events[1].TableName)
	assert.Equal(t, order.ID, events[1].RecordID)
	assert.Equal(t, core.EntityOrderLine, events[2].TableName)
	for _, ev := range events {
		require.NotNil(t, ev.UserID)
		assert.Equal(t, f.user, *ev.UserID)
		assert.False(t, ev.OccurredAt.IsZero())
	}
}

func TestUpdateStatus(t *testing.T) {
	e := newEnv(t, core.OrderServiceConfig{})
	f := e.seed(t)
	order, err := e.orders.PlaceOrder(e.ctx, core.PlaceOrderRequest{WarehouseID: f.warehouse, UserID: f.user, Lines: []core.OrderLineRequest{line(f.product, 1)}})
	require.NoError(t, err)
	held, err := e.catalog.CreateStatus(e.ctx, core.OrderStatus{Name: "held"})
	require.NoError(t, err)

	updated, err := e.orders.UpdateStatus(e.ctx, order.ID, held.ID)
	require.NoError(t, err)
	assert.Equal(t, "held", updated.StatusName)
	assert.False(t, updated.UpdatedAt.Before(order.UpdatedAt))

	_, err = e.orders.UpdateStatus(e.ctx, order.ID, 9999)
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = e.catalog.Statuses.Archive(e.ctx, held.ID)
	require.NoError(t, err)
	_, err = e.orders.UpdateStatus(e.ctx, order.ID, held.ID)
	assert.ErrorIs(t, err, core.ErrDomain)

	_, err = e.orders.UpdateStatus(e.ctx, 9999, held.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestUpdateStatus_StrictPolicy(t *testing.T) {
	policy, err := core.ParseStatusPolicy("created->assembling, assembling->shipped")
	require.NoError(t, err)
	e := newEnv(t, core.OrderServiceConfig{Policy: policy})
	f := e.seed(t)
	order, err := e.orders.PlaceOrder(e.ctx, core.PlaceOrderRequest{WarehouseID: f.warehouse, UserID: f.user, Lines: []core.OrderLineRequest{line(f.product, 1)}})
	require.NoError(t, err)

	statuses, err := e.catalog.Statuses.GetPaged(e.ctx, core.StatusFilter{})
	require.NoError(t, err)
	byName := map[string]int64{}
	for _, s := range statuses.Items {
		byName[s.Name] = s.ID
	}

	_, err = e.orders.UpdateStatus(e.ctx, order.ID, byName["shipped"])
	assert.ErrorIs(t, err, core.ErrDomain)

	moved, err := e.orders.UpdateStatus(e.ctx, order.ID, byName["assembling"])
	require.NoError(t, err)
	assert.Equal(t, "assembling", moved.StatusName)

	_, err = e.orders.UpdateStatus(e.ctx, order.ID, byName["assembling"])
	assert.NoError(t, err, "staying put is always allowed")
}

func TestAssignEmployee(t *testing.T) {
	e := newEnv(t, core.OrderServiceConfig{})
	f := e.seed(t)
	order, err := e.orders.PlaceOrder(e.ctx, core.PlaceOrderRequest{WarehouseID: f.warehouse, UserID: f.user, Lines: []core.OrderLineRequest{line(f.product, 1)}})
	require.NoError(t, err)
	emp, err := e.catalog.CreateEmployee(e.ctx, core.Employee{FirstName: "Dana", LastName: "Okafor", WarehouseID: &f.warehouse})
	require.NoError(t, err)

	assigned, err := e.orders.AssignEmployee(e.ctx, order.ID, &emp.ID)
	require.NoError(t, err)
	require.NotNil(t, assigned.EmployeeID)
	assert.Equal(t, emp.ID, *assigned.EmployeeID)
	assert.Equal(t, "Dana Okafor", assigned.EmployeeName)

	// An archived employee cannot take the order, and the old one stays.
	_, err = e.catalog.Employees.Archive(e.ctx, emp.ID)
	require.NoError(t, err)
	other, err := e.catalog.CreateEmployee(e.ctx, core.Employee{FirstName: "Lee", LastName: "Marsh"})
	require.NoError(t, err)
	_, err = e.catalog.Employees.Archive(e.ctx, other.ID)
	require.NoError(t, err)

	_, err = e.orders.AssignEmployee(e.ctx, order.ID, &other.ID)
	assert.ErrorIs(t, err, core.ErrDomain)
	current, err := e.orders.GetOrder(e.ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, current.EmployeeID)
	assert.Equal(t, emp.ID, *current.EmployeeID)

	cleared, err := e.orders.AssignEmployee(e.ctx, order.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, cleared.EmployeeID)
}
