package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warehouse-backend/internal/app"
	"warehouse-backend/internal/audit"
	"warehouse-backend/internal/core"
	"warehouse-backend/internal/store/sqlstore"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	ctx := context.Background()
	store, err := sqlstore.OpenSQLite(ctx, ":memory:", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(store.Close)
	_, err = store.Migrate(ctx)
	require.NoError(t, err)

	rt := app.Wire(store, audit.NewLogPublisher(zerolog.Nop()), app.Options{
		TxTimeout:     5 * time.Second,
		DefaultStatus: "created",
		AuditBuffer:   256,
	}, zerolog.Nop())
	return NewHandler(rt.Service, "http://localhost:3000", zerolog.Nop())
}

func do(t *testing.T, h http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		r.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m), w.Body.String())
	return m
}

// create posts body to /api/<entity> and returns the new row's id.
func create(t *testing.T, h http.Handler, entity, body string) int64 {
	t.Helper()
	w := do(t, h, http.MethodPost, "/api/"+entity, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return int64(decodeBody(t, w)["id"].(float64))
}

type fixture struct {
	warehouse, product, user, stock int64
}

func seed(t *testing.T, h http.Handler) fixture {
	t.Helper()
	var f fixture
	f.warehouse = create(t, h, "warehouses", `{"address":"1 Dock Road","floor_area":"1200"}`)
	category := create(t, h, "categories", `{"name":"Tools"}`)
	f.product = create(t, h, "products", fmt.Sprintf(`{"name":"Hammer","price":"12.50","weight":"0.8","category_id":%d}`, category))
	f.user = create(t, h, "users", `{"login":"alice","email":"alice@example.com"}`)
	f.stock = create(t, h, "stock", fmt.Sprintf(`{"product_id":%d,"warehouse_id":%d,"quantity":10}`, f.product, f.warehouse))
	return f
}

func TestHealth(t *testing.T) {
	h := newTestHandler(t)
	w := do(t, h, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "sqlite", body["database"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestPlaceOrderOverHTTP(t *testing.T) {
	h := newTestHandler(t)
	f := seed(t, h)

	w := do(t, h, http.MethodPost, "/api/orders",
		fmt.Sprintf(`{"warehouse_id":%d,"user_id":%d,"lines":[{"product_id":%d,"quantity":3}]}`, f.warehouse, f.user, f.product),
		"X-Actor-ID", fmt.Sprint(f.user))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	order := decodeBody(t, w)
	assert.Equal(t, "37.5", order["total_price"])
	assert.Equal(t, "created", order["status_name"])
	assert.Len(t, order["lines"], 1)

	w = do(t, h, http.MethodGet, fmt.Sprintf("/api/stock/%d", f.stock), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 7, decodeBody(t, w)["quantity"])
}

func TestPlaceOrderInsufficientStock(t *testing.T) {
	h := newTestHandler(t)
	f := seed(t, h)

	w := do(t, h, http.MethodPost, "/api/orders",
		fmt.Sprintf(`{"warehouse_id":%d,"user_id":%d,"lines":[{"product_id":%d,"quantity":11}]}`, f.warehouse, f.user, f.product))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "DOMAIN_ERROR", body["code"])
	assert.Contains(t, body["error"], "short by 1")

	w = do(t, h, http.MethodGet, "/api/orders", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, decodeBody(t, w)["total"])
}

func TestPlaceOrderValidationField(t *testing.T) {
	h := newTestHandler(t)
	f := seed(t, h)

	w := do(t, h, http.MethodPost, "/api/orders",
		fmt.Sprintf(`{"warehouse_id":%d,"user_id":%d,"lines":[{"product_id":%d,"quantity":0}]}`, f.warehouse, f.user, f.product))
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])
	assert.Equal(t, "lines[0].quantity", body["field"])
}

func TestOrderStatusAndEmployee(t *testing.T) {
	h := newTestHandler(t)
	f := seed(t, h)
	orderID := create(t, h, "orders",
		fmt.Sprintf(`{"warehouse_id":%d,"user_id":%d,"lines":[{"product_id":%d,"quantity":1}]}`, f.warehouse, f.user, f.product))
	onHold := create(t, h, "statuses", `{"name":"on hold"}`)
	employee := create(t, h, "employees", fmt.Sprintf(`{"first_name":"Bob","last_name":"Stone","warehouse_id":%d}`, f.warehouse))

	w := do(t, h, http.MethodPut, fmt.Sprintf("/api/orders/%d/status", orderID), fmt.Sprintf(`{"status_id":%d}`, onHold))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "on hold", decodeBody(t, w)["status_name"])

	w = do(t, h, http.MethodPut, fmt.Sprintf("/api/orders/%d/employee", orderID), fmt.Sprintf(`{"employee_id":%d}`, employee))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Bob Stone", decodeBody(t, w)["employee_name"])

	w = do(t, h, http.MethodPut, fmt.Sprintf("/api/orders/%d/employee", orderID), `{"employee_id":null}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotContains(t, decodeBody(t, w), "employee_id")
}

func TestArchiveAndRestore(t *testing.T) {
	h := newTestHandler(t)
	f := seed(t, h)
	path := fmt.Sprintf("/api/products/%d", f.product)

	w := do(t, h, http.MethodPost, path+"/archive", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeBody(t, w)["success"])

	// Archiving twice converges.
	w = do(t, h, http.MethodPost, path+"/archive", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeBody(t, w)["success"])

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, path, "").Code)
	w = do(t, h, http.MethodGet, path+"?include_archived=true", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeBody(t, w)["archived"])

	w = do(t, h, http.MethodPost, path+"/restore", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, path, "").Code)

	w = do(t, h, http.MethodPost, "/api/products/9999/archive", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decodeBody(t, w)["success"])
}

func TestListFiltersAndPaging(t *testing.T) {
	h := newTestHandler(t)
	f := seed(t, h)
	for i := 0; i < 4; i++ {
		create(t, h, "warehouses", fmt.Sprintf(`{"address":"%d Harbour St","floor_area":"%d"}`, i, 100*(i+1)))
	}

	w := do(t, h, http.MethodGet, "/api/warehouses?address=harbour&page=2&page_size=3", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.EqualValues(t, 4, body["total"])
	assert.EqualValues(t, 2, body["pages"])
	assert.Len(t, body["items"], 1)

	w = do(t, h, http.MethodGet, "/api/warehouses?min_floor_area=300", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 3, decodeBody(t, w)["total"])

	w = do(t, h, http.MethodGet, fmt.Sprintf("/api/stock?warehouse_id=%d", f.warehouse), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decodeBody(t, w)["total"])

	w = do(t, h, http.MethodGet, "/api/warehouses?page_size=1000", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, core.MaxPageSize, decodeBody(t, w)["page_size"])

	for _, q := range []string{"page=0", "page=-2", "page_size=0"} {
		w = do(t, h, http.MethodGet, "/api/warehouses?"+q, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
}

func TestCatalogEndpoints(t *testing.T) {
	h := newTestHandler(t)
	f := seed(t, h)

	w := do(t, h, http.MethodPut, fmt.Sprintf("/api/products/%d/price", f.product), `{"price":"15.00"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "15", decodeBody(t, w)["price"])

	w = do(t, h, http.MethodPost, fmt.Sprintf("/api/stock/%d/adjust", f.stock), `{"delta":-4}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 6, decodeBody(t, w)["quantity"])

	w = do(t, h, http.MethodPost, fmt.Sprintf("/api/stock/%d/adjust", f.stock), `{"delta":-7}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestRequestErrors(t *testing.T) {
	h := newTestHandler(t)

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/spaceships", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/products/abc", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/products/42", "").Code)

	w := do(t, h, http.MethodPost, "/api/categories", `{"name":"x","colour":"red"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "body", decodeBody(t, w)["field"])

	w = do(t, h, http.MethodGet, "/api/warehouses", "", "X-Actor-ID", "nobody")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	big := `{"name":"` + strings.Repeat("a", 2<<20) + `"}`
	r := httptest.NewRequest(http.MethodPost, "/api/categories", bytes.NewBufferString(big))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestSchemas(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, http.MethodGet, "/api/schemas", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"orders"`)

	w = do(t, h, http.MethodGet, "/api/schemas/orders", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "warehouse_id")

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/schemas/nope", "").Code)
}

func TestCORS(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, http.MethodOptions, "/api/warehouses", "", "Origin", "http://localhost:3000")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	w = do(t, h, http.MethodGet, "/api/health", "", "Origin", "http://evil.test")
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
