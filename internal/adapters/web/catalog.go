package web

import (
	"net/http"

	"warehouse-backend/internal/app"
)

// apiUpdateProductPrice handles PUT /api/products/{id}/price.
// Body: { price }
func (h *Handler) apiUpdateProductPrice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body app.UpdatePriceRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	product, err := h.svc.UpdateProductPrice(r.Context(), id, body)
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	writeJSON(w, product)
}

// apiAdjustStock handles POST /api/stock/{id}/adjust.
// Body: { delta }
func (h *Handler) apiAdjustStock(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body app.AdjustStockRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	stock, err := h.svc.AdjustStock(r.Context(), id, body)
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	writeJSON(w, stock)
}

// apiListSchemas handles GET /api/schemas.
func (h *Handler) apiListSchemas(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string][]string{"schemas": h.svc.SchemaNames()})
}

// apiGetSchema handles GET /api/schemas/{name}.
func (h *Handler) apiGetSchema(w http.ResponseWriter, r *http.Request) {
	schema, err := h.svc.Schema(chiParam(r, "name"))
	if err != nil {
		writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
		return
	}
	writeJSON(w, schema)
}
