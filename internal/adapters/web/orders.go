package web

import (
	"net/http"

	"warehouse-backend/internal/app"
)

// apiUpdateOrderStatus handles PUT /api/orders/{id}/status.
// Body: { status_id }
func (h *Handler) apiUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body app.UpdateStatusRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	order, err := h.svc.UpdateOrderStatus(r.Context(), id, body)
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	writeJSON(w, order)
}

// apiAssignEmployee handles PUT /api/orders/{id}/employee.
// Body: { employee_id } where null clears the assignment.
func (h *Handler) apiAssignEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body app.AssignEmployeeRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	order, err := h.svc.AssignEmployee(r.Context(), id, body)
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	writeJSON(w, order)
}
