package web

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"warehouse-backend/internal/app"
)

func chiParam(r *http.Request, key string) string { return chi.URLParam(r, key) }

// entity resolves the {entity} URL parameter. Unknown names are a 404.
func (h *Handler) entity(w http.ResponseWriter, r *http.Request) (app.EntityAccess, bool) {
	e, err := h.svc.Entity(chiParam(r, "entity"))
	if err != nil {
		writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
		return nil, false
	}
	return e, true
}

// apiListEntity handles GET /api/{entity}.
// Query: page, page_size, include_archived, plus the entity's filters.
func (h *Handler) apiListEntity(w http.ResponseWriter, r *http.Request) {
	e, ok := h.entity(w, r)
	if !ok {
		return
	}
	params := app.ListParams{}
	for k, v := range r.URL.Query() {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}
	result, err := e.List(r.Context(), params)
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiGetEntity handles GET /api/{entity}/{id}. Archived rows are 404 unless
// include_archived=true.
func (h *Handler) apiGetEntity(w http.ResponseWriter, r *http.Request) {
	e, ok := h.entity(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	includeArchived, _ := strconv.ParseBool(r.URL.Query().Get("include_archived"))
	row, err := e.Get(r.Context(), id, includeArchived)
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	writeJSON(w, row)
}

// apiCreateEntity handles POST /api/{entity}. For orders this places an order.
func (h *Handler) apiCreateEntity(w http.ResponseWriter, r *http.Request) {
	e, ok := h.entity(w, r)
	if !ok {
		return
	}
	row, err := e.Create(r.Context(), decoder(r))
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, row)
}

type archiveResponse struct {
	ID      int64 `json:"id"`
	Success bool  `json:"success"`
}

// apiArchiveEntity handles POST /api/{entity}/{id}/archive. Archiving an
// archived row succeeds; a missing row reports success=false.
func (h *Handler) apiArchiveEntity(w http.ResponseWriter, r *http.Request) {
	h.setArchived(w, r, true)
}

// apiRestoreEntity handles POST /api/{entity}/{id}/restore.
func (h *Handler) apiRestoreEntity(w http.ResponseWriter, r *http.Request) {
	h.setArchived(w, r, false)
}

func (h *Handler) setArchived(w http.ResponseWriter, r *http.Request, archived bool) {
	e, ok := h.entity(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	op := e.Restore
	if archived {
		op = e.Archive
	}
	found, err := op(r.Context(), id)
	if err != nil {
		writeCoreError(w, r, err)
		return
	}
	writeJSON(w, archiveResponse{ID: id, Success: found})
}
