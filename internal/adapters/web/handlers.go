package web

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"warehouse-backend/internal/app"
	"warehouse-backend/internal/core"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc    app.ApplicationService
	router chi.Router
	log    zerolog.Logger
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins string, log zerolog.Logger) http.Handler {
	h := &Handler{svc: svc, log: log}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(log))
	r.Use(Recoverer(log))
	r.Use(CORS(allowedOrigins))

	// ── Health (public) ───────────────────────────────────────────────────────
	r.Get("/api/health", h.health)

	r.Group(func(r chi.Router) {
		r.Use(RequestBodyLimit(1 << 20)) // 1 MB
		r.Use(Actor)

		// ── Orders ────────────────────────────────────────────────────────────
		r.Put("/api/orders/{id}/status", h.apiUpdateOrderStatus)
		r.Put("/api/orders/{id}/employee", h.apiAssignEmployee)

		// ── Catalog ───────────────────────────────────────────────────────────
		r.Put("/api/products/{id}/price", h.apiUpdateProductPrice)
		r.Post("/api/stock/{id}/adjust", h.apiAdjustStock)

		// ── Request schemas ───────────────────────────────────────────────────
		r.Get("/api/schemas", h.apiListSchemas)
		r.Get("/api/schemas/{name}", h.apiGetSchema)

		// ── Every entity, orders included ─────────────────────────────────────
		r.Get("/api/{entity}", h.apiListEntity)
		r.Post("/api/{entity}", h.apiCreateEntity)
		r.Get("/api/{entity}/{id}", h.apiGetEntity)
		r.Post("/api/{entity}/{id}/archive", h.apiArchiveEntity)
		r.Post("/api/{entity}/{id}/restore", h.apiRestoreEntity)
	})

	h.router = r
	return r
}

// health returns service status and the store dialect.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Health(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("health check failed")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(res)
		return
	}
	writeJSON(w, res)
}

// pathID parses the {id} URL parameter. It writes a 400 and returns false
// when the parameter is not a positive integer.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, r, "invalid id "+strconv.Quote(raw), "BAD_REQUEST", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// decoder returns a JSON decoder for the request body that rejects unknown
// fields.
func decoder(r *http.Request) func(v any) error {
	return func(v any) error {
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		return dec.Decode(v)
	}
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := decoder(r)(v); err != nil {
		verr := core.Validation("body", "invalid request body")
		verr.Err = err
		writeCoreError(w, r, verr)
		return false
	}
	return true
}
