package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc ChartService, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Catalogue. Search is registered before the wildcard.
	r.Get("/charts", h.ListCharts)
	r.Get("/charts/search", h.Search)
	r.Get("/charts/*", h.GetChart)

	// Compilation.
	r.Post("/compile", h.CompileUpload)
	r.Post("/compile-all", h.CompileAll)
	r.Post("/recompile/*", h.Recompile)

	// Renderings.
	r.Get("/midi/*", h.MIDI)
	r.Get("/report/*", h.Report)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
