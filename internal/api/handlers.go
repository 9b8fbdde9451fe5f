package api

import (
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// maxDocumentBytes bounds uploaded notation documents.
const maxDocumentBytes = 10 << 20

// Handler holds API route handlers.
type Handler struct {
	svc ChartService
}

// NewHandler creates a new Handler.
func NewHandler(svc ChartService) *Handler {
	return &Handler{svc: svc}
}

// chartPath extracts the document path from the URL wildcard.
// Supports encoded slashes from OpenAPI clients (e.g. albums%2Fsong.xml).
func chartPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ListCharts handles GET /api/charts.
//
//	@Summary		List catalogued charts
//	@Tags			charts
//	@Produce		json
//	@Param			limit	query		int		false	"Page size"
//	@Param			offset	query		int		false	"Page offset"
//	@Param			status	query		string	false	"Filter by status"	Enums(compiled, failed)
//	@Success		200		{object}	ChartListResponse
//	@Security		BearerAuth
//	@Router			/charts [get]
func (h *Handler) ListCharts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	charts, total, err := h.svc.List(limit, offset, q.Get("status"))
	if err != nil {
		slog.Error("list charts failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if charts == nil {
		charts = []Chart{}
	}
	writeJSON(w, http.StatusOK, ChartListResponse{Charts: charts, Total: total})
}

// GetChart handles GET /api/charts/*.
//
//	@Summary		Get one catalogue entry by document path
//	@Tags			charts
//	@Produce		json
//	@Param			path	path		string	true	"Document path"
//	@Success		200		{object}	Chart
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/charts/{path} [get]
func (h *Handler) GetChart(w http.ResponseWriter, r *http.Request) {
	path := chartPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	chart, err := h.svc.Get(path)
	if err != nil {
		writeError(w, err, "get chart", path)
		return
	}
	writeJSON(w, http.StatusOK, chart)
}

// Search handles GET /api/charts/search.
//
//	@Summary		Search charts by path, title, artist or arrangement
//	@Tags			charts
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/charts/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if results == nil {
		results = []Chart{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// CompileUpload handles POST /api/compile.
//
//	@Summary		Compile an uploaded notation document
//	@Description	The body is the raw XML document. Nothing is stored.
//	@Tags			compile
//	@Accept			xml
//	@Produce		json
//	@Success		200	{object}	CompileResponse
//	@Failure		400	{object}	errResponse
//	@Failure		422	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/compile [post]
func (h *Handler) CompileUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxDocumentBytes)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
		return
	}
	if len(data) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("document body is required"))
		return
	}
	res, err := h.svc.CompileBytes(data)
	if err != nil {
		writeError(w, err, "compile upload", "")
		return
	}
	writeJSON(w, http.StatusOK, newCompileResponse(res))
}

// CompileAll handles POST /api/compile-all.
//
//	@Summary		Compile every new or changed document
//	@Tags			compile
//	@Produce		json
//	@Param			force	query		bool	false	"Recompile unchanged documents too"
//	@Success		200		{object}	CompileAllResponse
//	@Security		BearerAuth
//	@Router			/compile-all [post]
func (h *Handler) CompileAll(w http.ResponseWriter, r *http.Request) {
	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))
	sum, err := h.svc.CompileAll(r.Context(), force)
	if err != nil {
		writeError(w, err, "compile all", "")
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// Recompile handles POST /api/recompile/*.
//
//	@Summary		Recompile one document and refresh its artifacts
//	@Tags			compile
//	@Produce		json
//	@Param			path	path		string	true	"Document path"
//	@Success		200		{object}	Chart
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/recompile/{path} [post]
func (h *Handler) Recompile(w http.ResponseWriter, r *http.Request) {
	path := chartPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	chart, err := h.svc.Compile(r.Context(), path)
	if err != nil {
		writeError(w, err, "recompile", path)
		return
	}
	writeJSON(w, http.StatusOK, chart)
}

// MIDI handles GET /api/midi/*.
//
//	@Summary		Render the hardest difficulty of a document as MIDI
//	@Tags			render
//	@Produce		audio/midi
//	@Param			path	path	string	true	"Document path"
//	@Success		200		{file}	binary
//	@Failure		404		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/midi/{path} [get]
func (h *Handler) MIDI(w http.ResponseWriter, r *http.Request) {
	path := chartPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	data, err := h.svc.Preview(path)
	if err != nil {
		writeError(w, err, "midi preview", path)
		return
	}
	w.Header().Set("Content-Type", "audio/midi")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		slog.Error("write midi failed", slog.String("path", path), slog.String("error", err.Error()))
	}
}

// Report handles GET /api/report/*.
//
//	@Summary		Plain text summary of a compiled document
//	@Tags			render
//	@Produce		plain
//	@Param			path	path		string	true	"Document path"
//	@Success		200		{string}	string
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/report/{path} [get]
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	path := chartPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	text, err := h.svc.Report(path)
	if err != nil {
		writeError(w, err, "report", path)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, text)
}
