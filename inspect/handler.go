// Package inspect serves a read-only JSON view of a module catalog and a bundle registry, for
// development tooling that needs to see which modules and surfaces an application declares.
package inspect

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/GoCodeAlone/voiper"
)

// BundleView is the JSON shape of a bundle.
type BundleView struct {
	Name        string   `json:"name"`
	Identifiers []string `json:"identifiers"`
}

type errorBody struct {
	Error string `json:"error"`
}

// Handler serves:
//
//	GET /modules          all catalog descriptors
//	GET /modules/{name}   one descriptor
//	GET /bundles          every bundle with its identifiers
//	GET /bundles/{name}   one bundle
//	GET /types            registered surface type names
//
// Either source may be nil; its routes then answer 404.
type Handler struct {
	router   chi.Router
	catalog  *voiper.Catalog
	registry *voiper.BundleRegistry
}

// NewHandler builds the inspection routes.
func NewHandler(catalog *voiper.Catalog, registry *voiper.BundleRegistry) *Handler {
	h := &Handler{
		router:   chi.NewRouter(),
		catalog:  catalog,
		registry: registry,
	}

	h.router.Use(middleware.GetHead)
	h.router.Get("/modules", h.listModules)
	h.router.Get("/modules/{name}", h.getModule)
	h.router.Get("/bundles", h.listBundles)
	h.router.Get("/bundles/{name}", h.getBundle)
	h.router.Get("/types", h.listTypes)
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) listModules(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		writeError(w, http.StatusNotFound, errors.New("no module catalog configured"))
		return
	}
	writeJSON(w, http.StatusOK, h.catalog.Descriptors())
}

func (h *Handler) getModule(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		writeError(w, http.StatusNotFound, errors.New("no module catalog configured"))
		return
	}
	d, err := h.catalog.Get(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *Handler) listBundles(w http.ResponseWriter, r *http.Request) {
	if h.registry == nil {
		writeError(w, http.StatusNotFound, errors.New("no bundle registry configured"))
		return
	}
	names := h.registry.Bundles()
	views := make([]BundleView, 0, len(names))
	for _, name := range names {
		ids, err := h.registry.Identifiers(name)
		if err != nil {
			// removed between the two reads
			continue
		}
		views = append(views, BundleView{Name: name, Identifiers: ids})
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *Handler) getBundle(w http.ResponseWriter, r *http.Request) {
	if h.registry == nil {
		writeError(w, http.StatusNotFound, errors.New("no bundle registry configured"))
		return
	}
	name := chi.URLParam(r, "name")
	ids, err := h.registry.Identifiers(name)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, BundleView{Name: name, Identifiers: ids})
}

func (h *Handler) listTypes(w http.ResponseWriter, r *http.Request) {
	if h.registry == nil {
		writeError(w, http.StatusNotFound, errors.New("no bundle registry configured"))
		return
	}
	writeJSON(w, http.StatusOK, h.registry.Types())
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorBody{Error: err.Error()})
}
