// internal/app/features/products/list.go
package products

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/slothstore/internal/app/system/httpx"
	"github.com/dalemusser/slothstore/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
)

// ServeList handles GET /products. An optional ?type= filters by product type.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	typ := strings.TrimSpace(r.URL.Query().Get("type"))
	list, err := h.Catalog.List(ctx, typ)
	if err != nil {
		httpx.ServerError(w, r, h.Log, "products: list failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

// ServeGet handles GET /products/{id}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		httpx.Fail(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Catalog.GetByID(ctx, id)
	if isNotFound(err) {
		httpx.Fail(w, http.StatusNotFound, msgProductNotFound)
		return
	}
	if err != nil {
		httpx.ServerError(w, r, h.Log, "products: get failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}
