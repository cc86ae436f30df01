// internal/app/features/orders/routes.go
package orders

import (
	"github.com/dalemusser/slothstore/internal/app/system/auth"
	"github.com/dalemusser/slothstore/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the cart and order endpoints under /api/orders. Every route
// requires a logged-in user; status-all is admin-only.
func Routes(h *Handler, authMw *auth.Middleware) chi.Router {
	r := chi.NewRouter()
	r.Use(authMw.Protect)

	r.Post("/", h.ServeMerge)
	r.Put("/", h.ServeSet)
	r.Get("/", h.ServeGetCart)
	r.Post("/place-order", h.ServePlace)
	r.Get("/status", h.ServeHistory)
	r.Patch("/status", h.ServeUpdateStatus)
	r.With(auth.RequireRole(models.RoleAdmin)).Get("/status-all", h.ServeHistoryAll)

	return r
}
