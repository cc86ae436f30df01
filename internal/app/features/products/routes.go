// internal/app/features/products/routes.go
package products

import (
	"github.com/dalemusser/slothstore/internal/app/system/auth"
	"github.com/dalemusser/slothstore/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the catalog under /api/products. Reads are public; writes,
// stats and uploads are admin-only.
func Routes(h *Handler, authMw *auth.Middleware) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)

	r.Group(func(pr chi.Router) {
		pr.Use(authMw.Protect)
		pr.Use(auth.RequireRole(models.RoleAdmin))
		pr.Get("/stats", h.ServeStats)
		pr.Post("/", h.ServeCreate)
		pr.Post("/images", h.ServeUploadImages)
		pr.Put("/{id}", h.ServeUpdate)
		pr.Delete("/{id}", h.ServeDelete)
	})

	r.Get("/{id}", h.ServeGet)
	return r
}
