// internal/app/features/auditlog/routes.go
package auditlog

import (
	"github.com/dalemusser/slothstore/internal/app/system/auth"
	"github.com/dalemusser/slothstore/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the audit log under /api/audit. Admin only.
func Routes(h *Handler, authMw *auth.Middleware) chi.Router {
	r := chi.NewRouter()
	r.Use(authMw.Protect)
	r.Use(auth.RequireRole(models.RoleAdmin))

	r.Get("/", h.ServeList)
	r.Get("/categories", h.ServeCategories)
	return r
}
