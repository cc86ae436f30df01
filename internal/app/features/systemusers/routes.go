// internal/app/features/systemusers/routes.go
package systemusers

import (
	"github.com/dalemusser/slothstore/internal/app/system/auth"
	"github.com/dalemusser/slothstore/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// MountRoutes registers the admin-only user management endpoints on r,
// which they share with the account routes under /api/auth. The admin
// middleware runs only for these paths.
func MountRoutes(r chi.Router, h *Handler, authMw *auth.Middleware) {
	r.Group(func(admin chi.Router) {
		admin.Use(authMw.Protect)
		admin.Use(auth.RequireRole(models.RoleAdmin))

		admin.Post("/add-user", h.ServeAdd)
		admin.Patch("/update-user/{id}", h.ServeUpdate)
		admin.Delete("/delete-user/{id}", h.ServeDelete)
	})
}
