// internal/app/features/userinfo/routes.go
package userinfo

import (
	"github.com/dalemusser/slothstore/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// MountRoutes registers GET /me on the supplied router. The token is
// optional; Identify attaches the user when one is presented.
func MountRoutes(r chi.Router, h *Handler, authMw *auth.Middleware) {
	r.With(authMw.Identify).Get("/me", h.ServeUserInfo)
}
