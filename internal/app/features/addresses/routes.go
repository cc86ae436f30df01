package addresses

import (
	"github.com/dalemusser/slothstore/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the caller's address book under /api/addresses.
func Routes(h *Handler, authMw *auth.Middleware) chi.Router {
	r := chi.NewRouter()
	r.Use(authMw.Protect)
	r.Get("/", h.ServeList)
	r.Post("/", h.ServeCreate)
	r.Put("/{id}", h.ServeUpdate)
	r.Delete("/{id}", h.ServeDelete)
	return r
}
