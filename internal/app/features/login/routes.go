// internal/app/features/login/routes.go
package login

import (
	"github.com/dalemusser/slothstore/internal/app/system/auth"
	"github.com/dalemusser/slothstore/internal/app/system/ratelimit"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the account endpoints under /api/auth. resetLimiter caps
// OTP requests and OTP guesses per client IP; nil disables it.
func Routes(h *Handler, authMw *auth.Middleware, resetLimiter *ratelimit.Limiter) chi.Router {
	r := chi.NewRouter()

	r.Post("/signup", h.ServeSignup)
	r.Post("/login", h.ServeLogin)
	r.Post("/reset-password", h.ServeResetPassword)

	r.Group(func(rr chi.Router) {
		if resetLimiter != nil {
			rr.Use(resetLimiter.Middleware)
		}
		rr.Post("/forgot-password", h.ServeForgotPassword)
		rr.Post("/verify-otp", h.ServeVerifyOTP)
	})

	r.With(authMw.Protect).Patch("/change-password", h.ServeChangePassword)
	return r
}
