// internal/app/features/userinfo/handler.go
package userinfo

import (
	"net/http"

	"github.com/dalemusser/slothstore/internal/app/system/auth"
	"github.com/dalemusser/slothstore/internal/app/system/httpx"
)

// Handler reports who the caller is.
type Handler struct{}

// NewHandler creates a new userinfo handler.
func NewHandler() *Handler {
	return &Handler{}
}

// ServeUserInfo returns JSON with the caller's authentication status and
// identity. It never fails; a missing or invalid token is reported as
// anonymous.
//
//	{ "isAuthenticated": bool, "id": "...", "username": "...", "email": "...", "role": "..." }
func (h *Handler) ServeUserInfo(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		httpx.JSON(w, http.StatusOK, map[string]any{
			"isAuthenticated": false,
			"id":              "",
			"username":        "",
			"email":           "",
			"role":            "",
		})
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"isAuthenticated": true,
		"id":              user.ID,
		"username":        user.Username,
		"email":           user.Email,
		"role":            user.Role,
	})
}
