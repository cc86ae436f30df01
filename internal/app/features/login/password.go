package login

import (
	"context"
	"net/http"

	"github.com/dalemusser/slothstore/internal/app/system/authutil"
	"github.com/dalemusser/slothstore/internal/app/system/authz"
	"github.com/dalemusser/slothstore/internal/app/system/httpx"
	"github.com/dalemusser/slothstore/internal/app/system/inputval"
	"github.com/dalemusser/slothstore/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// ServeChangePassword handles PATCH /auth/change-password. Tokens issued
// before the change stop working; the response carries a fresh one.
func (h *Handler) ServeChangePassword(w http.ResponseWriter, r *http.Request) {
	_, uid, ok := authz.UserCtx(r)
	if !ok {
		httpx.Fail(w, http.StatusUnauthorized, "You are not logged in. Please log in to get access.")
		return
	}

	var req changePasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if res := inputval.Validate(req); res.HasErrors() {
		httpx.Fail(w, http.StatusBadRequest, res.First())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		httpx.ServerError(w, r, h.Log, "change password: load user failed", err, zap.String("user_id", uid.Hex()))
		return
	}
	if !authutil.CheckPassword(req.CurrentPassword, u.PasswordHash) {
		httpx.Fail(w, http.StatusUnauthorized, "Your current password is incorrect")
		return
	}
	if err := authutil.ValidatePassword(req.NewPassword); err != nil {
		httpx.Fail(w, http.StatusBadRequest, authutil.PasswordRules())
		return
	}

	h.setPasswordAndRespond(ctx, w, r, u.ID, req.NewPassword, func() {
		h.AuditLog.PasswordChanged(ctx, r, u.ID)
	})
}
