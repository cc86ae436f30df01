package login

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/slothstore/internal/app/system/authutil"
	"github.com/dalemusser/slothstore/internal/app/system/httpx"
	"github.com/dalemusser/slothstore/internal/app/system/normalize"
	"github.com/dalemusser/slothstore/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const msgBadCredentials = "Incorrect username/email or password"

// ServeLogin handles POST /auth/login with a username or email as loginId.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	loginID := normalize.LoginID(req.LoginID)
	if loginID == "" || req.Password == "" {
		httpx.Fail(w, http.StatusBadRequest, "Please provide username/email and password")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if h.Limiter != nil {
		if ok, reason := h.Limiter.Check(r, loginID); !ok {
			h.AuditLog.LoginFailedRateLimit(ctx, r, loginID)
			httpx.Fail(w, http.StatusTooManyRequests, reason)
			return
		}
	}

	u, err := h.Users.GetByLogin(ctx, loginID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		h.AuditLog.LoginFailedUserNotFound(ctx, r, loginID)
		httpx.Fail(w, http.StatusUnauthorized, msgBadCredentials)
		return
	}
	if err != nil {
		httpx.ServerError(w, r, h.Log, "login: lookup failed", err)
		return
	}
	if !authutil.CheckPassword(req.Password, u.PasswordHash) {
		h.AuditLog.LoginFailedWrongPassword(ctx, r, u.ID, loginID)
		httpx.Fail(w, http.StatusUnauthorized, msgBadCredentials)
		return
	}

	token, err := h.Tokens.Sign(u.ID)
	if err != nil {
		httpx.ServerError(w, r, h.Log, "login: sign token failed", err, zap.String("user_id", u.ID.Hex()))
		return
	}
	if h.Limiter != nil {
		h.Limiter.ResetAccount(loginID)
	}

	h.AuditLog.LoginSuccess(ctx, r, u.ID, loginID)
	httpx.Success(w, http.StatusOK, map[string]any{
		"token":    token,
		"username": u.Username,
		"role":     u.Role,
	})
}
