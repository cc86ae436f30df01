package login

import (
	"context"
	"errors"
	"net/http"

	userstore "github.com/dalemusser/slothstore/internal/app/store/users"
	"github.com/dalemusser/slothstore/internal/app/system/authutil"
	"github.com/dalemusser/slothstore/internal/app/system/httpx"
	"github.com/dalemusser/slothstore/internal/app/system/inputval"
	"github.com/dalemusser/slothstore/internal/app/system/normalize"
	"github.com/dalemusser/slothstore/internal/app/system/timeouts"
	"github.com/dalemusser/slothstore/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const msgAccountExists = "Username or email already exists!"

// ServeSignup handles POST /auth/signup. New accounts always get the user role.
func (h *Handler) ServeSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if res := inputval.Validate(req); res.HasErrors() {
		httpx.Fail(w, http.StatusBadRequest, res.First())
		return
	}
	username := normalize.Username(req.Username)
	if username == "" {
		httpx.Fail(w, http.StatusBadRequest, "Username is required.")
		return
	}
	if err := authutil.ValidatePassword(req.Password); err != nil {
		httpx.Fail(w, http.StatusBadRequest, authutil.PasswordRules())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	taken, err := h.Users.Taken(ctx, username, req.Email, primitive.NilObjectID)
	if err != nil {
		httpx.ServerError(w, r, h.Log, "signup: uniqueness check failed", err)
		return
	}
	if taken {
		httpx.Fail(w, http.StatusBadRequest, msgAccountExists)
		return
	}

	hash, err := authutil.HashPassword(req.Password)
	if err != nil {
		httpx.ServerError(w, r, h.Log, "signup: hash failed", err)
		return
	}
	u, err := h.Users.Create(ctx, models.User{
		Username:     username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         models.RoleUser,
	})
	if errors.Is(err, userstore.ErrDuplicate) {
		httpx.Fail(w, http.StatusBadRequest, msgAccountExists)
		return
	}
	if err != nil {
		httpx.ServerError(w, r, h.Log, "signup: create failed", err)
		return
	}

	token, err := h.Tokens.Sign(u.ID)
	if err != nil {
		httpx.ServerError(w, r, h.Log, "signup: sign token failed", err)
		return
	}

	h.AuditLog.Signup(ctx, r, u.ID, u.Username)
	httpx.Success(w, http.StatusCreated, map[string]any{
		"token": token,
		"data":  map[string]any{"user": u},
	})
}
