package systemusers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	userstore "github.com/dalemusser/slothstore/internal/app/store/users"
	"github.com/dalemusser/slothstore/internal/app/system/authutil"
	"github.com/dalemusser/slothstore/internal/app/system/authz"
	"github.com/dalemusser/slothstore/internal/app/system/httpx"
	"github.com/dalemusser/slothstore/internal/app/system/inputval"
	"github.com/dalemusser/slothstore/internal/app/system/normalize"
	"github.com/dalemusser/slothstore/internal/app/system/timeouts"
	"github.com/dalemusser/slothstore/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	msgUserNotFound  = "User not found!"
	msgAccountExists = "Username or email already exists!"
)

// ServeAdd handles POST /auth/add-user.
func (h *Handler) ServeAdd(w http.ResponseWriter, r *http.Request) {
	actor, _ := authz.ActorFrom(r)

	var req addRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if res := inputval.Validate(req); res.HasErrors() {
		httpx.Fail(w, http.StatusBadRequest, res.First())
		return
	}
	if err := authutil.ValidatePassword(req.Password); err != nil {
		httpx.Fail(w, http.StatusBadRequest, authutil.PasswordRules())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	taken, err := h.Users.Taken(ctx, req.Username, req.Email, primitive.NilObjectID)
	if err != nil {
		httpx.ServerError(w, r, h.Log, "add user: uniqueness check failed", err)
		return
	}
	if taken {
		httpx.Fail(w, http.StatusBadRequest, msgAccountExists)
		return
	}

	hash, err := authutil.HashPassword(req.Password)
	if err != nil {
		httpx.ServerError(w, r, h.Log, "add user: hash failed", err)
		return
	}
	u, err := h.Users.Create(ctx, models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         models.Role(normalize.Role(req.Role)),
	})
	if errors.Is(err, userstore.ErrDuplicate) {
		httpx.Fail(w, http.StatusBadRequest, msgAccountExists)
		return
	}
	if err != nil {
		httpx.ServerError(w, r, h.Log, "add user: create failed", err)
		return
	}

	h.AuditLog.UserCreated(ctx, r, actor.UserID, u.ID, string(u.Role))
	httpx.Success(w, http.StatusCreated, map[string]any{"data": map[string]any{"user": u}})
}

// ServeUpdate handles PATCH /auth/update-user/{id}.
func (h *Handler) ServeUpdate(w http.ResponseWriter, r *http.Request) {
	actor, _ := authz.ActorFrom(r)
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	var req updateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if res := inputval.Validate(req); res.HasErrors() {
		httpx.Fail(w, http.StatusBadRequest, res.First())
		return
	}

	var upd userstore.Update
	var fields []string
	if req.Username != nil {
		upd.Username = req.Username
		fields = append(fields, "username")
	}
	if req.Email != nil {
		upd.Email = req.Email
		fields = append(fields, "email")
	}
	if req.Role != nil {
		role := models.Role(normalize.Role(*req.Role))
		upd.Role = &role
		fields = append(fields, "role")
	}
	if req.Password != nil {
		if err := authutil.ValidatePassword(*req.Password); err != nil {
			httpx.Fail(w, http.StatusBadRequest, authutil.PasswordRules())
			return
		}
		hash, err := authutil.HashPassword(*req.Password)
		if err != nil {
			httpx.ServerError(w, r, h.Log, "update user: hash failed", err)
			return
		}
		upd.PasswordHash = &hash
		fields = append(fields, "password")
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if req.Username != nil || req.Email != nil {
		taken, err := h.Users.Taken(ctx, deref(req.Username), deref(req.Email), id)
		if err != nil {
			httpx.ServerError(w, r, h.Log, "update user: uniqueness check failed", err)
			return
		}
		if taken {
			httpx.Fail(w, http.StatusBadRequest, msgAccountExists)
			return
		}
	}

	u, err := h.Users.Update(ctx, id, upd)
	switch {
	case errors.Is(err, userstore.ErrNotFound):
		httpx.Fail(w, http.StatusNotFound, msgUserNotFound)
		return
	case errors.Is(err, userstore.ErrDuplicate):
		httpx.Fail(w, http.StatusBadRequest, msgAccountExists)
		return
	case err != nil:
		httpx.ServerError(w, r, h.Log, "update user: store failed", err, zap.String("user_id", id.Hex()))
		return
	}

	if len(fields) > 0 {
		h.AuditLog.UserUpdated(ctx, r, actor.UserID, u.ID, strings.Join(fields, ","))
	}
	httpx.Success(w, http.StatusOK, map[string]any{"data": map[string]any{"user": u}})
}

// ServeDelete handles DELETE /auth/delete-user/{id}. Admins cannot delete
// their own account.
func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	actor, _ := authz.ActorFrom(r)
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid user id")
		return
	}
	if id == actor.UserID {
		httpx.Fail(w, http.StatusBadRequest, "You cannot delete your own account")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	err = h.Users.Delete(ctx, id)
	if errors.Is(err, userstore.ErrNotFound) {
		httpx.Fail(w, http.StatusNotFound, msgUserNotFound)
		return
	}
	if err != nil {
		httpx.ServerError(w, r, h.Log, "delete user: store failed", err, zap.String("user_id", id.Hex()))
		return
	}

	h.AuditLog.UserDeleted(ctx, r, actor.UserID, id)
	httpx.Success(w, http.StatusOK, map[string]any{"message": "User deleted"})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
