// internal/app/system/auth/middleware.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dalemusser/slothstore/internal/app/system/httpx"
	"github.com/dalemusser/slothstore/internal/app/system/timeouts"
	"github.com/dalemusser/slothstore/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// UserLoader fetches the user a token belongs to.
type UserLoader interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

const (
	msgNotLoggedIn     = "You are not logged in. Please log in to get access."
	msgUserGone        = "The user belonging to this token no longer exists."
	msgPasswordChanged = "User recently changed password. Please log in again."
	msgInvalidToken    = "Invalid token. Please log in again."
	msgForbidden       = "You do not have permission to perform this action."
)

// Middleware authenticates bearer tokens.
type Middleware struct {
	tokens *Tokens
	users  UserLoader
	log    *zap.Logger
}

func NewMiddleware(tokens *Tokens, users UserLoader, logger *zap.Logger) *Middleware {
	return &Middleware{tokens: tokens, users: users, log: logger}
}

// authenticate resolves a raw bearer token to its user. A non-empty reject
// message means the caller should answer 401; err means the lookup failed.
func (m *Middleware) authenticate(ctx context.Context, raw string) (u *models.User, reject string, err error) {
	if raw == "" {
		return nil, msgNotLoggedIn, nil
	}
	uid, iat, err := m.tokens.Parse(raw)
	if err != nil {
		return nil, msgInvalidToken, nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()
	u, err = m.users.GetByID(ctx, uid)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, msgUserGone, nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("load user %s: %w", uid.Hex(), err)
	}
	if u.ChangedPasswordAfter(iat.Unix()) {
		return nil, msgPasswordChanged, nil
	}
	return u, "", nil
}

// Protect requires a valid bearer token for a user that still exists and has
// not changed their password since the token was issued.
func (m *Middleware) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, reject, err := m.authenticate(r.Context(), httpx.BearerToken(r))
		if err != nil {
			httpx.ServerError(w, r, m.log, "auth: load user failed", err)
			return
		}
		if reject != "" {
			httpx.Fail(w, http.StatusUnauthorized, reject)
			return
		}
		next.ServeHTTP(w, withUser(r, FromUser(u)))
	})
}

// Identify attaches the user when a valid token is present and otherwise
// lets the request through anonymously.
func (m *Middleware) Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, reject, err := m.authenticate(r.Context(), httpx.BearerToken(r))
		if err != nil {
			m.log.Warn("auth: identify failed", zap.Error(err))
		}
		if err != nil || reject != "" {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, withUser(r, FromUser(u)))
	})
}

// RequireRole allows the request only if the current user has one of the
// allowed roles. It must run after Protect.
func RequireRole(allowed ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				httpx.Fail(w, http.StatusUnauthorized, msgNotLoggedIn)
				return
			}
			for _, role := range allowed {
				if u.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			httpx.Fail(w, http.StatusForbidden, msgForbidden)
		})
	}
}
