// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/dalemusser/slothstore/internal/app/system/auth"
	"github.com/dalemusser/slothstore/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the user's role, Mongo ObjectID, and a found flag.
// A missing user or malformed id yields ("", NilObjectID, false), so ok=true
// always means an authenticated user with a valid id.
func UserCtx(r *http.Request) (role models.Role, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		return "", primitive.NilObjectID, false
	}
	return user.Role, userID, true
}

// IsAdmin reports whether the current request's user is an admin.
func IsAdmin(r *http.Request) bool {
	role, _, ok := UserCtx(r)
	return ok && role == models.RoleAdmin
}

// Actor is the caller of an operation that enforces ownership.
type Actor struct {
	UserID primitive.ObjectID
	Admin  bool
}

// CanAccess reports whether the actor may act on a resource owned by ownerID.
// Admins may act on any resource.
func (a Actor) CanAccess(ownerID primitive.ObjectID) bool {
	return a.Admin || a.UserID == ownerID
}

// ActorFrom builds an Actor from the request context.
func ActorFrom(r *http.Request) (Actor, bool) {
	role, uid, ok := UserCtx(r)
	if !ok {
		return Actor{}, false
	}
	return Actor{UserID: uid, Admin: role == models.RoleAdmin}, true
}
