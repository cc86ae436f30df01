// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is the authorization role carried by a user and by the request's
// authenticated session.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is a storefront account.
//
// Password-reset secrets are never stored in plain text: the OTP is bcrypt
// hashed and the reset token is stored as a SHA-256 hex digest.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Username     string             `bson:"username" json:"username"`
	UsernameCI   string             `bson:"username_ci" json:"-"` // folded for case-insensitive login
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Role         Role               `bson:"role" json:"role"`

	PasswordChangedAt       *time.Time `bson:"password_changed_at,omitempty" json:"-"`
	PasswordResetTokenHash  string     `bson:"password_reset_token_hash,omitempty" json:"-"`
	PasswordResetExpires    *time.Time `bson:"password_reset_expires,omitempty" json:"-"`
	PasswordResetOTPHash    string     `bson:"password_reset_otp_hash,omitempty" json:"-"`
	PasswordResetOTPExpires *time.Time `bson:"password_reset_otp_expires,omitempty" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// ChangedPasswordAfter reports whether the password was changed after a
// token issued at iat (unix seconds). Tokens from before the change are stale.
func (u *User) ChangedPasswordAfter(iat int64) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return iat < u.PasswordChangedAt.Unix()
}
