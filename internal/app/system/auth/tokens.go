// internal/app/system/auth/tokens.go
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrInvalidToken covers malformed, badly signed, and expired tokens.
var ErrInvalidToken = errors.New("invalid token")

// Tokens issues and verifies HS256 JWTs whose subject is the user id.
type Tokens struct {
	secret []byte
	ttl    time.Duration // zero means tokens never expire
	now    func() time.Time
}

// NewTokens creates a token issuer. ttl <= 0 disables expiry.
func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Sign issues a token for userID.
func (t *Tokens) Sign(userID primitive.ObjectID) (string, error) {
	now := t.now()
	claims := jwt.RegisteredClaims{
		Subject:  userID.Hex(),
		IssuedAt: jwt.NewNumericDate(now),
	}
	if t.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(t.ttl))
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies raw and returns the user id and issue time.
func (t *Tokens) Parse(raw string) (primitive.ObjectID, time.Time, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(tok *jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return primitive.NilObjectID, time.Time{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	uid, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return primitive.NilObjectID, time.Time{}, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	if claims.IssuedAt == nil {
		return primitive.NilObjectID, time.Time{}, fmt.Errorf("%w: missing iat", ErrInvalidToken)
	}
	return uid, claims.IssuedAt.Time, nil
}
