package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/slothstore/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type fakeUsers map[primitive.ObjectID]models.User

func (f fakeUsers) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	u, ok := f[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &u, nil
}

type failingUsers struct{}

func (failingUsers) GetByID(context.Context, primitive.ObjectID) (*models.User, error) {
	return nil, errors.New("db down")
}

func okHandler(seen **SessionUser) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			*seen, _ = CurrentUser(r)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func bearer(token string) *http.Request {
	req := httptest.NewRequest("GET", "/api/orders", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestTokens_RoundTrip(t *testing.T) {
	tok := NewTokens("test-secret-at-least-32-characters!!", time.Hour)
	id := primitive.NewObjectID()

	raw, err := tok.Sign(id)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	got, iat, err := tok.Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got != id {
		t.Errorf("subject = %s, want %s", got.Hex(), id.Hex())
	}
	if time.Since(iat) > time.Minute {
		t.Errorf("iat too old: %v", iat)
	}
}

func TestTokens_RejectsWrongSecretAndExpired(t *testing.T) {
	a := NewTokens("secret-a-secret-a-secret-a-secret-a", time.Hour)
	b := NewTokens("secret-b-secret-b-secret-b-secret-b", time.Hour)
	raw, _ := a.Sign(primitive.NewObjectID())
	if _, _, err := b.Parse(raw); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("wrong secret: got %v", err)
	}

	short := NewTokens("secret-a-secret-a-secret-a-secret-a", time.Minute)
	past := time.Now().Add(-2 * time.Hour)
	short.now = func() time.Time { return past }
	raw, _ = short.Sign(primitive.NewObjectID())
	short.now = time.Now
	if _, _, err := short.Parse(raw); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired token: got %v", err)
	}
}

func TestTokens_NoTTLNeverExpires(t *testing.T) {
	tok := NewTokens("secret-a-secret-a-secret-a-secret-a", 0)
	past := time.Now().Add(-365 * 24 * time.Hour)
	tok.now = func() time.Time { return past }
	raw, _ := tok.Sign(primitive.NewObjectID())
	tok.now = time.Now
	if _, _, err := tok.Parse(raw); err != nil {
		t.Errorf("token without expiry rejected: %v", err)
	}
}

func TestProtect(t *testing.T) {
	tok := NewTokens("secret-a-secret-a-secret-a-secret-a", time.Hour)
	active := models.User{ID: primitive.NewObjectID(), Username: "sloth", Email: "s@example.com", Role: models.RoleUser}
	changed := time.Now().Add(time.Hour)
	stale := models.User{ID: primitive.NewObjectID(), Username: "old", Role: models.RoleUser, PasswordChangedAt: &changed}
	users := fakeUsers{active.ID: active, stale.ID: stale}
	m := NewMiddleware(tok, users, zap.NewNop())

	activeTok, _ := tok.Sign(active.ID)
	staleTok, _ := tok.Sign(stale.ID)
	goneTok, _ := tok.Sign(primitive.NewObjectID())

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"no token", "", http.StatusUnauthorized},
		{"garbage", "not-a-jwt", http.StatusUnauthorized},
		{"user deleted", goneTok, http.StatusUnauthorized},
		{"password changed after issue", staleTok, http.StatusUnauthorized},
		{"valid", activeTok, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen *SessionUser
			rec := httptest.NewRecorder()
			m.Protect(okHandler(&seen)).ServeHTTP(rec, bearer(tt.token))
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.want, rec.Body.String())
			}
			if tt.want == http.StatusOK && (seen == nil || seen.ID != active.ID.Hex() || seen.Username != "sloth") {
				t.Errorf("session user not injected: %+v", seen)
			}
		})
	}
}

func TestProtect_LoaderErrorIs500(t *testing.T) {
	tok := NewTokens("secret-a-secret-a-secret-a-secret-a", time.Hour)
	raw, _ := tok.Sign(primitive.NewObjectID())
	m := NewMiddleware(tok, failingUsers{}, zap.NewNop())

	rec := httptest.NewRecorder()
	m.Protect(okHandler(nil)).ServeHTTP(rec, bearer(raw))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	h := RequireRole(models.RoleAdmin)(okHandler(nil))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no user: status = %d, want 401", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, WithTestUser(httptest.NewRequest("GET", "/", nil), &SessionUser{ID: "x", Role: models.RoleUser}))
	if rec.Code != http.StatusForbidden {
		t.Errorf("user role: status = %d, want 403", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, WithTestUser(httptest.NewRequest("GET", "/", nil), &SessionUser{ID: "x", Role: models.RoleAdmin}))
	if rec.Code != http.StatusOK {
		t.Errorf("admin role: status = %d, want 200", rec.Code)
	}
}

func TestIdentify(t *testing.T) {
	tok := NewTokens("secret-a-secret-a-secret-a-secret-a", time.Hour)
	active := models.User{ID: primitive.NewObjectID(), Username: "sloth", Role: models.RoleUser}
	m := NewMiddleware(tok, fakeUsers{active.ID: active}, zap.NewNop())
	activeTok, _ := tok.Sign(active.ID)

	tests := []struct {
		name     string
		token    string
		wantUser bool
	}{
		{"anonymous", "", false},
		{"garbage", "not-a-jwt", false},
		{"valid", activeTok, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen *SessionUser
			rec := httptest.NewRecorder()
			m.Identify(okHandler(&seen)).ServeHTTP(rec, bearer(tt.token))
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			if (seen != nil) != tt.wantUser {
				t.Errorf("user attached = %v, want %v", seen != nil, tt.wantUser)
			}
		})
	}

	// A failing lookup degrades to anonymous instead of failing the request.
	raw, _ := tok.Sign(primitive.NewObjectID())
	rec := httptest.NewRecorder()
	var seen *SessionUser
	NewMiddleware(tok, failingUsers{}, zap.NewNop()).Identify(okHandler(&seen)).ServeHTTP(rec, bearer(raw))
	if rec.Code != http.StatusOK || seen != nil {
		t.Errorf("status = %d user = %+v, want anonymous 200", rec.Code, seen)
	}
}
