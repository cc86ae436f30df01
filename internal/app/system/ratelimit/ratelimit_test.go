package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLimiter_BlocksAfterBurst(t *testing.T) {
	l := New(3, time.Minute)
	defer l.Stop()

	for i := 0; i < 3; i++ {
		if !l.Allow("k") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if l.Allow("k") {
		t.Error("4th request should be blocked")
	}
	if !l.Allow("other") {
		t.Error("a different key has its own bucket")
	}
}

func TestLimiter_RefillsOverTime(t *testing.T) {
	l := New(2, time.Minute)
	defer l.Stop()

	now := time.Now()
	l.now = func() time.Time { return now }

	l.Allow("k")
	l.Allow("k")
	if l.Allow("k") {
		t.Fatal("expected block after burst")
	}

	now = now.Add(31 * time.Second)
	if !l.Allow("k") {
		t.Error("expected one token to be regained after half the window")
	}
}

func TestLimiter_RemainingAndReset(t *testing.T) {
	l := New(5, time.Minute)
	defer l.Stop()

	if got := l.Remaining("k"); got != 5 {
		t.Errorf("Remaining before use: got %d, want 5", got)
	}
	l.Allow("k")
	l.Allow("k")
	if got := l.Remaining("k"); got != 3 {
		t.Errorf("Remaining after two: got %d, want 3", got)
	}
	l.Reset("k")
	if got := l.Remaining("k"); got != 5 {
		t.Errorf("Remaining after reset: got %d, want 5", got)
	}
}

func TestMiddleware_Returns429(t *testing.T) {
	l := New(1, time.Minute)
	defer l.Stop()

	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("POST", "/api/auth/login", nil)
	req.RemoteAddr = "198.51.100.7:5555"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request: got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("second request: got %d, want 429", rec.Code)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded list", map[string]string{"X-Forwarded-For": "1.2.3.4, 10.0.0.1"}, "9.9.9.9:1", "1.2.3.4"},
		{"real ip", map[string]string{"X-Real-IP": " 5.6.7.8 "}, "9.9.9.9:1", "5.6.7.8"},
		{"remote with port", nil, "9.9.9.9:1234", "9.9.9.9"},
		{"remote without port", nil, "9.9.9.9", "9.9.9.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := ClientIP(r); got != tt.want {
				t.Errorf("ClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoginLimiter_AccountLimit(t *testing.T) {
	ll := NewLoginLimiterWithConfig(100, time.Minute, 2, time.Minute)
	defer ll.Stop()

	r := httptest.NewRequest("POST", "/", nil)
	for i := 0; i < 2; i++ {
		if ok, _ := ll.Check(r, "Alice"); !ok {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	if ok, reason := ll.Check(r, " alice "); ok || reason == "" {
		t.Error("account limit should apply case-insensitively")
	}

	ll.ResetAccount("ALICE")
	if ok, _ := ll.Check(r, "alice"); !ok {
		t.Error("expected allow after reset")
	}
}
