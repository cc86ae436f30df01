// internal/app/system/httpx/httpx.go
package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// MaxBodyBytes bounds JSON request bodies.
const MaxBodyBytes = 1 << 20

// ErrBadJSON is returned by DecodeJSON for malformed or oversized bodies.
var ErrBadJSON = errors.New("invalid JSON body")

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// Fail writes a client error: {"status":"fail","message":...}.
func Fail(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"status": "fail", "message": message})
}

// Success writes {"status":"success", ...extra}.
func Success(w http.ResponseWriter, status int, extra map[string]any) {
	body := map[string]any{"status": "success"}
	for k, v := range extra {
		body[k] = v
	}
	JSON(w, status, body)
}

// ServerError logs err and writes a generic 500 so internals never leak.
func ServerError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, msg string, err error, fields ...zap.Field) {
	fields = append(fields,
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("request_id", RequestIDFrom(r.Context())),
	)
	logger.Error(msg, fields...)
	JSON(w, http.StatusInternalServerError, map[string]string{
		"status":  "error",
		"message": "Something went wrong. Please try again later.",
	})
}

// DecodeJSON reads a JSON body into dst. An empty body leaves dst unchanged.
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes+1))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrBadJSON, err)
	}
	return nil
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}
