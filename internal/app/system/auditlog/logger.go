// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/slothstore/internal/app/store/audit"
	"github.com/dalemusser/slothstore/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Config picks the sinks per event category. Each value is one of
// "all" (Mongo and zap), "db", "log" or "off". Empty means "all".
type Config struct {
	Auth  string
	Admin string
	Order string
}

type sinks struct{ db, log bool }

func parseSinks(mode string) sinks {
	switch mode {
	case "off":
		return sinks{}
	case "db":
		return sinks{db: true}
	case "log":
		return sinks{log: true}
	default:
		return sinks{db: true, log: true}
	}
}

// Logger writes audit events to the audit store and the application log.
// A nil *Logger discards everything, so handlers never nil-check it.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	routes map[string]sinks
}

func New(store *audit.Store, zapLog *zap.Logger, cfg Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		routes: map[string]sinks{
			audit.CategoryAuth:  parseSinks(cfg.Auth),
			audit.CategoryAdmin: parseSinks(cfg.Admin),
			audit.CategoryOrder: parseSinks(cfg.Order),
		},
	}
}

// Log routes event to the sinks configured for its category. Storage
// failures are logged and swallowed.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}
	to, ok := l.routes[event.Category]
	if !ok {
		to = parseSinks("")
	}
	if to.log {
		l.emit(event)
	}
	if to.db && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("audit store write failed", zap.Error(err), zap.String("event_type", event.EventType))
		}
	}
}

func (l *Logger) emit(e audit.Event) {
	fields := make([]zap.Field, 0, 8+len(e.Details))
	fields = append(fields,
		zap.Bool("audit", true),
		zap.String("category", e.Category),
		zap.String("event_type", e.EventType),
		zap.Bool("success", e.Success),
		zap.String("ip", e.IP))
	if e.UserID != nil {
		fields = append(fields, zap.Stringer("user_id", e.UserID))
	}
	if e.ActorID != nil {
		fields = append(fields, zap.Stringer("actor_id", e.ActorID))
	}
	if e.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", e.FailureReason))
	}
	for k, v := range e.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}
	lvl := zap.InfoLevel
	if !e.Success {
		lvl = zap.WarnLevel
	}
	l.zapLog.Log(lvl, "audit event", fields...)
}

func requestEvent(r *http.Request, category, eventType string, success bool) audit.Event {
	return audit.Event{
		Category:  category,
		EventType: eventType,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   success,
	}
}

// --- Authentication Events ---

// Signup logs a self-service account creation.
func (l *Logger) Signup(ctx context.Context, r *http.Request, userID primitive.ObjectID, username string) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventSignup, true)
	e.UserID = &userID
	e.Details = map[string]string{"username": username}
	l.Log(ctx, e)
}

// LoginSuccess logs a successful login.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID, loginID string) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventLoginSuccess, true)
	e.UserID = &userID
	e.Details = map[string]string{"login_id": loginID}
	l.Log(ctx, e)
}

// LoginFailedUserNotFound logs a login attempt for an unknown username or email.
func (l *Logger) LoginFailedUserNotFound(ctx context.Context, r *http.Request, attemptedLoginID string) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventLoginFailedUserNotFound, false)
	e.FailureReason = "user not found"
	e.Details = map[string]string{"attempted_login_id": attemptedLoginID}
	l.Log(ctx, e)
}

// LoginFailedWrongPassword logs a login attempt with a bad password.
func (l *Logger) LoginFailedWrongPassword(ctx context.Context, r *http.Request, userID primitive.ObjectID, loginID string) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventLoginFailedWrongPassword, false)
	e.UserID = &userID
	e.FailureReason = "wrong password"
	e.Details = map[string]string{"login_id": loginID}
	l.Log(ctx, e)
}

// LoginFailedRateLimit logs a request rejected by a rate limiter.
func (l *Logger) LoginFailedRateLimit(ctx context.Context, r *http.Request, loginID string) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventLoginFailedRateLimit, false)
	e.FailureReason = "rate limited"
	e.Details = map[string]string{"login_id": loginID}
	l.Log(ctx, e)
}

// PasswordChanged logs a password change by the account owner.
func (l *Logger) PasswordChanged(ctx context.Context, r *http.Request, userID primitive.ObjectID) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventPasswordChanged, true)
	e.UserID = &userID
	l.Log(ctx, e)
}

// PasswordResetRequested logs that a recovery OTP was issued and mailed.
func (l *Logger) PasswordResetRequested(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventPasswordResetRequested, true)
	e.UserID = &userID
	e.Details = map[string]string{"email": email}
	l.Log(ctx, e)
}

// PasswordResetOTPFailed logs an invalid or expired OTP submission.
func (l *Logger) PasswordResetOTPFailed(ctx context.Context, r *http.Request, email, reason string) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventPasswordResetOTPFailed, false)
	e.FailureReason = reason
	e.Details = map[string]string{"email": email}
	l.Log(ctx, e)
}

// PasswordReset logs a completed password reset.
func (l *Logger) PasswordReset(ctx context.Context, r *http.Request, userID primitive.ObjectID) {
	e := requestEvent(r, audit.CategoryAuth, audit.EventPasswordReset, true)
	e.UserID = &userID
	l.Log(ctx, e)
}

// --- Admin Events ---

// UserCreated logs an admin creating an account.
func (l *Logger) UserCreated(ctx context.Context, r *http.Request, actorID, targetUserID primitive.ObjectID, role string) {
	e := requestEvent(r, audit.CategoryAdmin, audit.EventUserCreated, true)
	e.ActorID = &actorID
	e.UserID = &targetUserID
	e.Details = map[string]string{"role": role}
	l.Log(ctx, e)
}

// UserUpdated logs an admin editing an account.
func (l *Logger) UserUpdated(ctx context.Context, r *http.Request, actorID, targetUserID primitive.ObjectID, fieldsChanged string) {
	e := requestEvent(r, audit.CategoryAdmin, audit.EventUserUpdated, true)
	e.ActorID = &actorID
	e.UserID = &targetUserID
	e.Details = map[string]string{"fields_changed": fieldsChanged}
	l.Log(ctx, e)
}

// UserDeleted logs an admin deleting an account.
func (l *Logger) UserDeleted(ctx context.Context, r *http.Request, actorID, targetUserID primitive.ObjectID) {
	e := requestEvent(r, audit.CategoryAdmin, audit.EventUserDeleted, true)
	e.ActorID = &actorID
	e.UserID = &targetUserID
	l.Log(ctx, e)
}

// ProductChanged logs a catalog write. eventType is one of the audit.EventProduct* constants.
func (l *Logger) ProductChanged(ctx context.Context, r *http.Request, actorID, productID primitive.ObjectID, eventType string) {
	e := requestEvent(r, audit.CategoryAdmin, eventType, true)
	e.ActorID = &actorID
	e.Details = map[string]string{"product_id": productID.Hex()}
	l.Log(ctx, e)
}

// --- Order Events ---

// OrderPlaced logs a successful checkout.
func (l *Logger) OrderPlaced(ctx context.Context, r *http.Request, userID, orderID primitive.ObjectID, lines int, total float64) {
	e := requestEvent(r, audit.CategoryOrder, audit.EventOrderPlaced, true)
	e.UserID = &userID
	e.Details = map[string]string{
		"order_id": orderID.Hex(),
		"lines":    strconv.Itoa(lines),
		"total":    strconv.FormatFloat(total, 'f', 2, 64),
	}
	l.Log(ctx, e)
}

// OrderStatusChanged logs an order status transition performed by actorID.
func (l *Logger) OrderStatusChanged(ctx context.Context, r *http.Request, actorID, ownerID, orderID primitive.ObjectID, from, to int) {
	e := requestEvent(r, audit.CategoryOrder, audit.EventOrderStatusChanged, true)
	e.ActorID = &actorID
	e.UserID = &ownerID
	e.Details = map[string]string{
		"order_id": orderID.Hex(),
		"from":     strconv.Itoa(from),
		"to":       strconv.Itoa(to),
	}
	l.Log(ctx, e)
}
