// internal/app/features/login/handler.go
package login

// Terminology: User Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) that uniquely identifies a user record
//   - LoginID / loginID / login_id: The username or email a user types to log in

import (
	"fmt"
	"time"

	userstore "github.com/dalemusser/slothstore/internal/app/store/users"
	"github.com/dalemusser/slothstore/internal/app/system/auditlog"
	"github.com/dalemusser/slothstore/internal/app/system/auth"
	"github.com/dalemusser/slothstore/internal/app/system/mailer"
	"github.com/dalemusser/slothstore/internal/app/system/metrics"
	"github.com/dalemusser/slothstore/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Sender delivers email. *mailer.Mailer satisfies it.
type Sender interface {
	Send(e mailer.Email) error
}

// Handler serves signup, login and the password flows.
type Handler struct {
	Users    *userstore.Store
	Tokens   *auth.Tokens
	Mailer   Sender
	AuditLog *auditlog.Logger
	Limiter  *ratelimit.LoginLimiter
	Metrics  *metrics.Metrics
	Log      *zap.Logger

	SiteName string
	OTPTTL   time.Duration // lifetime of an emailed OTP
	ResetTTL time.Duration // lifetime of the reset token issued for a verified OTP

	now func() time.Time
}

func NewHandler(db *mongo.Database, tokens *auth.Tokens, mail Sender, audit *auditlog.Logger, limiter *ratelimit.LoginLimiter, m *metrics.Metrics, logger *zap.Logger) *Handler {
	return &Handler{
		Users:    userstore.New(db),
		Tokens:   tokens,
		Mailer:   mail,
		AuditLog: audit,
		Limiter:  limiter,
		Metrics:  m,
		Log:      logger,
		SiteName: "SlothStore",
		OTPTTL:   10 * time.Minute,
		ResetTTL: 10 * time.Minute,
		now:      time.Now,
	}
}

// formatExpiryDuration formats a time.Duration as a human-readable string
// e.g., "10 minutes", "1 hour", "30 minutes"
func formatExpiryDuration(d time.Duration) string {
	minutes := int(d.Minutes())
	if minutes < 60 {
		if minutes == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", minutes)
	}
	hours := minutes / 60
	if hours == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", hours)
}
