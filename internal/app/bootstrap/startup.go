// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dalemusser/slothstore/internal/app/store/audit"
	userstore "github.com/dalemusser/slothstore/internal/app/store/users"
	"github.com/dalemusser/slothstore/internal/app/system/auditlog"
	"github.com/dalemusser/slothstore/internal/app/system/auth"
	"github.com/dalemusser/slothstore/internal/app/system/authutil"
	"github.com/dalemusser/slothstore/internal/app/system/mailer"
	"github.com/dalemusser/slothstore/internal/app/system/metrics"
	"github.com/dalemusser/slothstore/internal/app/system/ratelimit"
	"github.com/dalemusser/slothstore/internal/app/system/timeouts"
	"github.com/dalemusser/slothstore/internal/app/system/workers"
	"github.com/dalemusser/slothstore/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// services holds the long-lived objects built in Startup and shared by
// BuildHandler and Shutdown.
type services struct {
	tokens       *auth.Tokens
	mail         *mailer.Mailer
	storage      storage.Store
	audit        *auditlog.Logger
	metrics      *metrics.Metrics
	loginLimiter *ratelimit.LoginLimiter
	resetLimiter *ratelimit.Limiter
	resetCleanup *workers.ResetCleanup
}

var svc *services

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. It makes
// sure the bootstrap admin exists, builds the mail and storage backends, and
// starts the reset cleanup worker.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	users := userstore.New(deps.MongoDatabase)

	if appCfg.AdminEmail != "" {
		if err := ensureAdmin(ctx, users, appCfg.AdminEmail, appCfg.AdminUsername, appCfg.AdminPassword, logger); err != nil {
			logger.Error("ensure admin failed", zap.Error(err))
			return err
		}
	}

	mail, err := mailer.New(mailer.Config{
		Backend:             appCfg.MailBackend,
		From:                appCfg.MailFrom,
		FromName:            appCfg.MailFromName,
		SMTPHost:            appCfg.MailSMTPHost,
		SMTPPort:            appCfg.MailSMTPPort,
		SMTPUser:            appCfg.MailSMTPUser,
		SMTPPass:            appCfg.MailSMTPPass,
		PostmarkServerToken: appCfg.PostmarkServerToken,
		SendGridAPIKey:      appCfg.SendGridAPIKey,
	}, logger)
	if err != nil {
		return fmt.Errorf("mailer: %w", err)
	}

	store, err := newFileStore(ctx, appCfg)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}

	m := metrics.New()
	m.RegisterStoreGauges(deps.MongoDatabase, timeouts.Short())

	cleanup := workers.NewResetCleanup(users, logger, appCfg.ResetCleanupInterval)
	cleanup.Start()

	svc = &services{
		tokens:  auth.NewTokens(appCfg.JWTSecret, appCfg.JWTTTL),
		mail:    mail,
		storage: store,
		audit: auditlog.New(audit.New(deps.MongoDatabase), logger, auditlog.Config{
			Auth:  appCfg.AuditLogAuth,
			Admin: appCfg.AuditLogAdmin,
			Order: appCfg.AuditLogOrder,
		}),
		metrics:      m,
		loginLimiter: ratelimit.NewLoginLimiterWithConfig(appCfg.LoginIPLimit, appCfg.LoginWindow, appCfg.LoginAccountLimit, appCfg.LoginWindow),
		resetLimiter: ratelimit.New(appCfg.ResetLimit, appCfg.ResetWindow),
		resetCleanup: cleanup,
	}

	logger.Info("startup complete",
		zap.String("mail_backend", mail.Backend()),
		zap.String("storage", store.Backend()),
		zap.Bool("product_cache", deps.Redis != nil),
		zap.Bool("allow_backorder", appCfg.AllowBackorder),
	)
	return nil
}

// ensureAdmin makes sure the account with the given email is an admin.
// An existing account is promoted; a missing one is created only when a
// password is configured.
func ensureAdmin(ctx context.Context, users *userstore.Store, email, username, password string, logger *zap.Logger) error {
	u, err := users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if u.Role == models.RoleAdmin {
			return nil
		}
		role := models.RoleAdmin
		if _, err := users.Update(ctx, u.ID, userstore.Update{Role: &role}); err != nil {
			return fmt.Errorf("promote admin: %w", err)
		}
		logger.Info("promoted existing user to admin", zap.String("email", u.Email))
		return nil
	case !errors.Is(err, mongo.ErrNoDocuments):
		return err
	}

	if password == "" {
		logger.Warn("admin account missing and no admin_password configured", zap.String("email", email))
		return nil
	}
	if err := authutil.ValidatePassword(password); err != nil {
		return fmt.Errorf("admin_password: %w", err)
	}
	hash, err := authutil.HashPassword(password)
	if err != nil {
		return err
	}
	created, err := users.Create(ctx, models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	logger.Info("created admin user", zap.String("email", created.Email), zap.String("username", created.Username))
	return nil
}

// newFileStore builds the product image store from the storage_* settings.
// Local files are served back under storage_local_url by BuildHandler.
func newFileStore(ctx context.Context, appCfg AppConfig) (storage.Store, error) {
	switch appCfg.StorageType {
	case "local", "":
		return storage.NewLocal(storage.LocalConfig{
			BasePath: appCfg.StorageLocalPath,
			BaseURL:  "/" + strings.Trim(appCfg.StorageLocalURL, "/"),
		})
	case "s3":
		return storage.NewS3(ctx, storage.S3Config{
			Bucket:  appCfg.StorageS3Bucket,
			Region:  appCfg.StorageS3Region,
			Prefix:  strings.Trim(appCfg.StorageS3Prefix, "/"),
			BaseURL: strings.TrimRight(appCfg.StorageS3PublicURL, "/"),
		})
	default:
		return nil, fmt.Errorf("unknown storage_type %q", appCfg.StorageType)
	}
}
