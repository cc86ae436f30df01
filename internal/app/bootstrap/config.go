// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// minJWTSecret is the shortest HMAC secret accepted outside dev.
const minJWTSecret = 32

// appConfigKeys defines the configuration keys for SlothStore.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, jwt_secret, etc.
//   - Environment variables: SLOTHSTORE_MONGO_URI, SLOTHSTORE_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "slothstore", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Bearer tokens
	{Name: "jwt_secret", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "HMAC secret for bearer tokens (must be strong in production)"},
	{Name: "jwt_ttl", Default: "30d", Desc: "Bearer token lifetime (e.g., 24h, 90d)"},

	// Order engine
	{Name: "allow_backorder", Default: true, Desc: "Accept orders that drive stock below zero"},
	{Name: "order_transactions", Default: false, Desc: "Run checkout inside a MongoDB transaction (replica set required)"},
	{Name: "verify_order_total", Default: false, Desc: "Reject checkout when the submitted total differs from the cart"},
	{Name: "inventory_workers", Default: 8, Desc: "Parallel inventory writes per checkout"},

	// Product cache
	{Name: "redis_addr", Default: "", Desc: "Redis address for the product cache (blank disables it)"},
	{Name: "redis_password", Default: "", Desc: "Redis password"},
	{Name: "redis_db", Default: 0, Desc: "Redis database number"},
	{Name: "product_cache_ttl", Default: "5m", Desc: "Product cache entry lifetime"},

	// File storage configuration
	{Name: "storage_type", Default: "local", Desc: "Storage backend: 'local' or 's3'"},
	{Name: "storage_local_path", Default: "./uploads/products", Desc: "Local storage path for product images"},
	{Name: "storage_local_url", Default: "/uploads/products", Desc: "URL prefix for serving local files"},

	// S3 configuration
	{Name: "storage_s3_region", Default: "", Desc: "AWS region for S3"},
	{Name: "storage_s3_bucket", Default: "", Desc: "S3 bucket name"},
	{Name: "storage_s3_prefix", Default: "products/", Desc: "S3 key prefix"},
	{Name: "storage_s3_public_url", Default: "", Desc: "Public base URL for S3 objects (CDN); blank uses the bucket URL"},

	// Email configuration
	{Name: "mail_backend", Default: "log", Desc: "Mail backend: 'smtp', 'postmark', 'sendgrid' or 'log'"},
	{Name: "mail_smtp_host", Default: "localhost", Desc: "SMTP server host"},
	{Name: "mail_smtp_port", Default: 1025, Desc: "SMTP server port"},
	{Name: "mail_smtp_user", Default: "", Desc: "SMTP username"},
	{Name: "mail_smtp_pass", Default: "", Desc: "SMTP password"},
	{Name: "postmark_server_token", Default: "", Desc: "Postmark server token"},
	{Name: "sendgrid_api_key", Default: "", Desc: "SendGrid API key"},
	{Name: "mail_from", Default: "noreply@slothstore.dev", Desc: "From email address"},
	{Name: "mail_from_name", Default: "SlothStore", Desc: "From display name"},
	{Name: "site_name", Default: "SlothStore", Desc: "Store name used in emails"},
	{Name: "reset_cleanup_interval", Default: "5m", Desc: "How often expired reset codes are cleared"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_order", Default: "all", Desc: "Order event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Rate limits
	{Name: "login_ip_limit", Default: 20, Desc: "Login attempts per IP per window"},
	{Name: "login_account_limit", Default: 5, Desc: "Login attempts per account per window"},
	{Name: "login_window", Default: "15m", Desc: "Login rate limit window"},
	{Name: "reset_limit", Default: 5, Desc: "Password reset requests per IP per window"},
	{Name: "reset_window", Default: "15m", Desc: "Password reset rate limit window"},

	{Name: "cors_origins", Default: "*", Desc: "Comma-separated list of allowed CORS origins"},

	// Admin bootstrap
	{Name: "admin_email", Default: "", Desc: "Email of the bootstrap admin (promotes/creates on startup)"},
	{Name: "admin_username", Default: "admin", Desc: "Username for a newly created bootstrap admin"},
	{Name: "admin_password", Default: "", Desc: "Password for a newly created bootstrap admin"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config.yaml/json/toml
// files, environment variables (WAFFLE_* for core, SLOTHSTORE_* for app) and
// command-line flags, merged with precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "SLOTHSTORE", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		JWTSecret: appValues.String("jwt_secret"),
		JWTTTL:    parseDays(appValues.String("jwt_ttl"), 30*24*time.Hour),

		AllowBackorder:    appValues.Bool("allow_backorder"),
		OrderTransactions: appValues.Bool("order_transactions"),
		VerifyOrderTotal:  appValues.Bool("verify_order_total"),
		InventoryWorkers:  appValues.Int("inventory_workers"),

		RedisAddr:       appValues.String("redis_addr"),
		RedisPassword:   appValues.String("redis_password"),
		RedisDB:         appValues.Int("redis_db"),
		ProductCacheTTL: appValues.Duration("product_cache_ttl", 5*time.Minute),

		// File storage
		StorageType:      appValues.String("storage_type"),
		StorageLocalPath: appValues.String("storage_local_path"),
		StorageLocalURL:  appValues.String("storage_local_url"),

		// S3
		StorageS3Region:    appValues.String("storage_s3_region"),
		StorageS3Bucket:    appValues.String("storage_s3_bucket"),
		StorageS3Prefix:    appValues.String("storage_s3_prefix"),
		StorageS3PublicURL: appValues.String("storage_s3_public_url"),

		// Email
		MailBackend:          strings.ToLower(appValues.String("mail_backend")),
		MailSMTPHost:         appValues.String("mail_smtp_host"),
		MailSMTPPort:         appValues.Int("mail_smtp_port"),
		MailSMTPUser:         appValues.String("mail_smtp_user"),
		MailSMTPPass:         appValues.String("mail_smtp_pass"),
		PostmarkServerToken:  appValues.String("postmark_server_token"),
		SendGridAPIKey:       appValues.String("sendgrid_api_key"),
		MailFrom:             appValues.String("mail_from"),
		MailFromName:         appValues.String("mail_from_name"),
		SiteName:             appValues.String("site_name"),
		ResetCleanupInterval: appValues.Duration("reset_cleanup_interval", 5*time.Minute),

		// Audit logging
		AuditLogAuth:  appValues.String("audit_log_auth"),
		AuditLogAdmin: appValues.String("audit_log_admin"),
		AuditLogOrder: appValues.String("audit_log_order"),

		// Rate limits
		LoginIPLimit:      appValues.Int("login_ip_limit"),
		LoginAccountLimit: appValues.Int("login_account_limit"),
		LoginWindow:       appValues.Duration("login_window", 15*time.Minute),
		ResetLimit:        appValues.Int("reset_limit"),
		ResetWindow:       appValues.Duration("reset_window", 15*time.Minute),

		CORSOrigins: splitList(appValues.String("cors_origins")),

		AdminEmail:    appValues.String("admin_email"),
		AdminUsername: appValues.String("admin_username"),
		AdminPassword: appValues.String("admin_password"),
	}

	return coreCfg, appCfg, nil
}

// parseDays accepts Go durations plus a whole-day form like "90d".
func parseDays(raw string, def time.Duration) time.Duration {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	if n, ok := strings.CutSuffix(raw, "d"); ok {
		var days int
		if _, err := fmt.Sscanf(n, "%d", &days); err == nil && days > 0 {
			return time.Duration(days) * 24 * time.Hour
		}
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// Backend selections are checked against the settings they need so that
// a misconfigured deployment fails before connecting to anything.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if !strings.HasPrefix(appCfg.MongoURI, "mongodb://") && !strings.HasPrefix(appCfg.MongoURI, "mongodb+srv://") {
		logger.Error("invalid MongoDB URI scheme")
		return fmt.Errorf("invalid MongoDB URI: scheme must be mongodb:// or mongodb+srv://")
	}
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if len(appCfg.JWTSecret) < minJWTSecret {
		if coreCfg.Env == "prod" {
			return fmt.Errorf("jwt_secret must be at least %d characters", minJWTSecret)
		}
		logger.Warn("jwt_secret is shorter than recommended", zap.Int("min", minJWTSecret))
	}

	switch appCfg.StorageType {
	case "", "local":
	case "s3":
		if appCfg.StorageS3Bucket == "" || appCfg.StorageS3Region == "" {
			return fmt.Errorf("storage_type s3 requires storage_s3_bucket and storage_s3_region")
		}
	default:
		return fmt.Errorf("unknown storage_type %q (want 'local' or 's3')", appCfg.StorageType)
	}

	switch appCfg.MailBackend {
	case "", "log":
	case "smtp":
		if appCfg.MailSMTPHost == "" {
			return fmt.Errorf("mail_backend smtp requires mail_smtp_host")
		}
	case "postmark":
		if appCfg.PostmarkServerToken == "" {
			return fmt.Errorf("mail_backend postmark requires postmark_server_token")
		}
	case "sendgrid":
		if appCfg.SendGridAPIKey == "" {
			return fmt.Errorf("mail_backend sendgrid requires sendgrid_api_key")
		}
	default:
		return fmt.Errorf("unknown mail_backend %q", appCfg.MailBackend)
	}

	if appCfg.AdminEmail != "" && appCfg.AdminPassword == "" {
		logger.Warn("admin_email set without admin_password; an existing account will be promoted but none created")
	}

	return nil
}
