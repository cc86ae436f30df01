// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers the
// framework-level settings (ports, TLS, log level, body limits); everything
// the storefront itself needs lives here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Bearer tokens
	JWTSecret string        // HMAC secret for signing tokens (32+ chars)
	JWTTTL    time.Duration // token lifetime

	// Order engine
	AllowBackorder    bool // place orders even when stock would go negative
	OrderTransactions bool // wrap checkout in a Mongo transaction when the deployment supports it
	VerifyOrderTotal  bool // reject checkout when the client total disagrees with the cart
	InventoryWorkers  int  // parallel inventory writes per checkout

	// Product cache (blank RedisAddr disables it)
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	ProductCacheTTL time.Duration

	// File storage configuration
	StorageType      string // Storage backend: "local" or "s3"
	StorageLocalPath string // Local storage path (e.g., "./uploads/products")
	StorageLocalURL  string // URL prefix for serving local files (e.g., "/uploads/products")

	// S3 configuration (only used if StorageType is "s3")
	StorageS3Region    string
	StorageS3Bucket    string
	StorageS3Prefix    string
	StorageS3PublicURL string // optional CDN base URL

	// Email configuration
	MailBackend          string // "smtp", "postmark", "sendgrid" or "log"
	MailSMTPHost         string // SMTP server host (e.g., localhost for Mailpit)
	MailSMTPPort         int    // SMTP server port (e.g., 1025 for Mailpit, 587 for SES)
	MailSMTPUser         string
	MailSMTPPass         string
	PostmarkServerToken  string
	SendGridAPIKey       string
	MailFrom             string // From email address (e.g., noreply@slothstore.dev)
	MailFromName         string // From display name
	SiteName             string // shown in email subjects and bodies
	ResetCleanupInterval time.Duration

	// Audit logging: "all", "db", "log" or "off"
	AuditLogAuth  string
	AuditLogAdmin string
	AuditLogOrder string

	// Rate limits
	LoginIPLimit      int
	LoginAccountLimit int
	LoginWindow       time.Duration
	ResetLimit        int
	ResetWindow       time.Duration

	// CORS
	CORSOrigins []string

	// Admin bootstrap (blank email skips it)
	AdminEmail    string
	AdminUsername string
	AdminPassword string
}
