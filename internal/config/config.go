package config

import (
	"log/slog"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultSQLiteDSN = "./data/chat.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_time_format=sqlite"

type Config struct {
	// Application
	AppName     string
	AppEnv      string
	Port        string
	FrontendURL string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Security
	JWTSecret              string
	JWTExpiry              time.Duration
	TokenEmailVerifyExpiry time.Duration

	// RequireEmailVerification gates login behind the verification link.
	// Defaults to true in production and false everywhere else.
	RequireEmailVerification bool

	// Email
	EmailFrom    string
	ResendAPIKey string

	// Observability (optional)
	SentryDSN string

	// Rate limiting store (optional, in-memory when empty)
	RedisURL string

	// Proxies allowed to set X-Forwarded-For / X-Real-IP (IPs or CIDRs)
	TrustedProxies []netip.Prefix

	// Cleanup of abandoned signups
	JanitorInterval     time.Duration
	UnverifiedRetention time.Duration

	// Storage (S3-compatible: MinIO, AWS S3, Cloudflare R2, DigitalOcean Spaces, etc.)
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3Endpoint  string // Optional: for S3-compatible services (MinIO, DO Spaces, R2, etc.)
	S3PublicURL string // Optional: CDN or public bucket base URL
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	appEnv := envRequired("APP_ENV") // Required: 'development' or 'production'

	cfg := &Config{
		// Application
		AppName:     envString("APP_NAME", "Chatty"),
		AppEnv:      appEnv,
		Port:        envString("PORT", "5001"),
		FrontendURL: strings.TrimSuffix(envRequired("FRONTEND_URL"), "/"),

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", defaultSQLiteDSN),

		// Security
		JWTSecret:                envRequired("JWT_SECRET"),
		JWTExpiry:                envDuration("JWT_EXPIRY", 168*time.Hour),              // 7 days
		TokenEmailVerifyExpiry:   envDuration("TOKEN_EMAIL_VERIFY_EXPIRY", 1*time.Hour), // 1 hour
		RequireEmailVerification: envBool("REQUIRE_EMAIL_VERIFICATION", appEnv == "production"),

		// Email (RESEND_API_KEY optional in development, required when verification is enforced in production)
		EmailFrom:    envString("EMAIL_FROM", "onboarding@resend.dev"),
		ResendAPIKey: envString("RESEND_API_KEY", ""),

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),

		RedisURL:       envString("REDIS_URL", ""),
		TrustedProxies: envPrefixes("TRUSTED_PROXIES"),

		JanitorInterval:     envDuration("JANITOR_INTERVAL", 1*time.Hour),
		UnverifiedRetention: envDuration("UNVERIFIED_RETENTION", 24*time.Hour),

		// Storage (S3-compatible - required for avatar uploads)
		S3Region:    envRequired("S3_REGION"),
		S3Bucket:    envRequired("S3_BUCKET"),
		S3AccessKey: envString("S3_ACCESS_KEY", ""),
		S3SecretKey: envString("S3_SECRET_KEY", ""),
		S3Endpoint:  envString("S3_ENDPOINT", ""),
		S3PublicURL: envString("S3_PUBLIC_URL", ""),
	}

	// Production: validate required services
	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	return cfg
}

// Database returns only the database settings. Used by tooling that must not
// require the full server configuration.
func Database() (driver, connection string) {
	_ = godotenv.Load()
	return envString("DB_DRIVER", "sqlite"), envString("DB_CONNECTION", defaultSQLiteDSN)
}

// validateProduction ensures all required services are configured for production deployments.
func validateProduction(cfg *Config) {
	if cfg.RequireEmailVerification && cfg.ResendAPIKey == "" {
		slog.Error("production deployment with email verification requires RESEND_API_KEY",
			"hint", "set REQUIRE_EMAIL_VERIFICATION=false or APP_ENV=development for local testing")
		os.Exit(1)
	}
	if len(cfg.JWTSecret) < 32 {
		slog.Warn("JWT_SECRET is shorter than 32 bytes")
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

// envPrefixes parses a comma separated list of IPs and CIDRs. Invalid entries are skipped.
func envPrefixes(key string) []netip.Prefix {
	var prefixes []netip.Prefix
	for _, item := range strings.Split(os.Getenv(key), ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		prefix, err := parsePrefix(item)
		if err != nil {
			slog.Warn("config invalid proxy address, skipping", "key", key, "value", item)
			continue
		}
		prefixes = append(prefixes, prefix)
	}
	return prefixes
}

func parsePrefix(s string) (netip.Prefix, error) {
	if strings.Contains(s, "/") {
		prefix, err := netip.ParsePrefix(s)
		return prefix.Masked(), err
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Prefix{}, err
	}
	addr = addr.Unmap()
	return netip.PrefixFrom(addr, addr.BitLen()), nil
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// VerificationURL builds the link the frontend uses to confirm an email address.
func (c *Config) VerificationURL(token string) string {
	return c.FrontendURL + "/verify-email?token=" + token
}
