package config

import (
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", "development")
	t.Setenv("FRONTEND_URL", "http://localhost:5173/")
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("S3_REGION", "us-east-1")
	t.Setenv("S3_BUCKET", "avatars")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg := Load()

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "http://localhost:5173", cfg.FrontendURL, "trailing slash is trimmed")
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 168*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, time.Hour, cfg.TokenEmailVerifyExpiry)
	assert.False(t, cfg.RequireEmailVerification, "verification defaults off outside production")
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("REQUIRE_EMAIL_VERIFICATION", "true")
	t.Setenv("TOKEN_EMAIL_VERIFY_EXPIRY", "30m")
	t.Setenv("JWT_EXPIRY", "not-a-duration")

	cfg := Load()

	assert.True(t, cfg.RequireEmailVerification)
	assert.Equal(t, 30*time.Minute, cfg.TokenEmailVerifyExpiry)
	assert.Equal(t, 168*time.Hour, cfg.JWTExpiry, "invalid duration falls back to default")
}

func TestLoad_ProductionRequiresVerificationByDefault(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("RESEND_API_KEY", "re_test")

	cfg := Load()

	require.True(t, cfg.IsProduction())
	assert.True(t, cfg.RequireEmailVerification)
}

func TestVerificationURL(t *testing.T) {
	cfg := &Config{FrontendURL: "https://chat.example.com"}
	assert.Equal(t, "https://chat.example.com/verify-email?token=abc", cfg.VerificationURL("abc"))
}

func TestDatabase(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DB_CONNECTION", "")

	driver, connection := Database()
	assert.Equal(t, "sqlite", driver)
	assert.Contains(t, connection, "_time_format=sqlite")

	t.Setenv("DB_DRIVER", "pgx")
	t.Setenv("DB_CONNECTION", "postgres://localhost/chat")
	driver, connection = Database()
	assert.Equal(t, "pgx", driver)
	assert.Equal(t, "postgres://localhost/chat", connection)
}

func TestLoad_TrustedProxies(t *testing.T) {
	setRequired(t)
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.0.2.7,not-an-ip, 2001:db8::1")

	cfg := Load()

	require.Len(t, cfg.TrustedProxies, 3)
	assert.Equal(t, netip.MustParsePrefix("10.0.0.0/8"), cfg.TrustedProxies[0])
	assert.Equal(t, netip.MustParsePrefix("192.0.2.7/32"), cfg.TrustedProxies[1])
	assert.Equal(t, netip.MustParsePrefix("2001:db8::1/128"), cfg.TrustedProxies[2])
}

func TestLoad_NoTrustedProxiesByDefault(t *testing.T) {
	setRequired(t)
	t.Setenv("TRUSTED_PROXIES", "")

	assert.Empty(t, Load().TrustedProxies)
}
