// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"net/url"
	"time"

	"github.com/dalemusser/propertyflow/internal/app/system/auditlog"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for PropertyFlow.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, backend_url, etc.
//   - Environment variables: PROPERTYFLOW_MONGO_URI, PROPERTYFLOW_BACKEND_URL, etc.
//   - Command-line flags: --mongo_uri, --backend_url, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "propertyflow", Desc: "MongoDB database name"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "propertyflow-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "24h", Desc: "Session cookie lifetime (e.g., 8h, 24h); 0 for a browser-session cookie"},

	// Backend API
	{Name: "backend_url", Default: "http://localhost:8080", Desc: "Base URL of the PropertyFlow backend API"},
	{Name: "backend_timeout", Default: "15s", Desc: "Timeout for each backend call"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Activity session cleanup
	{Name: "session_inactive_after", Default: "30m", Desc: "Close activity sessions idle for this long"},
	{Name: "session_cleanup_interval", Default: "5m", Desc: "How often to close idle activity sessions"},

	// Sign-in rate limits
	{Name: "login_rate_ip", Default: 10, Desc: "Sign-in attempts allowed per IP per minute"},
	{Name: "login_rate_email", Default: 5, Desc: "Sign-in attempts allowed per account per five minutes"},

	// Set only when a reverse proxy that overwrites X-Forwarded-For sits in front
	{Name: "trust_proxy", Default: false, Desc: "Take the client IP from X-Forwarded-For / X-Real-IP"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges .env files, config files,
// PROPERTYFLOW_* environment variables and flags with precedence
// flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "PROPERTYFLOW", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:      appValues.String("mongo_uri"),
		MongoDatabase: appValues.String("mongo_database"),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 24*time.Hour),

		BackendURL:     appValues.String("backend_url"),
		BackendTimeout: appValues.Duration("backend_timeout", 15*time.Second),

		AuditLogAuth: appValues.String("audit_log_auth"),

		SessionInactiveAfter:   appValues.Duration("session_inactive_after", 30*time.Minute),
		SessionCleanupInterval: appValues.Duration("session_cleanup_interval", 5*time.Minute),

		LoginRateIP:      appValues.Int("login_rate_ip"),
		LoginRateAccount: appValues.Int("login_rate_email"),

		TrustProxy: appValues.Bool("trust_proxy"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if err := validateBackendURL(appCfg.BackendURL); err != nil {
		logger.Error("invalid backend URL", zap.Error(err))
		return err
	}

	if appCfg.SessionKey == "" {
		return fmt.Errorf("session_key is required")
	}
	if coreCfg != nil && coreCfg.Env == "prod" && len(appCfg.SessionKey) < 32 {
		return fmt.Errorf("session_key must be at least 32 characters in production")
	}

	switch appCfg.AuditLogAuth {
	case "", auditlog.ModeAll, auditlog.ModeDB, auditlog.ModeLog, auditlog.ModeOff:
	default:
		return fmt.Errorf("audit_log_auth must be one of all, db, log, off; got %q", appCfg.AuditLogAuth)
	}

	return nil
}

func validateBackendURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid backend URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid backend URL %q: want http(s)://host", raw)
	}
	return nil
}
