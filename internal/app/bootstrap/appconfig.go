// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers the
// framework-level settings (ports, TLS, log level, CORS, body limits).
type AppConfig struct {
	// MongoDB holds activity sessions and the audit log.
	MongoURI      string
	MongoDatabase string

	// Session cookie
	SessionKey    string        // Secret the cookie signing and encryption keys are derived from
	SessionName   string        // Cookie name (default: propertyflow-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Cookie lifetime; zero keeps a browser-session cookie

	// Backend API that owns users, companies and properties
	BackendURL     string
	BackendTimeout time.Duration

	// Audit logging: "all", "db", "log" or "off"
	AuditLogAuth string

	// Activity session cleanup
	SessionInactiveAfter   time.Duration
	SessionCleanupInterval time.Duration

	// Sign-in rate limits
	LoginRateIP      int // attempts per IP per minute
	LoginRateAccount int // attempts per email+company per five minutes

	// Client IP from forwarding headers; only behind a trusted proxy
	TrustProxy bool
}
