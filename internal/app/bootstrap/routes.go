// internal/app/bootstrap/routes.go
package bootstrap

import (
	"crypto/sha256"
	"net/http"

	auditlogfeature "github.com/dalemusser/propertyflow/internal/app/features/auditlog"
	dashboardfeature "github.com/dalemusser/propertyflow/internal/app/features/dashboard"
	errorsfeature "github.com/dalemusser/propertyflow/internal/app/features/errors"
	forgotpasswordfeature "github.com/dalemusser/propertyflow/internal/app/features/forgotpassword"
	healthfeature "github.com/dalemusser/propertyflow/internal/app/features/health"
	heartbeatfeature "github.com/dalemusser/propertyflow/internal/app/features/heartbeat"
	homefeature "github.com/dalemusser/propertyflow/internal/app/features/home"
	logoutfeature "github.com/dalemusser/propertyflow/internal/app/features/logout"
	signinfeature "github.com/dalemusser/propertyflow/internal/app/features/signin"
	signupfeature "github.com/dalemusser/propertyflow/internal/app/features/signup"
	userinfofeature "github.com/dalemusser/propertyflow/internal/app/features/userinfo"
	"github.com/dalemusser/propertyflow/internal/app/store/audit"
	"github.com/dalemusser/propertyflow/internal/app/store/sessionrecords"
	"github.com/dalemusser/propertyflow/internal/app/store/sessions"
	"github.com/dalemusser/propertyflow/internal/app/system/auditlog"
	"github.com/dalemusser/propertyflow/internal/app/system/auth"
	"github.com/dalemusser/propertyflow/internal/app/system/backend"
	"github.com/dalemusser/propertyflow/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// Startup have completed. It boots the template engine, installs the
// session and CSRF middleware, and mounts every feature router.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Session records live in MongoDB; the cookie carries only their id.
	sessionMgr.SetRecordStore(sessionrecords.New(deps.MongoDatabase))

	// Login sessions are tracked in MongoDB alongside the cookie.
	sessStore := sessions.New(deps.MongoDatabase)
	sessionMgr.SetActivityTracker(sessStore)

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	be := backend.New(appCfg.BackendURL, appCfg.BackendTimeout, logger)
	auditStore := audit.New(deps.MongoDatabase)
	auditLog := auditlog.New(auditStore, logger, auditlog.Config{Auth: appCfg.AuditLogAuth})
	limiter := ratelimit.NewLoginLimiter(appCfg.LoginRateIP, appCfg.LoginRateAccount)

	r := chi.NewRouter()

	// Forwarding headers are client-controlled unless a proxy rewrites them.
	if appCfg.TrustProxy {
		r.Use(middleware.RealIP)
	}

	// Health check endpoint for load balancers; outside CSRF and sessions.
	healthHandler := healthfeature.NewHandler(deps.MongoClient, be, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	r.Group(func(app chi.Router) {
		app.Use(csrfMiddleware(appCfg.SessionKey, secure))

		// Global auth middleware: loads the session record into context if
		// signed in, making auth.CurrentUser(r) available to every handler.
		app.Use(sessionMgr.LoadSession)

		// Error pages
		errorsHandler := errorsfeature.NewHandler()
		app.NotFound(errorsHandler.NotFound)
		app.Mount("/forbidden", errorsfeature.Routes(errorsHandler))

		// Public pages
		homeHandler := homefeature.NewHandler(logger)
		app.Mount("/", homefeature.Routes(homeHandler))

		// Authentication
		signinHandler := signinfeature.NewHandler(be, sessionMgr, limiter, auditLog, logger)
		app.Mount("/auth/signin", signinfeature.Routes(signinHandler))

		signupHandler := signupfeature.NewHandler(be, auditLog, logger)
		app.Mount("/auth/signup", signupfeature.Routes(signupHandler))

		forgotHandler := forgotpasswordfeature.NewHandler(be, sessionMgr, auditLog, logger)
		app.Mount("/auth/forgot-password", forgotpasswordfeature.Routes(forgotHandler))

		logoutHandler := logoutfeature.NewHandler(sessionMgr, auditLog, logger)
		app.Mount("/logout", logoutfeature.Routes(logoutHandler))

		heartbeatHandler := heartbeatfeature.NewHandler(sessStore, sessionMgr, logger)
		app.Mount("/api/heartbeat", heartbeatfeature.Routes(heartbeatHandler))

		// Auth context for client scripts; answers anonymous callers too
		userinfofeature.MountRoutes(app, userinfofeature.NewHandler())

		// Dashboard, gated per page by permission
		dashboardHandler := dashboardfeature.NewHandler(be, logger)
		app.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler))

		// Sign-in history for company admins
		auditHandler := auditlogfeature.NewHandler(auditStore, logger)
		app.Mount("/audit", auditlogfeature.Routes(auditHandler))
	})

	return r, nil
}

// csrfMiddleware protects every form post. The token key is derived from
// the session key so there is one secret to manage.
func csrfMiddleware(sessionKey string, secure bool) func(http.Handler) http.Handler {
	key := sha256.Sum256([]byte("propertyflow csrf:" + sessionKey))
	protect := csrf.Protect(key[:],
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
	)
	if secure {
		return protect
	}
	// Local development runs over plain HTTP.
	return func(next http.Handler) http.Handler {
		h := protect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
		})
	}
}
