// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/propertyflow/internal/app/resources"
	"github.com/dalemusser/propertyflow/internal/app/store/sessions"
	"github.com/dalemusser/propertyflow/internal/app/system/timeouts"
	"github.com/dalemusser/propertyflow/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// cleanup closes idle activity sessions in the background. Started in
// Startup and stopped in Shutdown.
var cleanup *workers.SessionCleanup

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{Backend: appCfg.BackendTimeout})

	resources.LoadSharedTemplates()

	cleanup = workers.NewSessionCleanup(
		sessions.New(deps.MongoDatabase),
		logger,
		appCfg.SessionCleanupInterval,
		appCfg.SessionInactiveAfter,
	)
	cleanup.Start()
	return nil
}
