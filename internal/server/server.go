// Package server assembles the HTTP surface: middleware, routes, and
// the database migration pass that runs before traffic is accepted.
package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/Ramsey-B/stem/pkg/database"
	"github.com/Ramsey-B/stem/pkg/middleware"

	"github.com/Ramsey-B/fern/config"
	"github.com/Ramsey-B/fern/pkg/routes/health"
	"github.com/Ramsey-B/fern/pkg/routes/mapping"
	"github.com/Ramsey-B/fern/pkg/routes/partner"
	"github.com/Ramsey-B/fern/pkg/routes/reconcile"
)

// New builds the echo instance with the shared middleware chain and
// every route group registered. extra middleware (the DI container
// injector from the bootstrap) runs after the context middleware so
// handlers can resolve their dependencies.
func New(cfg *config.Config, logger ectologger.Logger, checker *health.Checker, extra ...echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.Error(logger)

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: cfg.AllowMethods,
	}))
	e.Use(otelecho.Middleware(cfg.AppName))
	e.Use(middleware.Context())
	e.Use(middleware.Logger(logger))
	for _, m := range extra {
		e.Use(m)
	}

	checker.RegisterRoutes(e)

	api := e.Group("/api/v1")
	reconcile.Register(api.Group("/reconcile"))
	partner.Register(api.Group("/partners"))
	mapping.Register(api.Group("/mappings"))

	return e
}

// Start serves until the listener fails or is shut down
func Start(e *echo.Echo, cfg *config.Config) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		ReadTimeout:       time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second,
		WriteTimeout:      time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second,
		IdleTimeout:       time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.ReadHeaderTimeoutSeconds) * time.Second,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}
	return e.StartServer(srv)
}

// RunMigrations brings the mapping database to the configured schema
// version before the service starts taking writes.
func RunMigrations(cfg *config.Config, logger ectologger.Logger, db *sqlx.DB) error {
	driver, err := postgres.WithInstance(db.DB, &postgres.Config{})
	if err != nil {
		return err
	}

	ms := database.NewMigrationService(logger, &database.MigrationConfig{
		MigrationFolderPath: cfg.DatabaseMigrationFolderPath,
		Version:             uint(cfg.DatabaseMigrationVersion),
		Force:               cfg.DatabaseMigrationForce,
		AutoRollback:        cfg.DatabaseMigrationAutoRollback,
	})

	return ms.Migrate(cfg.DatabaseName, driver)
}
