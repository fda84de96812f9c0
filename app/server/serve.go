package main

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"stix-ui/app/server/apidocs"
	"stix-ui/app/server/handlers"
	"stix-ui/app/server/inits"
	"stix-ui/app/server/jwt"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Long: `Run the HTTP server.

The schema is migrated and the seed data is inserted before listening.
Outside production the API documentation is served at /api/apidocs.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, l := bootstrap()
	defer l.Sync()

	// Connect the database
	db, err := inits.DB(cfg.System.DBConnectionString)
	if err != nil {
		l.Fatal("error initializing DB connection", zap.Error(err))
	}

	// Connect redis
	rdb, err := inits.Redis(cfg.System.RedisConnectionString)
	if err != nil {
		l.Fatal("error initializing Redis connection", zap.Error(err))
	}

	// Set up JWT
	j, err := jwt.New(cfg.Security.SignatureSecretKey)
	if err != nil {
		l.Fatal("error initializing JWT", zap.Error(err))
	}

	// Prepare the handler app
	handlerApp, err := handlers.NewApp(l, db, rdb, j, cfg.Security.CookieSecure)
	if err != nil {
		l.Fatal("error initializing handlers", zap.Error(err))
	}

	// Prepare echo
	e := echo.New()
	e.HideBanner = cfg.System.IsProd
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			l.Info("request",
				zap.String("URI", v.URI),
				zap.Int("status", v.Status),
			)

			return nil
		},
	}))
	e.Use(middleware.Recover())

	// Mount the handlers
	handlers.RegisterHandlers(e, handlerApp)

	// API documentation
	if !cfg.System.IsProd {
		if swgJson, err := apidocs.Spec().MarshalJSON(); err != nil {
			l.Error("error initializing api docs", zap.Error(err))
		} else {
			e.Pre(apidocs.Doc("/api", swgJson, apidocs.WithTitle("STIX UI API")))
		}
	}

	// Start echo
	if err := e.Start(cfg.System.Listen); err != nil {
		l.Fatal("shutting down the server", zap.Error(err))
	}

	return nil
}
