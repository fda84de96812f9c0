package main

import (
	"fmt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"log"
	"os"
	"stix-ui/app/server/config"
	"stix-ui/app/server/inits"
)

var rootCmd = &cobra.Command{
	Use:   "stix-ui",
	Short: "Web panel for users, roles and STIX threat intelligence",
	Long: `Web panel for users, roles and STIX threat intelligence.

Without a sub-command the HTTP server is started, same as "stix-ui serve".
Configuration comes from the environment (MODE, LISTEN, DB_CONN, REDIS_CONN,
SIGNATURE_SECRET_KEY, COOKIE_SECURE), optionally through a .env file.`,
	SilenceUsage: true,
	RunE:         runServe,
}

// bootstrap loads the configuration and the logger, which every command needs.
func bootstrap() (*config.Config, *zap.Logger) {
	// Load the configuration
	cfg, err := inits.Config()
	if err != nil {
		log.Fatal(fmt.Errorf("error loading config: %w", err))
	}

	// Set up the logger
	l, err := inits.Logger(!cfg.System.IsProd, "stix-ui")
	if err != nil {
		log.Fatal(fmt.Errorf("error initializing logger: %w", err))
	}

	// Switch to the structured logger
	l.Debug("logger initialized")

	return cfg, l
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
