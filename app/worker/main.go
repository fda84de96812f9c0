package main

import (
	"context"
	"fmt"
	"go.uber.org/zap"
	"log"
	"os"
	"os/signal"
	serverinits "stix-ui/app/server/inits"
	"stix-ui/app/worker/handlers"
	"stix-ui/app/worker/inits"
	"syscall"
)

func main() {
	// Load the configuration
	cfg, err := inits.Config()
	if err != nil {
		log.Fatal(fmt.Errorf("error loading config: %w", err))
	}

	// Set up the logger
	l, err := serverinits.Logger(!cfg.IsProd, "stix-mirror")
	if err != nil {
		log.Fatal(fmt.Errorf("error initializing logger: %w", err))
	}
	defer l.Sync()

	// Switch to the structured logger
	l.Debug("logger initialized")

	// Start the heartbeat loop
	handlerApp := handlers.NewApp(cfg, l)
	handlerApp.Start()

	// Keep running until told to stop
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	l.Info("shutting down", zap.String("bundle", cfg.BundlePath))
	handlerApp.Stop()
}
