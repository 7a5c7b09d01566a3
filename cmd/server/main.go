package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/webcungs/order-relay/internal/config"
	"github.com/webcungs/order-relay/internal/handlers"
	"github.com/webcungs/order-relay/internal/logger"
	"github.com/webcungs/order-relay/internal/metrics"
	"github.com/webcungs/order-relay/internal/order"
	"github.com/webcungs/order-relay/internal/relay"
	"github.com/webcungs/order-relay/internal/server"
	"github.com/webcungs/order-relay/internal/state"
)

// Global variables for configuration and services
var (
	cfg      *config.Config
	log      *logger.Logger
	sessions *state.Store
	waClient *relay.Client
	errChan  = make(chan error, 2)
)

func main() {
	// Create a context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup

	if err := initialize(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Initialization error: %v\n", err)
		os.Exit(1)
	}

	// Start the WhatsApp client and the web server
	startWhatsAppClient(ctx, &wg)
	startWebServer(ctx, &wg)

	waitForShutdown(cancel, &wg)
}

func initialize(ctx context.Context) error {
	var err error

	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log = logger.New(cfg.Log.Level, cfg.Log.Format)
	log.Infof("Starting WhatsApp order relay for group %q", cfg.WhatsApp.GroupName)

	metrics.Register()

	sessions = state.New()
	notifier := order.NewNotifier(cfg.Order.APIEndpoint, cfg.Order.Timeout, log)

	waClient, err = relay.New(ctx, relay.Config{
		DBDriver:       cfg.Database.Driver,
		DBDSN:          cfg.Database.DSN,
		WALogLevel:     cfg.WhatsApp.LogLevel,
		DeviceName:     cfg.WhatsApp.DeviceName,
		GroupName:      cfg.WhatsApp.GroupName,
		ReconnectDelay: cfg.WhatsApp.ReconnectDelay,
		Heartbeat:      cfg.WhatsApp.Heartbeat,
	}, sessions, notifier, log)
	if err != nil {
		return fmt.Errorf("failed to create WhatsApp client: %w", err)
	}

	return nil
}

func startWhatsAppClient(ctx context.Context, wg *sync.WaitGroup) {
	wg.Go(func() {
		defer func() {
			waClient.Stop()
			log.Info("WhatsApp client shutdown complete")
		}()

		log.Info("Starting WhatsApp client...")
		if err := waClient.Start(ctx); err != nil {
			errChan <- fmt.Errorf("failed to connect to WhatsApp: %w", err)
			return
		}

		// Reconnects are handled by the supervisor from here on
		<-ctx.Done()
		log.Info("WhatsApp client shutting down...")
	})
}

func startWebServer(ctx context.Context, wg *sync.WaitGroup) {
	wg.Go(func() {
		log.Info("Starting HTTP server...")

		httpHandler := handlers.New(waClient, sessions, cfg.WhatsApp.GroupName, log)

		httpServer := server.New(cfg, httpHandler, log)
		if err := httpServer.Start(cfg); err != nil {
			errChan <- fmt.Errorf("failed to start HTTP server: %w", err)
			return
		}

		<-ctx.Done()
		log.Info("HTTP server shutting down...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("Error during HTTP server shutdown", err)
		}
	})
}

func waitForShutdown(cancel context.CancelFunc, wg *sync.WaitGroup) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		log.Error("Service failed", err)
	case <-sigChan:
		log.Info("Received shutdown signal")
	}

	// Cancel context to signal goroutines to shutdown
	cancel()
	wg.Wait()

	log.Info("Application stopped")
}
