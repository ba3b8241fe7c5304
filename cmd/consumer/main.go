// Package main starts the print consumer binary.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ibs-source/print-consumer/internal/config"
	"github.com/ibs-source/print-consumer/internal/ledger"
	"github.com/ibs-source/print-consumer/internal/log"
	"github.com/ibs-source/print-consumer/internal/mqtt"
	"github.com/ibs-source/print-consumer/internal/pipeline"
	"github.com/ibs-source/print-consumer/internal/printer"
)

func run() int {
	logger := log.New()
	logger.Info("Starting print consumer")

	cfg, err := loadAndLogConfig(logger)
	if err != nil {
		return 1
	}

	if cfg.Log.Level != "" {
		logger.SetLevel(cfg.Log.Level)
	}

	if err := resolvePrinter(cfg, logger); err != nil {
		return 1
	}

	ledgerClient, source, runner, err := initializeServices(cfg, logger)
	if err != nil {
		return 1
	}
	defer closeServices(source, ledgerClient, logger)

	startMetricsServer(cfg, logger)

	return runMainLoop(runner, cfg, logger)
}

func loadAndLogConfig(logger *log.Logger) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration: %v", err)
	}

	logger.Info("Configuration loaded successfully")
	logger.Info("MQTT: %s, Topic: %s (QoS %d)", cfg.MQTT.Broker, cfg.MQTT.Topic, cfg.MQTT.QoS)
	logger.Info("Ledger: %s, Prefix: %s", cfg.Ledger.Address, cfg.Ledger.KeyPrefix)
	logger.Info("Pipeline: Filter=%s, Prefetch=%d", cfg.Pipeline.OrderFilter, cfg.Pipeline.Prefetch)
	return cfg, nil
}

// resolvePrinter pins down the print destination before any message is
// taken: an empty configured name means the system default printer, and
// starting without one would turn every delivery into a failed print.
func resolvePrinter(cfg *config.Config, logger *log.Logger) error {
	discovery := printer.NewDiscovery(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if cfg.Printer.Name == "" {
		name, err := discovery.DefaultName(ctx)
		if err != nil {
			logger.Fatal("Failed to resolve default printer: %v", err)
		}
		cfg.Printer.Name = name
		logger.Info("Using system default printer %q", name)
		return nil
	}

	// A named printer the spooler does not know about is only a warning:
	// the spool command stays the authority on what it can reach
	known, err := discovery.Exists(ctx, cfg.Printer.Name)
	if err != nil {
		logger.Warn("Could not verify printer %q: %v", cfg.Printer.Name, err)
	} else if !known {
		logger.Warn("Printer %q is not known to the print service", cfg.Printer.Name)
	} else {
		logger.Info("Using printer %q", cfg.Printer.Name)
	}
	return nil
}

func initializeServices(cfg *config.Config, logger *log.Logger) (*ledger.Client, *mqtt.Client, *pipeline.Runner, error) {
	ledgerClient, err := ledger.NewClient(&cfg.Ledger, logger)
	if err != nil {
		logger.Fatal("Failed to create ledger client: %v", err)
	}
	logger.Info("Connected to print ledger")

	mqttClient, err := mqtt.NewClient(&cfg.MQTT, logger)
	if err != nil {
		logger.Fatal("Failed to create MQTT client: %v", err)
	}
	logger.Info("Connected to MQTT broker")

	spooler := printer.NewSpooler(&cfg.Printer, logger)
	runner := pipeline.NewRunner(mqttClient, pipeline.New(ledgerClient, spooler, cfg, logger), cfg, logger)
	return ledgerClient, mqttClient, runner, nil
}

func closeServices(mqttClient *mqtt.Client, ledgerClient *ledger.Client, logger *log.Logger) {
	if err := mqttClient.Close(); err != nil {
		logger.Error("Error closing MQTT client: %v", err)
	}
	if err := ledgerClient.Close(); err != nil {
		logger.Error("Error closing ledger client: %v", err)
	}
}

// startMetricsServer exposes /metrics when an address is configured
func startMetricsServer(cfg *config.Config, logger *log.Logger) {
	if cfg.Metrics.Address == "" {
		return
	}

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())

		srv := &http.Server{
			Addr:              cfg.Metrics.Address,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}

		logger.Info("Metrics endpoint listening on %s", cfg.Metrics.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics endpoint failed: %v", err)
		}
	}()
}

func runMainLoop(runner *pipeline.Runner, cfg *config.Config, logger *log.Logger) int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errChan <- err
		}
	}()

	logger.Info("Print consumer started")

	select {
	case sig := <-sigChan:
		logger.Info("Received signal %v, initiating graceful shutdown", sig)
		cancel()
		return handleGracefulShutdown(cfg, logger)

	case err := <-errChan:
		logger.Error("Consumer error: %v", err)
		cancel()
		return 1
	}
}

func handleGracefulShutdown(cfg *config.Config, logger *log.Logger) int {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Pipeline.ShutdownTimeout)
	defer shutdownCancel()

	done := make(chan struct{})
	go func() {
		time.Sleep(100 * time.Millisecond) // Give goroutines time to exit
		close(done)
	}()

	select {
	case <-done:
		logger.Info("Graceful shutdown completed")
		logger.Info("Consumer stopped")
		return 0
	case <-shutdownCtx.Done():
		logger.Error("Shutdown timeout exceeded")
		return 1
	}
}

func main() {
	// Keep main minimal to ensure defers in run() execute correctly.
	os.Exit(run())
}
