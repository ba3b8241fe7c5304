package config

import (
	"flag"
	"fmt"
)

// Load loads configuration with precedence: defaults → environment variables → command line flags
// It performs validation and runtime transformations before returning the configuration.
// The LOG_LEVEL environment variable is read by the log package itself, not here.
func Load() (*Config, error) {
	// Parse command line flags if not already parsed
	if !flag.Parsed() {
		flag.Parse()
	}

	// Step 1: Start with defaults
	cfg := defaultConfig()

	// Step 2: Apply environment variables
	loadMQTTFromEnv(&cfg.MQTT)
	loadLedgerFromEnv(&cfg.Ledger)
	loadPrinterFromEnv(&cfg.Printer)
	loadPipelineFromEnv(&cfg.Pipeline)
	loadMetricsFromEnv(&cfg.Metrics)

	// Step 3: Apply command line flags (highest precedence)
	applyMQTTFlags(&cfg.MQTT)
	applyLedgerFlags(&cfg.Ledger)
	applyPrinterFlags(&cfg.Printer)
	applyPipelineFlags(&cfg.Pipeline)
	applyMetricsFlags(&cfg.Metrics)
	applyLogFlags(&cfg.Log)

	// Step 4: Apply runtime validations and transformations
	if err := applyRuntimeValidation(cfg); err != nil {
		return nil, err
	}

	// Step 5: Validate the final configuration
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
