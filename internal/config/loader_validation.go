package config

import "fmt"

// Validate checks configuration constraints
func Validate(cfg *Config) error {
	if err := validateMQTT(&cfg.MQTT); err != nil {
		return err
	}
	if err := validateLedger(&cfg.Ledger); err != nil {
		return err
	}
	if err := validatePrinter(&cfg.Printer); err != nil {
		return err
	}
	if err := validatePipeline(&cfg.Pipeline); err != nil {
		return err
	}
	return validateLog(&cfg.Log)
}

// validateMQTT validates MQTT configuration
func validateMQTT(cfg *MQTTConfig) error {
	if cfg.Broker == "" {
		return fmt.Errorf("mqtt broker cannot be empty")
	}
	if cfg.ClientID == "" {
		return fmt.Errorf("mqtt client ID cannot be empty")
	}
	if cfg.Topic == "" {
		return fmt.Errorf("mqtt topic cannot be empty")
	}
	if cfg.QoS < 1 || cfg.QoS > 2 {
		return fmt.Errorf("mqtt qos must be 1 or 2 for redelivery")
	}
	return nil
}

// validateLedger validates ledger configuration
func validateLedger(cfg *LedgerConfig) error {
	if cfg.Address == "" {
		return fmt.Errorf("ledger address cannot be empty")
	}
	if cfg.KeyPrefix == "" {
		return fmt.Errorf("ledger key prefix cannot be empty")
	}
	return nil
}

// validatePrinter validates printer configuration
func validatePrinter(cfg *PrinterConfig) error {
	if cfg.Command == "" {
		return fmt.Errorf("printer command cannot be empty")
	}
	return nil
}

// validatePipeline validates pipeline configuration
func validatePipeline(cfg *PipelineConfig) error {
	if !cfg.OrderFilter.Valid() {
		return fmt.Errorf("order filter must be all, even or odd")
	}
	if cfg.Prefetch < 1 {
		return fmt.Errorf("pipeline prefetch must be positive")
	}
	if cfg.PrintBackoff < 0 {
		return fmt.Errorf("pipeline print backoff cannot be negative")
	}
	return nil
}

// validateLog validates logging configuration
func validateLog(cfg *LogConfig) error {
	switch cfg.Level {
	case "", "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return nil
	}
	return fmt.Errorf("unknown log level %q", cfg.Level)
}
