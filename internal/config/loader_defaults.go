package config

import "time"

// defaultMQTTConfig returns the default MQTT configuration
func defaultMQTTConfig() MQTTConfig {
	return MQTTConfig{
		Broker:               "tcp://localhost:1883",
		ClientID:             "",
		Topic:                "print/queue",
		QoS:                  1,
		ConnectTimeout:       10 * time.Second,
		SubscribeTimeout:     10 * time.Second,
		MaxReconnectInterval: 10 * time.Second,
		DisconnectTimeout:    1000,
		TLSEnabled:           false,
		CACert:               "",
		ClientCert:           "",
		ClientKey:            "",
		InsecureSkip:         false,
		UseCertCNPrefix:      false,
	}
}

// defaultLedgerConfig returns the default ledger configuration
func defaultLedgerConfig() LedgerConfig {
	return LedgerConfig{
		Address:      "localhost:6379",
		KeyPrefix:    "print-ledger",
		DialTimeout:  10 * time.Second,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 5 * time.Second,
		PingTimeout:  5 * time.Second,
		OpTimeout:    5 * time.Second,
	}
}

// defaultPrinterConfig returns the default printer configuration
func defaultPrinterConfig() PrinterConfig {
	return PrinterConfig{
		Name:    "",
		Command: "lp",
	}
}

// defaultPipelineConfig returns the default pipeline configuration
func defaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		OrderFilter:     FilterAll,
		Prefetch:        1,
		PrintBackoff:    3 * time.Second,
		ShutdownTimeout: 30 * time.Second,
	}
}

// defaultMetricsConfig returns the default metrics configuration
func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Address: "",
	}
}

// defaultConfig returns a complete configuration with all default values
func defaultConfig() *Config {
	return &Config{
		MQTT:     defaultMQTTConfig(),
		Ledger:   defaultLedgerConfig(),
		Printer:  defaultPrinterConfig(),
		Pipeline: defaultPipelineConfig(),
		Metrics:  defaultMetricsConfig(),
	}
}
