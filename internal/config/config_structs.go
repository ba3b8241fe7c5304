// Package config provides configuration loading and validation from environment variables and command line flags.
package config

import "time"

// Config holds the complete configuration
type Config struct {
	MQTT     MQTTConfig
	Ledger   LedgerConfig
	Printer  PrinterConfig
	Pipeline PipelineConfig
	Metrics  MetricsConfig
	Log      LogConfig
}

// MQTTConfig holds MQTT subscriber configuration
type MQTTConfig struct {
	Broker               string
	ClientID             string // Empty derives a host-stable ID at load time
	Topic                string
	QoS                  byte // 1 or 2; QoS 0 cannot redeliver
	ConnectTimeout       time.Duration
	SubscribeTimeout     time.Duration
	MaxReconnectInterval time.Duration
	DisconnectTimeout    uint // Milliseconds for graceful disconnect
	// TLS Configuration
	TLSEnabled      bool
	CACert          string
	ClientCert      string
	ClientKey       string
	InsecureSkip    bool
	UseCertCNPrefix bool // If true, prefix the topic with cert CN for ACL constraints
}

// LedgerConfig holds print-ledger store configuration
type LedgerConfig struct {
	Address      string
	KeyPrefix    string
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PingTimeout  time.Duration
	OpTimeout    time.Duration // Per-operation deadline for ledger commands
}

// PrinterConfig holds print device configuration
type PrinterConfig struct {
	Name    string // Empty resolves to the system default printer at startup
	Command string // Spool command, invoked as: <command> -d <name> <file>
}

// PipelineConfig holds processing pipeline settings
type PipelineConfig struct {
	OrderFilter     FilterMode
	Prefetch        int           // Deliveries processed concurrently
	PrintBackoff    time.Duration // Pause after a failed print before redelivery
	ShutdownTimeout time.Duration
}

// MetricsConfig holds the metrics endpoint configuration
type MetricsConfig struct {
	Address string // Listen address for /metrics, empty disables the endpoint
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string // Overrides the LOG_LEVEL environment variable when set
}
