package config

import (
	"flag"
)

// Command line flags (have precedence over environment variables)
var (
	// MQTT flags
	flagMQTTBroker            = flag.String("mqtt-broker", "", "MQTT broker URL")
	flagMQTTClientID          = flag.String("mqtt-client-id", "", "MQTT client ID")
	flagMQTTTopic             = flag.String("mqtt-topic", "", "MQTT subscription topic")
	flagMQTTQoS               = flag.Int("mqtt-qos", -1, "MQTT QoS (1 or 2)")
	flagMQTTConnectTimeout    = flag.Duration("mqtt-connect-timeout", 0, "MQTT connect timeout")
	flagMQTTSubscribeTimeout  = flag.Duration("mqtt-subscribe-timeout", 0, "MQTT subscribe timeout")
	flagMQTTMaxReconnect      = flag.Duration("mqtt-max-reconnect-interval", 0, "MQTT max reconnect interval")
	flagMQTTDisconnectTimeout = flag.Int("mqtt-disconnect-timeout", 0, "MQTT disconnect timeout (ms)")
	flagMQTTTLSEnabled        = flag.Bool("mqtt-tls-enabled", false, "Enable MQTT TLS")
	flagMQTTCACert            = flag.String("mqtt-ca-cert", "", "MQTT CA certificate path")
	flagMQTTClientCert        = flag.String("mqtt-client-cert", "", "MQTT client certificate path")
	flagMQTTClientKey         = flag.String("mqtt-client-key", "", "MQTT client key path")
	flagMQTTTLSInsecureSkip   = flag.Bool("mqtt-tls-insecure-skip", false, "Skip MQTT TLS verification")
	// Prefix topic with client cert CN (for ACL constraints)
	flagMQTTUseCertCNPrefix = flag.Bool("mqtt-use-cert-cn-prefix", false, "Prefix topic with client cert CN")

	// Ledger flags
	flagLedgerAddress      = flag.String("ledger-address", "", "Ledger store address")
	flagLedgerKeyPrefix    = flag.String("ledger-key-prefix", "", "Ledger key prefix")
	flagLedgerDialTimeout  = flag.Duration("ledger-dial-timeout", 0, "Ledger dial timeout")
	flagLedgerReadTimeout  = flag.Duration("ledger-read-timeout", 0, "Ledger read timeout")
	flagLedgerWriteTimeout = flag.Duration("ledger-write-timeout", 0, "Ledger write timeout")
	flagLedgerPingTimeout  = flag.Duration("ledger-ping-timeout", 0, "Ledger ping timeout")
	flagLedgerOpTimeout    = flag.Duration("ledger-op-timeout", 0, "Ledger per-operation timeout")

	// Printer flags
	flagPrinterName    = flag.String("printer-name", "", "Printer name (empty for system default)")
	flagPrinterCommand = flag.String("printer-command", "", "Spool command")

	// Pipeline flags
	flagPipelineOrderFilter     = flag.String("pipeline-order-filter", "", "Print all, even or odd order numbers")
	flagPipelinePrefetch        = flag.Int("pipeline-prefetch", 0, "Deliveries processed concurrently")
	flagPipelinePrintBackoff    = flag.Duration("pipeline-print-backoff", 0, "Pause after a failed print")
	flagPipelineShutdownTimeout = flag.Duration("pipeline-shutdown-timeout", 0, "Pipeline shutdown timeout")

	// Metrics flags
	flagMetricsAddress = flag.String("metrics-address", "", "Metrics listen address (empty disables)")

	// Log flags
	flagLogLevel = flag.String("log-level", "", "Log level (trace, debug, info, warn, error, fatal)")
)

// applyMQTTFlags applies command line flags to MQTT configuration
func applyMQTTFlags(cfg *MQTTConfig) {
	applyMQTTFlagStrings(cfg)
	applyMQTTFlagInts(cfg)
	applyMQTTFlagTimeouts(cfg)
	applyMQTTFlagTLS(cfg)
	applyMQTTFlagBools(cfg)
}

func applyMQTTFlagStrings(cfg *MQTTConfig) {
	if *flagMQTTBroker != "" {
		cfg.Broker = *flagMQTTBroker
	}
	if *flagMQTTClientID != "" {
		cfg.ClientID = *flagMQTTClientID
	}
	if *flagMQTTTopic != "" {
		cfg.Topic = *flagMQTTTopic
	}
}

func applyMQTTFlagInts(cfg *MQTTConfig) {
	if *flagMQTTQoS >= 1 && *flagMQTTQoS <= 2 {
		cfg.QoS = byte(*flagMQTTQoS) // #nosec G115 - validated range 1-2
	}
	if *flagMQTTDisconnectTimeout != 0 {
		cfg.DisconnectTimeout = uint(*flagMQTTDisconnectTimeout) // #nosec G115 - config values are non-negative
	}
}

func applyMQTTFlagTimeouts(cfg *MQTTConfig) {
	if *flagMQTTConnectTimeout != 0 {
		cfg.ConnectTimeout = *flagMQTTConnectTimeout
	}
	if *flagMQTTSubscribeTimeout != 0 {
		cfg.SubscribeTimeout = *flagMQTTSubscribeTimeout
	}
	if *flagMQTTMaxReconnect != 0 {
		cfg.MaxReconnectInterval = *flagMQTTMaxReconnect
	}
}

func applyMQTTFlagTLS(cfg *MQTTConfig) {
	if *flagMQTTCACert != "" {
		cfg.CACert = *flagMQTTCACert
	}
	if *flagMQTTClientCert != "" {
		cfg.ClientCert = *flagMQTTClientCert
	}
	if *flagMQTTClientKey != "" {
		cfg.ClientKey = *flagMQTTClientKey
	}
}

func applyMQTTFlagBools(cfg *MQTTConfig) {
	// Handle bool flags - check if explicitly set
	if isFlagSet("mqtt-tls-enabled") {
		cfg.TLSEnabled = *flagMQTTTLSEnabled
	}
	if isFlagSet("mqtt-tls-insecure-skip") {
		cfg.InsecureSkip = *flagMQTTTLSInsecureSkip
	}
	if isFlagSet("mqtt-use-cert-cn-prefix") {
		cfg.UseCertCNPrefix = *flagMQTTUseCertCNPrefix
	}
}

// applyLedgerFlags applies command line flags to ledger configuration
func applyLedgerFlags(cfg *LedgerConfig) {
	if *flagLedgerAddress != "" {
		cfg.Address = *flagLedgerAddress
	}
	if *flagLedgerKeyPrefix != "" {
		cfg.KeyPrefix = *flagLedgerKeyPrefix
	}
	applyLedgerFlagTimeouts(cfg)
}

func applyLedgerFlagTimeouts(cfg *LedgerConfig) {
	if *flagLedgerDialTimeout != 0 {
		cfg.DialTimeout = *flagLedgerDialTimeout
	}
	if *flagLedgerReadTimeout != 0 {
		cfg.ReadTimeout = *flagLedgerReadTimeout
	}
	if *flagLedgerWriteTimeout != 0 {
		cfg.WriteTimeout = *flagLedgerWriteTimeout
	}
	if *flagLedgerPingTimeout != 0 {
		cfg.PingTimeout = *flagLedgerPingTimeout
	}
	if *flagLedgerOpTimeout != 0 {
		cfg.OpTimeout = *flagLedgerOpTimeout
	}
}

// applyPrinterFlags applies command line flags to printer configuration
func applyPrinterFlags(cfg *PrinterConfig) {
	if *flagPrinterName != "" {
		cfg.Name = *flagPrinterName
	}
	if *flagPrinterCommand != "" {
		cfg.Command = *flagPrinterCommand
	}
}

// applyPipelineFlags applies command line flags to pipeline configuration
func applyPipelineFlags(cfg *PipelineConfig) {
	if *flagPipelineOrderFilter != "" {
		cfg.OrderFilter = FilterMode(*flagPipelineOrderFilter)
	}
	if *flagPipelinePrefetch != 0 {
		cfg.Prefetch = *flagPipelinePrefetch
	}
	if *flagPipelinePrintBackoff != 0 {
		cfg.PrintBackoff = *flagPipelinePrintBackoff
	}
	if *flagPipelineShutdownTimeout != 0 {
		cfg.ShutdownTimeout = *flagPipelineShutdownTimeout
	}
}

// applyMetricsFlags applies command line flags to metrics configuration
func applyMetricsFlags(cfg *MetricsConfig) {
	if *flagMetricsAddress != "" {
		cfg.Address = *flagMetricsAddress
	}
}

// applyLogFlags applies command line flags to logging configuration
func applyLogFlags(cfg *LogConfig) {
	if *flagLogLevel != "" {
		cfg.Level = *flagLogLevel
	}
}

// isFlagSet checks if a flag was explicitly set on the command line
func isFlagSet(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}
