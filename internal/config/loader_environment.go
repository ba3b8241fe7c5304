package config

import (
	"os"
	"strconv"
	"time"
)

// loadMQTTFromEnv loads MQTT configuration from environment variables
func loadMQTTFromEnv(cfg *MQTTConfig) {
	loadMQTTStrings(cfg)
	loadMQTTInts(cfg)
	loadMQTTTimeouts(cfg)
	loadMQTTTLS(cfg)
	loadMQTTBools(cfg)
}

func loadMQTTStrings(cfg *MQTTConfig) {
	if v := getEnvString("MQTT_BROKER"); v != "" {
		cfg.Broker = v
	}
	if v := getEnvString("MQTT_CLIENT_ID"); v != "" {
		cfg.ClientID = v
	}
	if v := getEnvString("MQTT_TOPIC"); v != "" {
		cfg.Topic = v
	}
}

func loadMQTTInts(cfg *MQTTConfig) {
	if v := getEnvInt("MQTT_QOS"); v >= 1 && v <= 2 {
		cfg.QoS = byte(v) // #nosec G115 - validated range 1-2
	}
	if v := getEnvInt("MQTT_DISCONNECT_TIMEOUT"); v != 0 {
		cfg.DisconnectTimeout = uint(v) // #nosec G115 - config values are non-negative
	}
}

func loadMQTTTimeouts(cfg *MQTTConfig) {
	if v := getEnvDuration("MQTT_CONNECT_TIMEOUT"); v != 0 {
		cfg.ConnectTimeout = v
	}
	if v := getEnvDuration("MQTT_SUBSCRIBE_TIMEOUT"); v != 0 {
		cfg.SubscribeTimeout = v
	}
	if v := getEnvDuration("MQTT_MAX_RECONNECT_INTERVAL"); v != 0 {
		cfg.MaxReconnectInterval = v
	}
}

func loadMQTTTLS(cfg *MQTTConfig) {
	if v := getEnvString("MQTT_CA_CERT"); v != "" {
		cfg.CACert = v
	}
	if v := getEnvString("MQTT_CLIENT_CERT"); v != "" {
		cfg.ClientCert = v
	}
	if v := getEnvString("MQTT_CLIENT_KEY"); v != "" {
		cfg.ClientKey = v
	}
}

func loadMQTTBools(cfg *MQTTConfig) {
	if v := getEnvBool("MQTT_TLS_ENABLED"); v {
		cfg.TLSEnabled = v
	}
	if v := getEnvBool("MQTT_TLS_INSECURE_SKIP"); v {
		cfg.InsecureSkip = v
	}
	if v := getEnvBool("MQTT_USE_CERT_CN_PREFIX"); v {
		cfg.UseCertCNPrefix = v
	}
}

// loadLedgerFromEnv loads ledger configuration from environment variables
func loadLedgerFromEnv(cfg *LedgerConfig) {
	if v := getEnvString("LEDGER_ADDRESS"); v != "" {
		cfg.Address = v
	}
	if v := getEnvString("LEDGER_KEY_PREFIX"); v != "" {
		cfg.KeyPrefix = v
	}
	loadLedgerTimeouts(cfg)
}

func loadLedgerTimeouts(cfg *LedgerConfig) {
	if v := getEnvDuration("LEDGER_DIAL_TIMEOUT"); v != 0 {
		cfg.DialTimeout = v
	}
	if v := getEnvDuration("LEDGER_READ_TIMEOUT"); v != 0 {
		cfg.ReadTimeout = v
	}
	if v := getEnvDuration("LEDGER_WRITE_TIMEOUT"); v != 0 {
		cfg.WriteTimeout = v
	}
	if v := getEnvDuration("LEDGER_PING_TIMEOUT"); v != 0 {
		cfg.PingTimeout = v
	}
	if v := getEnvDuration("LEDGER_OP_TIMEOUT"); v != 0 {
		cfg.OpTimeout = v
	}
}

// loadPrinterFromEnv loads printer configuration from environment variables
func loadPrinterFromEnv(cfg *PrinterConfig) {
	if v := getEnvString("PRINTER_NAME"); v != "" {
		cfg.Name = v
	}
	if v := getEnvString("PRINTER_COMMAND"); v != "" {
		cfg.Command = v
	}
}

// loadPipelineFromEnv loads pipeline configuration from environment variables
func loadPipelineFromEnv(cfg *PipelineConfig) {
	if v := getEnvString("PIPELINE_ORDER_FILTER"); v != "" {
		cfg.OrderFilter = FilterMode(v)
	}
	if v := getEnvInt("PIPELINE_PREFETCH"); v != 0 {
		cfg.Prefetch = v
	}
	if v := getEnvDuration("PIPELINE_PRINT_BACKOFF"); v != 0 {
		cfg.PrintBackoff = v
	}
	if v := getEnvDuration("PIPELINE_SHUTDOWN_TIMEOUT"); v != 0 {
		cfg.ShutdownTimeout = v
	}
}

// loadMetricsFromEnv loads metrics configuration from environment variables
func loadMetricsFromEnv(cfg *MetricsConfig) {
	if v := getEnvString("METRICS_ADDRESS"); v != "" {
		cfg.Address = v
	}
}

// Helper functions for reading environment variables

func getEnvString(key string) string {
	return os.Getenv(key)
}

func getEnvInt(key string) int {
	value := os.Getenv(key)
	if value == "" {
		return 0
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return intValue
}

func getEnvDuration(key string) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return 0
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return duration
}

func getEnvBool(key string) bool {
	value := os.Getenv(key)
	return value == "true"
}
