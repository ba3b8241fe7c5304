package config

import (
	"testing"
	"time"
)

func TestConfig_Structure(t *testing.T) {
	cfg := &Config{
		MQTT: MQTTConfig{
			Broker:   "tcp://localhost:1883",
			ClientID: "test-client",
			Topic:    "test/queue",
			QoS:      1,
		},
		Ledger: LedgerConfig{
			Address:   "localhost:6379",
			KeyPrefix: "test-ledger",
		},
		Printer: PrinterConfig{
			Name:    "labelwriter",
			Command: "lp",
		},
		Pipeline: PipelineConfig{
			OrderFilter: FilterEven,
			Prefetch:    1,
		},
	}

	if cfg.MQTT.Broker != "tcp://localhost:1883" {
		t.Errorf("MQTT.Broker = %s; want tcp://localhost:1883", cfg.MQTT.Broker)
	}
	if cfg.Ledger.Address != "localhost:6379" {
		t.Errorf("Ledger.Address = %s; want localhost:6379", cfg.Ledger.Address)
	}
	if cfg.Printer.Name != "labelwriter" {
		t.Errorf("Printer.Name = %s; want labelwriter", cfg.Printer.Name)
	}
	if cfg.Pipeline.OrderFilter != FilterEven {
		t.Errorf("Pipeline.OrderFilter = %s; want even", cfg.Pipeline.OrderFilter)
	}
}

func TestMQTTConfig_Fields(t *testing.T) {
	mc := MQTTConfig{
		Broker:               "tcp://mqtt:1883",
		ClientID:             "client",
		Topic:                "print/queue",
		QoS:                  2,
		ConnectTimeout:       10 * time.Second,
		SubscribeTimeout:     10 * time.Second,
		MaxReconnectInterval: 10 * time.Second,
		DisconnectTimeout:    1000,
		TLSEnabled:           true,
		CACert:               "/path/to/ca.crt",
		ClientCert:           "/path/to/client.crt",
		ClientKey:            "/path/to/client.key",
		InsecureSkip:         false,
		UseCertCNPrefix:      true,
	}

	if mc.Broker != "tcp://mqtt:1883" {
		t.Errorf("Broker = %s; want tcp://mqtt:1883", mc.Broker)
	}
	if mc.QoS != 2 {
		t.Errorf("QoS = %d; want 2", mc.QoS)
	}
	if !mc.TLSEnabled {
		t.Error("TLSEnabled = false; want true")
	}
	if !mc.UseCertCNPrefix {
		t.Error("UseCertCNPrefix = false; want true")
	}
}

func TestLedgerConfig_Fields(t *testing.T) {
	lc := LedgerConfig{
		Address:      "redis:6379",
		KeyPrefix:    "ledger",
		DialTimeout:  10 * time.Second,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 5 * time.Second,
		PingTimeout:  5 * time.Second,
		OpTimeout:    5 * time.Second,
	}

	if lc.Address != "redis:6379" {
		t.Errorf("Address = %s; want redis:6379", lc.Address)
	}
	if lc.KeyPrefix != "ledger" {
		t.Errorf("KeyPrefix = %s; want ledger", lc.KeyPrefix)
	}
	if lc.OpTimeout != 5*time.Second {
		t.Errorf("OpTimeout = %v; want 5s", lc.OpTimeout)
	}
}

func TestPipelineConfig_Fields(t *testing.T) {
	pc := PipelineConfig{
		OrderFilter:     FilterOdd,
		Prefetch:        2,
		PrintBackoff:    3 * time.Second,
		ShutdownTimeout: 30 * time.Second,
	}

	if pc.OrderFilter != FilterOdd {
		t.Errorf("OrderFilter = %s; want odd", pc.OrderFilter)
	}
	if pc.Prefetch != 2 {
		t.Errorf("Prefetch = %d; want 2", pc.Prefetch)
	}
	if pc.PrintBackoff != 3*time.Second {
		t.Errorf("PrintBackoff = %v; want 3s", pc.PrintBackoff)
	}
	if pc.ShutdownTimeout != 30*time.Second {
		t.Errorf("ShutdownTimeout = %v; want 30s", pc.ShutdownTimeout)
	}
}
