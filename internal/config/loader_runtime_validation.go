package config

import (
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
)

// applyRuntimeValidation applies runtime validations and transformations
func applyRuntimeValidation(cfg *Config) error {
	if err := applyClientID(cfg); err != nil {
		return err
	}
	return applyTopicPrefix(cfg)
}

// applyClientID derives a host-stable client ID when none is configured.
// The broker ties the persistent session, and with it any unacknowledged
// deliveries, to this ID, so it must survive restarts.
func applyClientID(cfg *Config) error {
	if cfg.MQTT.ClientID != "" {
		return nil
	}
	hostname, err := os.Hostname()
	if err != nil {
		return fmt.Errorf("failed to derive client ID from hostname: %w", err)
	}
	cfg.MQTT.ClientID = "print-consumer-" + hostname
	return nil
}

// applyTopicPrefix prefixes the MQTT topic with certificate CN if configured
func applyTopicPrefix(cfg *Config) error {
	if cfg.MQTT.UseCertCNPrefix && cfg.MQTT.ClientCert != "" {
		cn, err := extractCNFromCertFile(cfg.MQTT.ClientCert)
		if err != nil {
			return fmt.Errorf("failed to extract CN from certificate: %w", err)
		}
		cfg.MQTT.Topic = cn + "/" + cfg.MQTT.Topic
	}
	return nil
}

// extractCNFromCertFile extracts the CN from a PEM certificate file
func extractCNFromCertFile(certPath string) (string, error) {
	certPEM, err := os.ReadFile(certPath) // #nosec G304 - certPath is from config, not user input
	if err != nil {
		return "", fmt.Errorf("failed to read certificate: %w", err)
	}

	block, _ := pem.Decode(certPEM)
	if block == nil {
		return "", fmt.Errorf("failed to decode PEM certificate")
	}

	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return "", fmt.Errorf("failed to parse certificate: %w", err)
	}

	if cert.Subject.CommonName == "" {
		return "", fmt.Errorf("certificate has no CN")
	}

	return cert.Subject.CommonName, nil
}
