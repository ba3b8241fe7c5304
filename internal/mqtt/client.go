// Package mqtt provides the subscription side of the print queue: a
// persistent-session MQTT client that turns broker messages into pipeline
// deliveries with manual acknowledgment.
package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/ibs-source/print-consumer/internal/config"
	"github.com/ibs-source/print-consumer/internal/log"
	"github.com/ibs-source/print-consumer/internal/message"
)

// Client manages the MQTT subscription that feeds the pipeline
type Client struct {
	client            mqtt.Client
	topic             string
	qos               byte
	subscribeTimeout  time.Duration
	disconnectTimeout uint
	deliveries        chan message.Delivery
	done              chan struct{}
	closeOnce         sync.Once
	log               *log.Logger
}

// NewClient connects to the broker and prepares the delivery channel.
// Subscribe must be called before deliveries flow.
func NewClient(cfg *config.MQTTConfig, logger *log.Logger) (*Client, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetConnectTimeout(cfg.ConnectTimeout)
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(cfg.MaxReconnectInterval)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	// At-least-once consumption: the broker keeps the session and its
	// unacknowledged messages across restarts, the pipeline acks by hand,
	// and the ordered router gives us backpressure instead of a goroutine
	// per message.
	opts.SetCleanSession(false)
	opts.SetAutoAckDisabled(true)
	opts.SetOrderMatters(true)
	opts.SetResumeSubs(true)

	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		if err != nil {
			logger.Error("MQTT connection lost: %v", err)
		}
	})

	opts.SetReconnectingHandler(func(_ mqtt.Client, _ *mqtt.ClientOptions) {
		logger.Info("MQTT reconnecting...")
	})

	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		logger.Info("MQTT connected successfully")
	})

	// Configure TLS if enabled
	if cfg.TLSEnabled {
		tlsConfig, err := newTLSConfig(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS config: %w", err)
		}
		opts.SetTLSConfig(tlsConfig)
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(cfg.ConnectTimeout) {
		return nil, fmt.Errorf("mqtt connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("failed to connect to MQTT: %w", err)
	}

	return &Client{
		client:            client,
		topic:             cfg.Topic,
		qos:               cfg.QoS,
		subscribeTimeout:  cfg.SubscribeTimeout,
		disconnectTimeout: cfg.DisconnectTimeout,
		deliveries:        make(chan message.Delivery),
		done:              make(chan struct{}),
		log:               logger,
	}, nil
}

// newTLSConfig creates a TLS configuration from MQTT config
func newTLSConfig(cfg *config.MQTTConfig) (*tls.Config, error) {
	tlsConfig := &tls.Config{
		// Note: Enabling InsecureSkipVerify weakens TLS security and should only be used for testing.
		InsecureSkipVerify: cfg.InsecureSkip, // #nosec G402 - configurable for testing environments
		MinVersion:         tls.VersionTLS12,
	}

	// Load CA certificate if provided
	if cfg.CACert != "" {
		caCert, err := os.ReadFile(cfg.CACert)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA cert: %w", err)
		}

		caCertPool := x509.NewCertPool()
		if !caCertPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to parse CA cert")
		}
		tlsConfig.RootCAs = caCertPool
	}

	// Load client certificate and key if provided
	if cfg.ClientCert != "" && cfg.ClientKey != "" {
		cert, err := tls.LoadX509KeyPair(cfg.ClientCert, cfg.ClientKey)
		if err != nil {
			return nil, fmt.Errorf("failed to load client cert/key: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	return tlsConfig, nil
}

// Subscribe attaches the message handler to the configured topic
func (c *Client) Subscribe() error {
	token := c.client.Subscribe(c.topic, c.qos, c.handleMessage)

	if !token.WaitTimeout(c.subscribeTimeout) {
		return fmt.Errorf("mqtt subscription timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to subscribe to topic %s: %w", c.topic, err)
	}

	c.log.Info("Subscribed to topic %s (QoS %d)", c.topic, c.qos)
	return nil
}

// Deliveries returns the channel the pipeline consumes from
func (c *Client) Deliveries() <-chan message.Delivery {
	return c.deliveries
}

// handleMessage converts one broker message into a pipeline delivery. The
// blocking send is the flow control: the router waits until a worker takes
// the delivery, so in-flight work stays bounded by the worker count.
func (c *Client) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	delivery := decodeDelivery(msg)
	delivery.Ack = func() {
		msg.Ack()
	}
	delivery.Nack = func() {
		// An unacknowledged message stays in the broker session and comes
		// back on a later delivery, at the broker's discretion.
		c.log.Debug("Delivery %s left unacknowledged for redelivery", delivery.ID)
	}

	c.log.Trace("Received delivery %s (%d bytes) on %s", delivery.ID, len(msg.Payload()), msg.Topic())

	select {
	case c.deliveries <- delivery:
	case <-c.done:
	}
}

// Close disconnects from the MQTT broker. Deliveries that were read but not
// acknowledged return on the next session.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
	})

	if c.client != nil && c.client.IsConnected() {
		c.client.Disconnect(c.disconnectTimeout)
	}
	return nil
}
