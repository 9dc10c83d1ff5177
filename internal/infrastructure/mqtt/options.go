package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/kroy-io/mqttstation/internal/infrastructure/config"
)

// Connection constants.
const (
	// defaultConnectTimeout is the maximum time to wait for initial connection.
	defaultConnectTimeout = 10 * time.Second

	// defaultPublishTimeout is the maximum time to wait for publish acknowledgment.
	defaultPublishTimeout = 5 * time.Second

	// defaultDisconnectQuiesce is the time to wait for pending operations on disconnect.
	defaultDisconnectQuiesce = 1000 // milliseconds

	// maxQoS is the maximum QoS level supported.
	maxQoS = 2

	// tlsMinVersion is the minimum TLS version for secure connections.
	tlsMinVersion = tls.VersionTLS12

	// clientIDPrefix is prepended to auto-generated client IDs.
	clientIDPrefix = "mqttstation-"
)

// buildClientOptions creates paho MQTT options from driver config.
//
// This configures:
//   - Broker URL (tcp:// or ssl:// based on TLS setting)
//   - Client ID (auto-generated when not configured)
//   - Authentication credentials (if provided)
//   - Auto-reconnect with exponential backoff
//   - Keepalive interval
//   - TLS with either the system trust store or a caller-supplied CA file
//   - Clean session mode
//
// Returns the options, the resolved client ID, and an error if the CA
// certificate cannot be loaded.
func buildClientOptions(cfg *config.Config) (*pahomqtt.ClientOptions, string, error) {
	opts := pahomqtt.NewClientOptions()

	scheme := "tcp"
	if cfg.Broker.TLS {
		scheme = "ssl"
	}
	brokerURL := fmt.Sprintf("%s://%s:%d", scheme, cfg.Broker.Host, cfg.Broker.Port)
	opts.AddBroker(brokerURL)

	clientID := cfg.Broker.ClientID
	if clientID == "" {
		clientID = clientIDPrefix + uuid.NewString()
	}
	opts.SetClientID(clientID)

	if cfg.Auth.Username != "" {
		opts.SetUsername(cfg.Auth.Username)
		opts.SetPassword(cfg.Auth.Password)
	}

	// Clean session - start fresh on connect (no persistent session on broker)
	opts.SetCleanSession(true)

	// Auto-reconnect with exponential backoff. The driver itself never
	// retries; a lost session stays down until paho re-establishes it.
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(time.Duration(cfg.Reconnect.InitialDelay) * time.Second)
	opts.SetMaxReconnectInterval(time.Duration(cfg.Reconnect.MaxDelay) * time.Second)

	opts.SetConnectTimeout(defaultConnectTimeout)

	// Keepalive - broker sends PINGs to detect dead connections
	opts.SetKeepAlive(cfg.KeepaliveInterval())

	if cfg.Broker.TLS {
		tlsConfig, err := buildTLSConfig(cfg.Broker.CertPath)
		if err != nil {
			return nil, "", err
		}
		opts.SetTLSConfig(tlsConfig)
	}

	return opts, clientID, nil
}

// buildTLSConfig creates the TLS configuration for broker connections.
//
// With an empty certPath the system trust store is used. Otherwise the
// file is loaded as a PEM-encoded CA certificate and used as the sole
// trust anchor, which is the common setup for self-signed broker certs.
func buildTLSConfig(certPath string) (*tls.Config, error) {
	tlsConfig := &tls.Config{
		MinVersion: tlsMinVersion,
	}

	if certPath != "" {
		pem, err := os.ReadFile(certPath)
		if err != nil {
			return nil, fmt.Errorf("%w: reading CA certificate: %w", ErrTLSConfig, err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("%w: no certificates found in %s", ErrTLSConfig, certPath)
		}
		tlsConfig.RootCAs = pool
	}

	return tlsConfig, nil
}

// configureLWT sets up Last Will and Testament for offline detection.
//
// The LWT message is published by the broker if the client disconnects
// unexpectedly (crash, network failure, etc.). This allows the host
// monitoring side to detect when the driver goes offline.
//
// Topic: <clientID>/status
// QoS: 1 (guaranteed delivery)
// Retained: true (new subscribers see last status)
func configureLWT(opts *pahomqtt.ClientOptions, clientID string) {
	willPayload := fmt.Sprintf(
		`{"status":"offline","client_id":"%s","reason":"unexpected_disconnect","timestamp":"%s"}`,
		clientID,
		time.Now().UTC().Format(time.RFC3339),
	)

	opts.SetWill(statusTopic(clientID), willPayload, 1, true)
}

// statusTopic returns the per-session status topic.
func statusTopic(clientID string) string {
	return clientID + "/status"
}

// buildOnlinePayload creates the JSON payload for online status messages.
func buildOnlinePayload(clientID string) string {
	return fmt.Sprintf(
		`{"status":"online","client_id":"%s","timestamp":"%s"}`,
		clientID,
		time.Now().UTC().Format(time.RFC3339),
	)
}

// buildOfflinePayload creates the JSON payload for graceful offline status.
func buildOfflinePayload(clientID string) string {
	return fmt.Sprintf(
		`{"status":"offline","client_id":"%s","reason":"graceful_shutdown","timestamp":"%s"}`,
		clientID,
		time.Now().UTC().Format(time.RFC3339),
	)
}
