package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the MQTT station driver.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Broker       BrokerConfig       `yaml:"broker"`
	Auth         AuthConfig         `yaml:"auth"`
	Subscription SubscriptionConfig `yaml:"subscription"`
	Reconnect    ReconnectConfig    `yaml:"reconnect"`
	Logging      LoggingConfig      `yaml:"logging"`

	// Mappings resolves a device model identifier to its field-mapping schema:
	// model name -> (output field name -> source JSON key).
	Mappings map[string]map[string]string `yaml:"mappings"`
}

// BrokerConfig contains MQTT broker connection details.
type BrokerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	TLS  bool   `yaml:"tls"`

	// CertPath points at a PEM-encoded CA certificate used as the trust
	// anchor when TLS is enabled. Empty means the system trust store.
	CertPath string `yaml:"cert_path"`

	// ClientID identifies this session to the broker. Empty means a
	// generated ID is used.
	ClientID string `yaml:"client_id"`

	// Keepalive is the MQTT keepalive interval in seconds.
	Keepalive int `yaml:"keepalive"`
}

// AuthConfig contains broker authentication credentials.
type AuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// SubscriptionConfig describes the single topic subscription the driver holds.
type SubscriptionConfig struct {
	Topic string `yaml:"topic"`
	QoS   int    `yaml:"qos"`

	// PollInterval is the maximum time in seconds one record pull waits
	// for a message before yielding an empty cycle.
	PollInterval float64 `yaml:"poll_interval"`
}

// ReconnectConfig contains reconnection backoff settings.
type ReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: MQTTSTATION_SECTION_KEY
// For example: MQTTSTATION_BROKER_HOST, MQTTSTATION_AUTH_PASSWORD
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns a Config with sensible defaults. Host and topic have no
// default and must be supplied by the file or environment.
func Default() *Config {
	return &Config{
		Broker: BrokerConfig{
			Port:      1883,
			Keepalive: 60,
		},
		Subscription: SubscriptionConfig{
			QoS:          0,
			PollInterval: 5.0,
		},
		Reconnect: ReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     60,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Mappings: map[string]map[string]string{},
	}
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MQTTSTATION_BROKER_HOST"); v != "" {
		cfg.Broker.Host = v
	}
	if v := os.Getenv("MQTTSTATION_BROKER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Broker.Port = port
		}
	}
	if v := os.Getenv("MQTTSTATION_BROKER_CLIENT_ID"); v != "" {
		cfg.Broker.ClientID = v
	}
	if v := os.Getenv("MQTTSTATION_BROKER_TLS"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Broker.TLS = enabled
		}
	}
	if v := os.Getenv("MQTTSTATION_BROKER_CERT_PATH"); v != "" {
		cfg.Broker.CertPath = v
	}
	if v := os.Getenv("MQTTSTATION_BROKER_KEEPALIVE"); v != "" {
		if keepalive, err := strconv.Atoi(v); err == nil {
			cfg.Broker.Keepalive = keepalive
		}
	}
	if v := os.Getenv("MQTTSTATION_AUTH_USERNAME"); v != "" {
		cfg.Auth.Username = v
	}
	if v := os.Getenv("MQTTSTATION_AUTH_PASSWORD"); v != "" {
		cfg.Auth.Password = v
	}
	if v := os.Getenv("MQTTSTATION_SUBSCRIPTION_TOPIC"); v != "" {
		cfg.Subscription.Topic = v
	}
	if v := os.Getenv("MQTTSTATION_SUBSCRIPTION_QOS"); v != "" {
		if qos, err := strconv.Atoi(v); err == nil {
			cfg.Subscription.QoS = qos
		}
	}
	if v := os.Getenv("MQTTSTATION_SUBSCRIPTION_POLL_INTERVAL"); v != "" {
		if interval, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Subscription.PollInterval = interval
		}
	}
}

// Validate checks the configuration for errors.
//
// Missing broker host or subscription topic is fatal here, before any
// network I/O is attempted.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Broker.Host == "" {
		errs = append(errs, "broker.host is required")
	}
	if c.Broker.Port < 1 || c.Broker.Port > 65535 {
		errs = append(errs, "broker.port must be between 1 and 65535")
	}
	if c.Broker.Keepalive < 1 {
		errs = append(errs, "broker.keepalive must be at least 1 second")
	}

	if c.Subscription.Topic == "" {
		errs = append(errs, "subscription.topic is required")
	}
	if c.Subscription.QoS < 0 || c.Subscription.QoS > 2 {
		errs = append(errs, "subscription.qos must be 0, 1, or 2")
	}
	if c.Subscription.PollInterval <= 0 {
		errs = append(errs, "subscription.poll_interval must be greater than zero")
	}

	for model, fields := range c.Mappings {
		if len(fields) == 0 {
			errs = append(errs, fmt.Sprintf("mappings.%s has no field mappings", model))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// PollTimeout returns the subscription poll interval as a Duration.
func (c *Config) PollTimeout() time.Duration {
	return time.Duration(c.Subscription.PollInterval * float64(time.Second))
}

// KeepaliveInterval returns the broker keepalive as a Duration.
func (c *Config) KeepaliveInterval() time.Duration {
	return time.Duration(c.Broker.Keepalive) * time.Second
}
