package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `
broker:
  host: "broker.example.net"
  port: 8883
  tls: true
  cert_path: "/etc/ssl/local-ca.pem"
  client_id: "station-01"
auth:
  username: "station"
  password: "secret"
subscription:
  topic: "sensors/rtl433/#"
  qos: 1
  poll_interval: 2.5
mappings:
  Acurite-5n1:
    outTemp: "temperature_F"
    windSpeed: "wind_avg_mi_h"
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Broker.Host != "broker.example.net" {
		t.Errorf("Broker.Host = %q, want %q", cfg.Broker.Host, "broker.example.net")
	}
	if cfg.Broker.Port != 8883 {
		t.Errorf("Broker.Port = %d, want 8883", cfg.Broker.Port)
	}
	if !cfg.Broker.TLS {
		t.Error("Broker.TLS = false, want true")
	}
	if cfg.Subscription.Topic != "sensors/rtl433/#" {
		t.Errorf("Subscription.Topic = %q, want %q", cfg.Subscription.Topic, "sensors/rtl433/#")
	}
	if cfg.Subscription.QoS != 1 {
		t.Errorf("Subscription.QoS = %d, want 1", cfg.Subscription.QoS)
	}

	fields, ok := cfg.Mappings["Acurite-5n1"]
	if !ok {
		t.Fatal("Mappings missing model Acurite-5n1")
	}
	if fields["outTemp"] != "temperature_F" {
		t.Errorf("mapping outTemp = %q, want %q", fields["outTemp"], "temperature_F")
	}
}

func TestLoad_Defaults(t *testing.T) {
	content := `
broker:
  host: "localhost"
subscription:
  topic: "tele/#"
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Broker.Port != 1883 {
		t.Errorf("default Broker.Port = %d, want 1883", cfg.Broker.Port)
	}
	if cfg.Broker.Keepalive != 60 {
		t.Errorf("default Broker.Keepalive = %d, want 60", cfg.Broker.Keepalive)
	}
	if cfg.Subscription.QoS != 0 {
		t.Errorf("default Subscription.QoS = %d, want 0", cfg.Subscription.QoS)
	}
	if cfg.Subscription.PollInterval != 5.0 {
		t.Errorf("default Subscription.PollInterval = %v, want 5.0", cfg.Subscription.PollInterval)
	}
	if cfg.Broker.TLS {
		t.Error("default Broker.TLS = true, want false")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("default Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "broker: [not a mapping"))
	if err == nil {
		t.Error("Load() expected error for malformed YAML, got nil")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	content := `
broker:
  host: "file-host"
subscription:
  topic: "file/topic"
`
	t.Setenv("MQTTSTATION_BROKER_HOST", "env-host")
	t.Setenv("MQTTSTATION_BROKER_TLS", "true")
	t.Setenv("MQTTSTATION_BROKER_CERT_PATH", "/env/ca.pem")
	t.Setenv("MQTTSTATION_BROKER_KEEPALIVE", "30")
	t.Setenv("MQTTSTATION_AUTH_USERNAME", "env-user")
	t.Setenv("MQTTSTATION_SUBSCRIPTION_TOPIC", "env/topic")
	t.Setenv("MQTTSTATION_SUBSCRIPTION_QOS", "2")
	t.Setenv("MQTTSTATION_SUBSCRIPTION_POLL_INTERVAL", "1.5")

	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Broker.Host != "env-host" {
		t.Errorf("Broker.Host = %q, want env override %q", cfg.Broker.Host, "env-host")
	}
	if !cfg.Broker.TLS {
		t.Error("Broker.TLS = false, want env override true")
	}
	if cfg.Broker.CertPath != "/env/ca.pem" {
		t.Errorf("Broker.CertPath = %q, want env override %q", cfg.Broker.CertPath, "/env/ca.pem")
	}
	if cfg.Broker.Keepalive != 30 {
		t.Errorf("Broker.Keepalive = %d, want env override 30", cfg.Broker.Keepalive)
	}
	if cfg.Auth.Username != "env-user" {
		t.Errorf("Auth.Username = %q, want env override %q", cfg.Auth.Username, "env-user")
	}
	if cfg.Subscription.Topic != "env/topic" {
		t.Errorf("Subscription.Topic = %q, want env override %q", cfg.Subscription.Topic, "env/topic")
	}
	if cfg.Subscription.QoS != 2 {
		t.Errorf("Subscription.QoS = %d, want env override 2", cfg.Subscription.QoS)
	}
	if cfg.Subscription.PollInterval != 1.5 {
		t.Errorf("Subscription.PollInterval = %v, want env override 1.5", cfg.Subscription.PollInterval)
	}
}

func TestLoad_EnvOverridesIgnoreUnparseable(t *testing.T) {
	content := `
broker:
  host: "localhost"
subscription:
  topic: "tele/#"
`
	t.Setenv("MQTTSTATION_BROKER_TLS", "definitely")
	t.Setenv("MQTTSTATION_SUBSCRIPTION_QOS", "high")
	t.Setenv("MQTTSTATION_SUBSCRIPTION_POLL_INTERVAL", "soon")

	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Broker.TLS {
		t.Error("Broker.TLS changed by unparseable override")
	}
	if cfg.Subscription.QoS != 0 {
		t.Errorf("Subscription.QoS = %d, want default 0", cfg.Subscription.QoS)
	}
	if cfg.Subscription.PollInterval != 5.0 {
		t.Errorf("Subscription.PollInterval = %v, want default 5.0", cfg.Subscription.PollInterval)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.Broker.Host = "localhost"
		cfg.Subscription.Topic = "tele/#"
		return cfg
	}

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{
			name:   "valid config",
			modify: func(_ *Config) {},
		},
		{
			name:    "missing host",
			modify:  func(c *Config) { c.Broker.Host = "" },
			wantErr: "broker.host is required",
		},
		{
			name:    "missing topic",
			modify:  func(c *Config) { c.Subscription.Topic = "" },
			wantErr: "subscription.topic is required",
		},
		{
			name:    "port out of range",
			modify:  func(c *Config) { c.Broker.Port = 70000 },
			wantErr: "broker.port",
		},
		{
			name:    "invalid qos",
			modify:  func(c *Config) { c.Subscription.QoS = 3 },
			wantErr: "subscription.qos",
		},
		{
			name:    "zero poll interval",
			modify:  func(c *Config) { c.Subscription.PollInterval = 0 },
			wantErr: "poll_interval",
		},
		{
			name: "empty model mapping",
			modify: func(c *Config) {
				c.Mappings["Bare-Model"] = map[string]string{}
			},
			wantErr: "mappings.Bare-Model",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() error = nil, want %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestPollTimeout(t *testing.T) {
	cfg := Default()
	cfg.Subscription.PollInterval = 2.5

	if got, want := cfg.PollTimeout(), 2500*time.Millisecond; got != want {
		t.Errorf("PollTimeout() = %v, want %v", got, want)
	}
}

func TestKeepaliveInterval(t *testing.T) {
	cfg := Default()
	cfg.Broker.Keepalive = 30

	if got, want := cfg.KeepaliveInterval(), 30*time.Second; got != want {
		t.Errorf("KeepaliveInterval() = %v, want %v", got, want)
	}
}
