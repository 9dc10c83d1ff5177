// mqttstation - MQTT weather-station telemetry driver
//
// This is the main entry point for the mqttstation daemon. It subscribes
// to a single MQTT topic, deduplicates retransmitted readings, maps
// vendor payload fields through a per-model schema, and writes each
// normalized record as a JSON line on stdout for the host monitoring
// application to consume.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kroy-io/mqttstation/internal/infrastructure/config"
	"github.com/kroy-io/mqttstation/internal/infrastructure/logging"
	"github.com/kroy-io/mqttstation/internal/station"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// healthCheckInterval is how often the broker session liveness is checked.
const healthCheckInterval = 30 * time.Second

var configFlag = flag.String("config", "", "path to configuration file")

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting mqttstation",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings. Logs always go to
	// stderr so stdout stays a clean record stream for the host.
	cfg.Logging.Output = "stderr"
	log = logging.New(cfg.Logging, version)

	driver, err := station.New(cfg)
	if err != nil {
		return fmt.Errorf("creating driver: %w", err)
	}
	driver.SetLogger(log.With("component", "station"))

	if err := driver.Start(); err != nil {
		return fmt.Errorf("starting driver: %w", err)
	}
	defer driver.Stop()
	log.Info("driver started",
		"hardware", driver.HardwareName(),
		"broker", fmt.Sprintf("%s:%d", cfg.Broker.Host, cfg.Broker.Port),
		"topic", cfg.Subscription.Topic,
	)

	// Periodic session liveness check; a down session is logged, never fatal.
	go func() {
		ticker := time.NewTicker(healthCheckInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := driver.HealthCheck(ctx); err != nil {
					log.Warn("broker session unhealthy", "error", err)
				}
			}
		}
	}()

	encoder := json.NewEncoder(os.Stdout)
	driver.Records(ctx, func(record *station.Record) {
		if err := encoder.Encode(recordLine{
			DateTime: record.CapturedAt.Unix(),
			Units:    string(record.Units),
			Fields:   record.Fields,
		}); err != nil {
			log.Error("writing record", "error", err)
		}
	})

	log.Info("shutting down")
	return nil
}

// recordLine is the stdout wire format consumed by the host application.
type recordLine struct {
	DateTime int64              `json:"dateTime"`
	Units    string             `json:"usUnits"`
	Fields   map[string]float64 `json:"fields"`
}

// getConfigPath resolves the config file path from the -config flag,
// the MQTTSTATION_CONFIG environment variable, or the default.
func getConfigPath() string {
	if !flag.Parsed() {
		flag.Parse()
	}

	if *configFlag != "" {
		return *configFlag
	}
	if env := os.Getenv("MQTTSTATION_CONFIG"); env != "" {
		return env
	}
	return defaultConfigPath
}
