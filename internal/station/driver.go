package station

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/kroy-io/mqttstation/internal/infrastructure/config"
	"github.com/kroy-io/mqttstation/internal/infrastructure/mqtt"
)

// hardwareName is the human-readable name reported to the host.
const hardwareName = "MQTT Station"

// Driver owns the complete message-to-record pipeline: the broker
// session, the producer/consumer queue, and the parser with its dedup
// state. One Driver instance runs for the life of the process; there are
// no package-level singletons.
type Driver struct {
	cfg    *config.Config
	logger Logger

	client *mqtt.Client
	queue  *queue
	parser *Parser

	stopped  atomic.Bool
	stopOnce sync.Once
}

// New creates a Driver from configuration.
//
// It fails fast on configuration errors (missing broker host or
// subscription topic) before any network I/O. The broker session is not
// opened until Start.
//
// Parameters:
//   - cfg: Validated-or-not driver configuration
//
// Returns:
//   - *Driver: Constructed driver, not yet connected
//   - error: Configuration errors only
func New(cfg *config.Config) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := mqtt.ValidateFilter(cfg.Subscription.Topic); err != nil {
		return nil, err
	}

	return &Driver{
		cfg:    cfg,
		logger: noopLogger{},
		queue:  newQueue(),
		parser: NewParser(NewMappingTable(cfg.Mappings)),
	}, nil
}

// SetLogger sets the logger for the driver and its parser.
// Call before Start.
func (d *Driver) SetLogger(logger Logger) {
	d.logger = logger
	d.parser.SetLogger(logger)
}

// HardwareName returns the human-readable name of the hardware.
func (d *Driver) HardwareName() string {
	return hardwareName
}

// Start opens the broker session and subscribes to the configured topic
// filter.
//
// Reconnection after a lost session is delegated to the underlying
// client; the driver itself never retries. A subscribe failure is logged
// with the broker-supplied reason and leaves the session up but idle;
// the subscription is retried automatically when the session next
// reconnects.
//
// Returns:
//   - error: If the initial connection cannot be established
func (d *Driver) Start() error {
	client, err := mqtt.Connect(d.cfg)
	if err != nil {
		return fmt.Errorf("connecting to broker: %w", err)
	}
	d.client = client

	topic := d.cfg.Subscription.Topic
	qos := byte(d.cfg.Subscription.QoS)

	subscribe := func() {
		if client.HasSubscription(topic) {
			return
		}
		if err := client.Subscribe(topic, qos, d.handleMessage); err != nil {
			d.logger.Error("subscribe failed", "topic", topic, "error", err)
			return
		}
		d.logger.Info("subscribed", "topic", topic, "qos", qos)
	}

	client.SetLogger(d.logger)
	client.SetOnConnect(func() {
		d.logger.Info("broker session established",
			"broker", fmt.Sprintf("%s:%d", d.cfg.Broker.Host, d.cfg.Broker.Port),
			"client_id", client.ClientID(),
		)
		// Covers the case where the initial subscribe below failed and
		// the session has since come back.
		subscribe()
	})
	client.SetOnDisconnect(func(err error) {
		d.logger.Warn("broker session lost", "error", err)
	})

	subscribe()

	return nil
}

// HealthCheck reports whether the broker session is alive.
//
// Returns:
//   - error: nil if connected, an error describing the issue otherwise
func (d *Driver) HealthCheck(ctx context.Context) error {
	if d.client == nil {
		return errors.New("station: driver not started")
	}
	return d.client.HealthCheck(ctx)
}

// handleMessage runs on the broker client's network goroutine. It
// validates the payload decodes as text and hands it to the queue; all
// parsing happens later on the consumer side.
func (d *Driver) handleMessage(topic string, payload []byte) error {
	if !utf8.Valid(payload) {
		d.logger.Error("discarding undecodable payload", "topic", topic, "bytes", len(payload))
		return nil
	}

	// Copy: paho reuses payload buffers after the handler returns.
	body := make([]byte, len(payload))
	copy(body, payload)

	d.queue.push(RawMessage{
		Topic:      topic,
		Payload:    body,
		ReceivedAt: time.Now(),
	})
	d.logger.Debug("message queued", "topic", topic, "bytes", len(body))
	return nil
}

// NextRecord waits up to pollTimeout for one message and converts it.
//
// The boolean result reports whether the record stream is still live:
// (nil, true) is an empty cycle (a poll timeout or a rejected message)
// and (nil, false) means the driver has stopped. Rejection reasons are
// logged at the severity their class dictates and never surface as
// errors; a live telemetry feed must not halt on one bad message.
func (d *Driver) NextRecord(pollTimeout time.Duration) (*Record, bool) {
	if d.stopped.Load() {
		return nil, false
	}

	msg, ok := d.queue.pop(pollTimeout)
	if !ok {
		if d.stopped.Load() {
			return nil, false
		}
		return nil, true
	}

	record, err := d.parser.Parse(msg.Payload)
	if err != nil {
		switch {
		case errors.Is(err, ErrDuplicatePacket):
			d.logger.Debug("ignoring duplicate", "topic", msg.Topic, "reason", err)
		case errors.Is(err, ErrUnknownModel):
			d.logger.Warn("rejecting message", "topic", msg.Topic, "reason", err)
		default:
			d.logger.Error("rejecting message", "topic", msg.Topic, "reason", err)
		}
		return nil, true
	}

	return record, true
}

// Records pulls the record stream until ctx is cancelled or the driver
// stops, invoking yield for each accepted record. Records are yielded in
// dequeue order, one per underlying message.
func (d *Driver) Records(ctx context.Context, yield func(*Record)) {
	pollTimeout := d.cfg.PollTimeout()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		record, ok := d.NextRecord(pollTimeout)
		if !ok {
			return
		}
		if record != nil {
			yield(record)
		}
	}
}

// Stop ends the record stream and releases the broker session.
//
// Idempotent and non-blocking beyond the broker client's bounded
// disconnect quiesce. A consumer blocked in NextRecord wakes promptly;
// messages still queued are dropped.
func (d *Driver) Stop() {
	d.stopOnce.Do(func() {
		d.stopped.Store(true)
		d.queue.close()

		if d.client != nil {
			d.logger.Info("stopping driver")
			// Drop the subscription first so the broker stops
			// delivering during the disconnect quiesce.
			if err := d.client.Unsubscribe(d.cfg.Subscription.Topic); err != nil {
				d.logger.Debug("unsubscribe on shutdown", "error", err)
			}
			if err := d.client.Close(); err != nil {
				d.logger.Error("error closing broker session", "error", err)
			}
		}
	})
}
