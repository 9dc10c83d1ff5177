package station

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// timestampLayout is the fixed wall-clock format devices report in.
const timestampLayout = "2006-01-02 15:04:05"

// Parser converts one raw payload into zero or one normalized Record.
//
// Not safe for concurrent use; the driver invokes it only from the
// consumer context.
type Parser struct {
	mappings MappingTable
	seen     *seenSet
	logger   Logger

	// now is injectable for tests.
	now func() time.Time
}

// NewParser creates a Parser over the given mapping table with the
// default dedup retention window.
func NewParser(mappings MappingTable) *Parser {
	return &Parser{
		mappings: mappings,
		seen:     newSeenSet(defaultRetentionWindow),
		logger:   noopLogger{},
		now:      time.Now,
	}
}

// SetLogger sets the logger used for per-field conversion failures.
func (p *Parser) SetLogger(logger Logger) {
	p.logger = logger
}

// Parse decodes, validates, deduplicates, and maps one message payload.
//
// Rejections return a nil Record and one of the classified sentinel
// errors (ErrMalformedPayload, ErrUnknownModel, ErrBadTimestamp,
// ErrDuplicatePacket). A per-field conversion failure only drops that
// field; the message is still accepted.
//
// Parameters:
//   - payload: The raw message body (JSON object expected)
//
// Returns:
//   - *Record: The normalized record, or nil on rejection
//   - error: The classified rejection reason, or nil on acceptance
func (p *Parser) Parse(payload []byte) (*Record, error) {
	var data map[string]any
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	model := stringField(data, "model")
	if model == "" {
		return nil, fmt.Errorf("%w: message has no model", ErrUnknownModel)
	}
	fields, ok := p.mappings.Lookup(model)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModel, model)
	}

	timestamp := stringField(data, "time")
	if _, err := time.Parse(timestampLayout, timestamp); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrBadTimestamp, timestamp)
	}

	identity := packetIdentity{
		timestamp:   timestamp,
		model:       model,
		deviceID:    stringField(data, "id"),
		messageType: stringField(data, "message_type"),
	}

	now := p.now()
	if p.seen.observe(identity, now) {
		return nil, fmt.Errorf("%w: %s/%s at %s", ErrDuplicatePacket, model, identity.deviceID, timestamp)
	}

	record := &Record{
		Fields:     make(map[string]float64, len(fields)),
		Units:      UnitsUS,
		CapturedAt: now,
	}

	for outField, sourceKey := range fields {
		raw, present := data[sourceKey]
		if !present {
			continue
		}
		value, err := toFloat(raw)
		if err != nil {
			p.logger.Error("field conversion failed",
				"model", model,
				"key", sourceKey,
				"value", raw,
				"error", err,
			)
			continue
		}
		record.Fields[outField] = value
	}

	return record, nil
}

// SeenCount returns the number of identities currently held for dedup.
func (p *Parser) SeenCount() int {
	return p.seen.size()
}

// stringField extracts a payload field as a string. Numeric values are
// formatted without a trailing fractional part so identity comparison
// stays stable across senders that quote IDs and senders that do not.
func stringField(data map[string]any, key string) string {
	raw, ok := data[key]
	if !ok || raw == nil {
		return ""
	}
	switch v := raw.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// toFloat coerces a decoded JSON value to float64. Numeric strings are
// accepted because many gateways quote their sensor values.
func toFloat(raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case string:
		value, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", v)
		}
		return value, nil
	default:
		return 0, fmt.Errorf("unsupported value type %T", raw)
	}
}
