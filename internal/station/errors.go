package station

import "errors"

// Classified rejection reasons for the parser.
// Use errors.Is() to pick the log severity; none of these ever reach the host.
var (
	// ErrMalformedPayload is returned when the payload is not structured JSON.
	ErrMalformedPayload = errors.New("station: malformed payload")

	// ErrUnknownModel is returned when the message names no model, or a model
	// with no configured field mapping. Usually missing configuration rather
	// than corrupt data.
	ErrUnknownModel = errors.New("station: no field mapping for model")

	// ErrBadTimestamp is returned when the declared timestamp does not parse.
	ErrBadTimestamp = errors.New("station: unparseable timestamp")

	// ErrDuplicatePacket is returned when an identical packet identity was
	// already seen inside the retention window.
	ErrDuplicatePacket = errors.New("station: duplicate packet")
)
