package station

import "time"

// UnitSystem tags a record with the unit convention its values follow.
type UnitSystem string

// UnitsUS is the unit system applied to every emitted record. Vendor
// gateways in this deployment report US customary units; unit conversion
// belongs to the host application.
const UnitsUS UnitSystem = "US"

// RawMessage is one payload as it arrived from the broker.
//
// Created by the transport callback, transferred through the queue, and
// consumed exactly once by the parser.
type RawMessage struct {
	Topic      string
	Payload    []byte
	ReceivedAt time.Time
}

// Record is one normalized sensor reading ready for the host.
//
// Fields holds only the mapped values that converted cleanly; a record
// with zero fields is still a valid accepted reading.
type Record struct {
	Fields     map[string]float64
	Units      UnitSystem
	CapturedAt time.Time
}
