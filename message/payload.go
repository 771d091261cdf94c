// Package message defines the envelope and payload types exchanged between
// reclaim components over NATS. A BaseMessage carries exactly one typed
// Payload; payload types register themselves with the component package's
// payload registry so envelopes can be deserialized back into typed values.
package message

import "encoding/json"

// Payload is the contract every message payload implements. Schema
// identifies the payload type for registry lookup during unmarshaling, and
// Validate is called after deserialization before the payload is handed to
// a component.
type Payload interface {
	Schema() Type
	Validate() error
	json.Marshaler
	json.Unmarshaler
}
