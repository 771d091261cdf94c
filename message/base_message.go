package message

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/c360/reclaim/component"
)

// BaseMessage is the envelope published between components. It pairs a
// typed payload with an id, the emitting component, and a timestamp.
type BaseMessage struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
	Payload   Payload   `json:"payload"`
}

// wireFormat is the JSON shape of a BaseMessage with the payload held as
// raw bytes so it can be resolved to a concrete type during unmarshaling.
type wireFormat struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Source    string          `json:"source"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// New wraps a payload in an envelope with a fresh uuid and the current
// time.
func New(source string, payload Payload) *BaseMessage {
	return &BaseMessage{
		ID:        uuid.NewString(),
		Type:      payload.Schema().String(),
		Source:    source,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// Validate checks envelope fields and delegates to the payload.
func (m *BaseMessage) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("message has no id")
	}
	if m.Payload == nil {
		return fmt.Errorf("message %s has no payload", m.ID)
	}
	if got := m.Payload.Schema().String(); m.Type != got {
		return fmt.Errorf("message %s type %q does not match payload schema %q", m.ID, m.Type, got)
	}
	return m.Payload.Validate()
}

// MarshalJSON serializes the envelope with the payload inlined.
func (m *BaseMessage) MarshalJSON() ([]byte, error) {
	if m.Payload == nil {
		return nil, fmt.Errorf("cannot marshal message %s: nil payload", m.ID)
	}

	payloadJSON, err := m.Payload.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("marshal payload for message %s: %w", m.ID, err)
	}

	return json.Marshal(wireFormat{
		ID:        m.ID,
		Type:      m.Type,
		Source:    m.Source,
		Timestamp: m.Timestamp,
		Payload:   payloadJSON,
	})
}

// UnmarshalJSON deserializes the envelope, resolving the payload type
// through the global payload registry.
func (m *BaseMessage) UnmarshalJSON(data []byte) error {
	var wire wireFormat
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("unmarshal message envelope: %w", err)
	}

	instance, ok := component.ResolvePayload(wire.Type)
	if !ok {
		return fmt.Errorf("unknown payload type %q for message %s", wire.Type, wire.ID)
	}

	payload, ok := instance.(Payload)
	if !ok {
		return fmt.Errorf("registered factory for %q does not produce a message payload", wire.Type)
	}

	if err := payload.UnmarshalJSON(wire.Payload); err != nil {
		return fmt.Errorf("unmarshal %s payload for message %s: %w", wire.Type, wire.ID, err)
	}

	m.ID = wire.ID
	m.Type = wire.Type
	m.Source = wire.Source
	m.Timestamp = wire.Timestamp
	m.Payload = payload
	return nil
}
