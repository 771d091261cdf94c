package component

import (
	"fmt"
	"sync"

	"github.com/c360/reclaim/errors"
)

// PayloadFactory creates a payload instance for a specific message type.
// The factory returns an any to avoid an import cycle with the message
// package; the value must implement message.Payload.
type PayloadFactory func() any

// PayloadRegistration holds factory and metadata for a payload type.
type PayloadRegistration struct {
	Factory     PayloadFactory `json:"-"`
	Domain      string         `json:"domain"`
	Category    string         `json:"category"`
	Version     string         `json:"version"`
	Description string         `json:"description"`
}

// MessageType returns the formatted message type string for this
// registration: "domain.category.version".
func (pr *PayloadRegistration) MessageType() string {
	return fmt.Sprintf("%s.%s.%s", pr.Domain, pr.Category, pr.Version)
}

// PayloadRegistry manages payload factories for message deserialization,
// enabling BaseMessage.UnmarshalJSON to recreate typed payloads from JSON.
type PayloadRegistry struct {
	registrations map[string]*PayloadRegistration
	mu            sync.RWMutex
}

// NewPayloadRegistry creates a new empty payload registry.
func NewPayloadRegistry() *PayloadRegistry {
	return &PayloadRegistry{
		registrations: make(map[string]*PayloadRegistration),
	}
}

// RegisterPayload registers a payload factory with validation.
func (pr *PayloadRegistry) RegisterPayload(registration *PayloadRegistration) error {
	if registration == nil {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "PayloadRegistry", "RegisterPayload", "registration validation")
	}
	if registration.Factory == nil {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "PayloadRegistry", "RegisterPayload", "factory validation")
	}
	if registration.Domain == "" || registration.Category == "" || registration.Version == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "PayloadRegistry", "RegisterPayload", "type fields validation")
	}

	key := registration.MessageType()

	pr.mu.Lock()
	defer pr.mu.Unlock()

	if _, exists := pr.registrations[key]; exists {
		return errors.WrapInvalid(
			fmt.Errorf("payload type '%s' is already registered", key),
			"PayloadRegistry", "RegisterPayload", "duplicate type check")
	}

	pr.registrations[key] = registration
	return nil
}

// Resolve returns a fresh payload instance for the message type, or false
// when the type is unknown.
func (pr *PayloadRegistry) Resolve(messageType string) (any, bool) {
	pr.mu.RLock()
	reg, ok := pr.registrations[messageType]
	pr.mu.RUnlock()

	if !ok {
		return nil, false
	}
	return reg.Factory(), true
}

// globalPayloadRegistry backs the package-level registration helpers used
// by payload init() functions.
var globalPayloadRegistry = NewPayloadRegistry()

// RegisterPayload registers a payload type with the global registry.
func RegisterPayload(registration *PayloadRegistration) error {
	return globalPayloadRegistry.RegisterPayload(registration)
}

// ResolvePayload looks a payload type up in the global registry.
func ResolvePayload(messageType string) (any, bool) {
	return globalPayloadRegistry.Resolve(messageType)
}
