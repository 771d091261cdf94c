package message

import (
	"encoding/json"
	"fmt"

	"github.com/c360/reclaim/component"
	"github.com/c360/reclaim/recovery"
)

// RecoveryType identifies the payload carrying a recovery engine outcome.
var RecoveryType = Type{Domain: "core", Category: "recovery", Version: "v1"}

func init() {
	if err := component.RegisterPayload(&component.PayloadRegistration{
		Factory:     func() any { return &RecoveryPayload{} },
		Domain:      RecoveryType.Domain,
		Category:    RecoveryType.Category,
		Version:     RecoveryType.Version,
		Description: "Outcome of one payload recovery pass: the recovered or compressed payload, operation metadata, and the status signal",
	}); err != nil {
		panic(fmt.Sprintf("register recovery payload: %v", err))
	}
}

// RecoveryPayload carries one recovery result and its status signal. Status
// is the string form of the signal severity so downstream consumers match
// on "success", "recovered", "warning", or "failure" rather than an
// integer.
type RecoveryPayload struct {
	Result recovery.Result `json:"result"`
	Status string          `json:"status"`
	Detail string          `json:"detail,omitempty"`
}

// NewRecoveryPayload pairs an engine result with its signal.
func NewRecoveryPayload(result recovery.Result, sig recovery.Signal) *RecoveryPayload {
	return &RecoveryPayload{
		Result: result,
		Status: sig.Severity.String(),
		Detail: sig.Message,
	}
}

// Schema implements Payload.
func (p *RecoveryPayload) Schema() Type {
	return RecoveryType
}

// Validate implements Payload.
func (p *RecoveryPayload) Validate() error {
	if p.Result.Meta.Operation == "" {
		return fmt.Errorf("recovery payload has no operation tag")
	}
	switch p.Status {
	case "success", "recovered", "warning", "failure":
		return nil
	default:
		return fmt.Errorf("recovery payload has unknown status %q", p.Status)
	}
}

// MarshalJSON implements json.Marshaler.
func (p *RecoveryPayload) MarshalJSON() ([]byte, error) {
	type alias RecoveryPayload
	return json.Marshal((*alias)(p))
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *RecoveryPayload) UnmarshalJSON(data []byte) error {
	type alias RecoveryPayload
	return json.Unmarshal(data, (*alias)(p))
}
