package message

import (
	"fmt"
	"strings"
)

// Type identifies a payload schema as domain.category.version, for example
// "core.recovery.v1". The string form is the lookup key in the payload
// registry and the type field on the wire.
type Type struct {
	Domain   string `json:"domain"`
	Category string `json:"category"`
	Version  string `json:"version"`
}

// String returns the dotted wire form of the type.
func (t Type) String() string {
	return fmt.Sprintf("%s.%s.%s", t.Domain, t.Category, t.Version)
}

// Validate checks that all three fields are present.
func (t Type) Validate() error {
	if t.Domain == "" || t.Category == "" || t.Version == "" {
		return fmt.Errorf("incomplete message type %q", t.String())
	}
	return nil
}

// ParseType splits a dotted wire form back into a Type. The version may
// itself contain dots ("core.recovery.v1.2" keeps "v1.2" as the version).
func ParseType(s string) (Type, error) {
	parts := strings.SplitN(s, ".", 3)
	if len(parts) != 3 {
		return Type{}, fmt.Errorf("malformed message type %q", s)
	}
	t := Type{Domain: parts[0], Category: parts[1], Version: parts[2]}
	return t, t.Validate()
}
