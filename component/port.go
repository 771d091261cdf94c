package component

// Direction indicates whether a port consumes or produces data.
type Direction string

const (
	// DirectionInput marks a port the component consumes from
	DirectionInput Direction = "input"
	// DirectionOutput marks a port the component produces to
	DirectionOutput Direction = "output"
)

// Port describes one connection point of a component.
type Port struct {
	Name      string    `json:"name"`
	Direction Direction `json:"direction"`
	Required  bool      `json:"required"`
	Config    any       `json:"config,omitempty"`
}

// NATSPort is the port configuration for NATS subjects.
type NATSPort struct {
	Subject   string             `json:"subject"`
	Interface *InterfaceContract `json:"interface,omitempty"`
}

// InterfaceContract declares the message type a port speaks.
type InterfaceContract struct {
	Type    string `json:"type"`
	Version string `json:"version"`
}

// PortDefinition is the JSON-configurable form of a port, used inside
// component configs.
type PortDefinition struct {
	Name        string `json:"name"`
	Type        string `json:"type,omitempty"`
	Subject     string `json:"subject,omitempty"`
	Interface   string `json:"interface,omitempty"`
	Required    bool   `json:"required,omitempty"`
	Description string `json:"description,omitempty"`
}

// PortConfig groups the configured input and output port definitions of a
// component instance.
type PortConfig struct {
	Inputs  []PortDefinition `json:"inputs,omitempty"`
	Outputs []PortDefinition `json:"outputs,omitempty"`
}
