package component

import "time"

// Discoverable is the contract every reclaim component implements so the
// runtime can inspect, wire, and monitor it without knowing its concrete
// type.
type Discoverable interface {
	// Meta returns static metadata describing the component.
	Meta() Metadata

	// InputPorts returns the ports this component consumes from.
	InputPorts() []Port

	// OutputPorts returns the ports this component produces to.
	OutputPorts() []Port

	// Health returns the component's current health status.
	Health() HealthStatus

	// DataFlow returns current data flow metrics.
	DataFlow() FlowMetrics
}

// Metadata describes a component instance.
type Metadata struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // "input", "processor", "output"
	Description string `json:"description"`
	Version     string `json:"version"`
}

// HealthStatus is the minimal health view a component exposes.
type HealthStatus struct {
	Healthy    bool          `json:"healthy"`
	LastCheck  time.Time     `json:"last_check"`
	ErrorCount int           `json:"error_count"`
	Uptime     time.Duration `json:"uptime"`
	Message    string        `json:"message,omitempty"`
}

// FlowMetrics captures a component's current data flow.
type FlowMetrics struct {
	MessagesPerSecond float64   `json:"messages_per_second"`
	BytesPerSecond    float64   `json:"bytes_per_second"`
	ErrorRate         float64   `json:"error_rate"`
	LastActivity      time.Time `json:"last_activity"`
}
