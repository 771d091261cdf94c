// Package health provides health status reporting for reclaim components.
package health

import (
	"regexp"
	"time"

	"github.com/c360/reclaim/component"
	"github.com/c360/reclaim/recovery"
)

// Pre-compiled regexes for error message sanitization
var (
	urlRegex        = regexp.MustCompile(`(?:https?|nats|wss?)://[^\s]+`)
	ipAddrRegex     = regexp.MustCompile(`\b\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}\b`)
	portRegex       = regexp.MustCompile(`:\d{2,5}\b`)
	credentialRegex = regexp.MustCompile(`(?i)(password|token|key|secret|credential)[^a-zA-Z]*[:=][^,\s}]+`)
)

// Status represents the health state of a component or of the whole
// pipeline. The Status field holds one of "healthy", "degraded", or
// "unhealthy"; signal severities from the recovery engine map onto those
// three states plus the Ready flag for a component that has started but
// not yet processed anything.
type Status struct {
	Component string    `json:"component"`
	Healthy   bool      `json:"healthy"`
	Ready     bool      `json:"ready"`
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Metrics   *Metrics  `json:"metrics,omitempty"`
}

// Metrics contains health-related metrics
type Metrics struct {
	Uptime            time.Duration `json:"uptime"`
	ErrorCount        int           `json:"error_count"`
	MessagesProcessed int64         `json:"messages_processed,omitempty"`
	LastActivity      time.Time     `json:"last_activity,omitempty"`
}

// IsHealthy returns true if the status is healthy
func (s Status) IsHealthy() bool {
	return s.Status == "healthy"
}

// IsDegraded returns true if the status is degraded
func (s Status) IsDegraded() bool {
	return s.Status == "degraded"
}

// IsUnhealthy returns true if the status is unhealthy
func (s Status) IsUnhealthy() bool {
	return s.Status == "unhealthy"
}

// WithMetrics returns a copy of the status with metrics attached
func (s Status) WithMetrics(metrics *Metrics) Status {
	s.Metrics = metrics
	return s
}

// Ready creates the status a component reports between starting and its
// first processed message.
func Ready(name string) Status {
	return Status{
		Component: name,
		Healthy:   true,
		Ready:     true,
		Status:    "healthy",
		Message:   "ready",
		Timestamp: time.Now(),
	}
}

// FromSignal converts a recovery signal into a health status. Success maps
// to healthy, recovered-with-caveats and warnings to degraded, and failure
// to unhealthy.
func FromSignal(name string, sig recovery.Signal) Status {
	var status string
	switch sig.Severity {
	case recovery.SeveritySuccess:
		status = "healthy"
	case recovery.SeverityRecovered, recovery.SeverityWarning:
		status = "degraded"
	default:
		status = "unhealthy"
	}

	return Status{
		Component: name,
		Healthy:   status == "healthy",
		Status:    status,
		Message:   SanitizeMessage(sig.Message),
		Timestamp: time.Now(),
	}
}

// FromComponentHealth converts a component.HealthStatus to a health.Status
func FromComponentHealth(name string, ch component.HealthStatus) Status {
	status := "unhealthy"
	if ch.Healthy {
		status = "healthy"
	}

	return Status{
		Component: name,
		Healthy:   ch.Healthy,
		Status:    status,
		Message:   SanitizeMessage(ch.Message),
		Timestamp: ch.LastCheck,
		Metrics: &Metrics{
			Uptime:     ch.Uptime,
			ErrorCount: ch.ErrorCount,
		},
	}
}

// SanitizeMessage removes potentially sensitive information from status
// messages before they leave the process: URLs, IP addresses, ports, and
// credential-shaped fragments.
func SanitizeMessage(msg string) string {
	if msg == "" {
		return ""
	}

	sanitized := urlRegex.ReplaceAllString(msg, "[URL]")
	sanitized = ipAddrRegex.ReplaceAllString(sanitized, "[IP]")
	sanitized = portRegex.ReplaceAllString(sanitized, "[PORT]")
	sanitized = credentialRegex.ReplaceAllString(sanitized, "[REDACTED]")
	return sanitized
}
