package component

import (
	"log/slog"

	"github.com/c360/reclaim/metric"
	"github.com/c360/reclaim/natsclient"
)

// Dependencies provides all external dependencies needed by components.
// Factories receive it alongside their raw configuration so components
// never construct their own transport or metrics plumbing.
type Dependencies struct {
	NATSClient *natsclient.Client // NATS client for messaging
	Metrics    *metric.Metrics    // Prometheus metrics (can be nil)
	Logger     *slog.Logger       // Structured logger (can be nil, defaults to slog.Default())
}

// GetLogger returns the configured logger or a default logger if none is provided
func (d *Dependencies) GetLogger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

// GetLoggerWithComponent returns a logger configured with component context
func (d *Dependencies) GetLoggerWithComponent(componentName string) *slog.Logger {
	return d.GetLogger().With("component", componentName)
}
