package component

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/c360/reclaim/errors"
)

// Factory creates a component instance from configuration. The factory
// receives raw JSON configuration and dependencies, parses its own config,
// and returns an initialized component. All I/O happens in the component's
// Start(), never in the factory.
type Factory func(rawConfig json.RawMessage, deps Dependencies) (Discoverable, error)

// Registration holds factory and metadata for a component type
type Registration struct {
	Name        string  `json:"name"`
	Type        string  `json:"type"` // "input", "processor", "output"
	Protocol    string  `json:"protocol"`
	Domain      string  `json:"domain,omitempty"`
	Description string  `json:"description"`
	Version     string  `json:"version"`
	Factory     Factory `json:"-"`
}

// RegistrationConfig provides a clean API for component registration.
// It maps 1:1 to Registration fields.
type RegistrationConfig struct {
	Name        string
	Factory     Factory
	Type        string
	Protocol    string
	Domain      string
	Description string
	Version     string
}

// Registry manages component factories and instances with thread-safe
// registration and lookup.
type Registry struct {
	factories map[string]*Registration
	instances map[string]Discoverable
	mu        sync.RWMutex
}

// NewRegistry creates a new empty component registry
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]*Registration),
		instances: make(map[string]Discoverable),
	}
}

// RegisterWithConfig registers a component factory described by the config.
func (r *Registry) RegisterWithConfig(cfg RegistrationConfig) error {
	if cfg.Name == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Registry", "RegisterWithConfig", "factory name validation")
	}
	if cfg.Factory == nil {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Registry", "RegisterWithConfig", "factory function validation")
	}
	if cfg.Type == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Registry", "RegisterWithConfig", "component type validation")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[cfg.Name]; exists {
		return errors.WrapInvalid(
			fmt.Errorf("factory '%s' is already registered", cfg.Name),
			"Registry", "RegisterWithConfig", "duplicate factory check")
	}

	r.factories[cfg.Name] = &Registration{
		Name:        cfg.Name,
		Type:        cfg.Type,
		Protocol:    cfg.Protocol,
		Domain:      cfg.Domain,
		Description: cfg.Description,
		Version:     cfg.Version,
		Factory:     cfg.Factory,
	}
	return nil
}

// Create instantiates a component from a registered factory and tracks the
// instance under the given instance name.
func (r *Registry) Create(
	factoryName, instanceName string, rawConfig json.RawMessage, deps Dependencies,
) (Discoverable, error) {
	r.mu.RLock()
	reg, ok := r.factories[factoryName]
	r.mu.RUnlock()

	if !ok {
		return nil, errors.WrapInvalid(
			fmt.Errorf("no factory registered as '%s'", factoryName),
			"Registry", "Create", "factory lookup")
	}

	instance, err := reg.Factory(rawConfig, deps)
	if err != nil {
		return nil, errors.Wrap(err, "Registry", "Create", fmt.Sprintf("factory '%s'", factoryName))
	}

	r.mu.Lock()
	r.instances[instanceName] = instance
	r.mu.Unlock()

	return instance, nil
}

// Factories returns the names of all registered factories.
func (r *Registry) Factories() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	return names
}

// Lookup returns a registration by factory name.
func (r *Registry) Lookup(name string) (*Registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.factories[name]
	return reg, ok
}

// Instances returns a snapshot of all tracked component instances by name.
func (r *Registry) Instances() map[string]Discoverable {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]Discoverable, len(r.instances))
	for name, inst := range r.instances {
		out[name] = inst
	}
	return out
}
