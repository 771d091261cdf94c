// Package componentregistry registers all built-in reclaim components.
package componentregistry

import (
	"errors"

	"github.com/c360/reclaim/component"
	pkgerrors "github.com/c360/reclaim/errors"
	"github.com/c360/reclaim/output/file"
	recoveryproc "github.com/c360/reclaim/processor/recovery"
)

// Register registers the built-in components with the provided registry:
//
//   - Recovery processor (decode, repair, compress payloads)
//   - File output (recovery results to disk)
func Register(registry *component.Registry) error {
	if registry == nil {
		return pkgerrors.WrapFatal(
			errors.New("registry cannot be nil"),
			"ComponentRegistry", "Register", "registry validation")
	}

	if err := recoveryproc.Register(registry); err != nil {
		return pkgerrors.WrapInvalid(err, "ComponentRegistry", "Register", "recovery processor registration")
	}

	if err := file.Register(registry); err != nil {
		return pkgerrors.WrapInvalid(err, "ComponentRegistry", "Register", "file output registration")
	}

	return nil
}
