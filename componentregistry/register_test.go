package componentregistry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/reclaim/component"
)

func TestRegister(t *testing.T) {
	registry := component.NewRegistry()
	require.NoError(t, Register(registry))

	for _, name := range []string{"processor-recovery", "output-file"} {
		_, ok := registry.Lookup(name)
		assert.True(t, ok, "expected %s to be registered", name)
	}
}

func TestRegisterNilRegistry(t *testing.T) {
	err := Register(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "registry")
}

func TestRegisterTwiceFails(t *testing.T) {
	registry := component.NewRegistry()
	require.NoError(t, Register(registry))
	assert.Error(t, Register(registry))
}
