package natsclient

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/reclaim/errors"
)

func TestNewClient_RequiresURL(t *testing.T) {
	_, err := NewClient("")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrMissingConfig)
}

func TestNewClient_Defaults(t *testing.T) {
	c, err := NewClient("nats://localhost:4222")
	require.NoError(t, err)

	assert.Equal(t, "nats://localhost:4222", c.URL())
	assert.Equal(t, StatusDisconnected, c.Status())
	assert.False(t, c.IsHealthy())
	assert.Zero(t, c.Failures())
}

func TestClient_Options(t *testing.T) {
	c, err := NewClient("nats://localhost:4222",
		WithName("recovery-worker"),
		WithMaxReconnects(3),
		WithReconnectWait(time.Second),
		WithConnectTimeout(2*time.Second),
	)
	require.NoError(t, err)
	assert.Equal(t, "recovery-worker", c.opts.name)
	assert.Equal(t, 3, c.opts.maxReconnects)
}

func TestClient_PublishWithoutConnection(t *testing.T) {
	c, err := NewClient("nats://localhost:4222")
	require.NoError(t, err)

	err = c.Publish(context.Background(), "subject", []byte("data"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrNoConnection)
	assert.True(t, errors.IsTransient(err))
}

func TestClient_SubscribeWithoutConnection(t *testing.T) {
	c, err := NewClient("nats://localhost:4222")
	require.NoError(t, err)

	err = c.Subscribe(context.Background(), "subject", func(context.Context, []byte) {})
	assert.ErrorIs(t, err, errors.ErrNoConnection)
}

func TestClient_CircuitBreaker(t *testing.T) {
	c, err := NewClient("nats://localhost:4222")
	require.NoError(t, err)

	for i := 0; i < failureThreshold; i++ {
		c.recordFailure()
	}
	assert.Equal(t, StatusCircuitOpen, c.Status())

	err = c.Connect(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrCircuitOpen)

	c.ResetCircuit()
	assert.Equal(t, StatusDisconnected, c.Status())
	assert.Zero(t, c.Failures())
}

func TestClient_FailureHook(t *testing.T) {
	var fired int
	c, err := NewClient("nats://localhost:4222", WithFailureHook(func() { fired++ }))
	require.NoError(t, err)

	c.recordFailure()
	c.recordFailure()

	assert.Equal(t, 2, fired)
	assert.Equal(t, int32(2), c.Failures())
}

func TestClient_CloseWithoutConnection(t *testing.T) {
	c, err := NewClient("nats://localhost:4222")
	require.NoError(t, err)
	assert.NoError(t, c.Close(context.Background()))
}

func TestConnectionStatus_String(t *testing.T) {
	assert.Equal(t, "disconnected", StatusDisconnected.String())
	assert.Equal(t, "connecting", StatusConnecting.String())
	assert.Equal(t, "connected", StatusConnected.String())
	assert.Equal(t, "circuit_open", StatusCircuitOpen.String())
	assert.Equal(t, "unknown", ConnectionStatus(42).String())
}
