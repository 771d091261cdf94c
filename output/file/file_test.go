package file

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/reclaim/component"
	"github.com/c360/reclaim/message"
	"github.com/c360/reclaim/recovery"
)

func newTestOutput(t *testing.T, raw string) *Output {
	t.Helper()
	out, err := NewOutput(json.RawMessage(raw), component.Dependencies{})
	require.NoError(t, err)
	return out.(*Output)
}

func TestFileOutput_DefaultConfig(t *testing.T) {
	config := DefaultConfig()
	require.NoError(t, config.Validate())
	assert.Equal(t, "jsonl", config.Format)
	assert.True(t, config.Append)
	require.Len(t, config.Ports.Inputs, 1)
	assert.Equal(t, "recovered.>", config.Ports.Inputs[0].Subject)
}

func TestFileOutput_ConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{"missing directory", Config{Format: "jsonl"}},
		{"bad format", Config{Directory: "/tmp/x", Format: "xml"}},
		{"negative buffer", Config{Directory: "/tmp/x", Format: "jsonl", BufferSize: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.config.Validate())
		})
	}
}

func TestFileOutput_Creation(t *testing.T) {
	out := newTestOutput(t, `{"directory": "/tmp/reclaim-test", "format": "json", "unwrap": true}`)

	meta := out.Meta()
	assert.Equal(t, "file-output", meta.Name)
	assert.Equal(t, "output", meta.Type)
	assert.True(t, out.unwrap)
	assert.Empty(t, out.OutputPorts())
	require.Len(t, out.InputPorts(), 1)
}

func TestFileOutput_StartRequiresNATS(t *testing.T) {
	out := newTestOutput(t, `{"directory": "`+t.TempDir()+`"}`)
	err := out.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NATS client required")
}

func TestFileOutput_FlushWritesJSONL(t *testing.T) {
	dir := t.TempDir()
	out := newTestOutput(t, `{"directory": "`+dir+`", "buffer_size": 10}`)
	require.NoError(t, out.Initialize())

	path := filepath.Join(dir, "recovered.jsonl")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	out.file = file

	out.handleMessage(context.Background(), []byte(`{"a":1}`))
	out.handleMessage(context.Background(), []byte(`{"b":2}`))
	out.flush()
	require.NoError(t, file.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\"a\":1}\n{\"b\":2}\n", string(data))

	flow := out.DataFlow()
	assert.Zero(t, flow.ErrorRate)
	assert.False(t, flow.LastActivity.IsZero())
}

func TestFileOutput_UnwrapResult(t *testing.T) {
	out := newTestOutput(t, `{"directory": "/tmp/reclaim-test", "unwrap": true}`)

	payload := message.NewRecoveryPayload(recovery.Result{
		Payload: map[string]any{"device": "sensor-1"},
		Meta:    recovery.Meta{Operation: recovery.OpCleanup, OriginalSize: 30},
	}, recovery.Signal{Severity: recovery.SeveritySuccess})
	envelope, err := json.Marshal(message.New("recovery-1", payload))
	require.NoError(t, err)

	unwrapped := out.unwrapResult(envelope)

	var result recovery.Result
	require.NoError(t, json.Unmarshal(unwrapped, &result))
	assert.Equal(t, recovery.OpCleanup, result.Meta.Operation)
	assert.Equal(t, map[string]any{"device": "sensor-1"}, result.Payload)

	t.Run("non-envelope passes through", func(t *testing.T) {
		raw := []byte(`{"not": "an envelope"}`)
		assert.Equal(t, raw, out.unwrapResult(raw))
	})
}

func TestFileOutput_Register(t *testing.T) {
	registry := component.NewRegistry()
	require.NoError(t, Register(registry))

	_, ok := registry.Lookup("output-file")
	assert.True(t, ok)
}
