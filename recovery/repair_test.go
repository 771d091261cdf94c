package recovery

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecover_NoJSONSpanUnchanged(t *testing.T) {
	r := NewRecoverer()

	tests := []string{
		"no braces here",
		"only open {",
		"only close }",
		"} reversed {",
		"",
	}

	for _, in := range tests {
		assert.Equal(t, in, r.Recover(in))
	}
}

func TestRecover_WellFormedIdempotent(t *testing.T) {
	r := NewRecoverer()

	tests := []string{
		`{"a":1}`,
		`{"a": 1, "b": 2}`,
		`{"nested": {"x": [1, 2, 3]}}`,
		`{"s": "text value"}`,
	}

	for _, in := range tests {
		once := r.Recover(in)
		twice := r.Recover(once)
		assert.Equal(t, once, twice, "recover must be idempotent for %q", in)
	}
}

func TestRecover_JunkAfterOpeningBrace(t *testing.T) {
	r := NewRecoverer()

	out := r.Recover(`{garbage{"a": 1, "b": 2,}}}`)
	assert.Equal(t, `{"a": 1, "b": 2}`, out)

	var v map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Equal(t, float64(1), v["a"])
	assert.Equal(t, float64(2), v["b"])
}

func TestRecover_DuplicatedOpeningBraces(t *testing.T) {
	r := NewRecoverer()

	out := r.Recover(`{{{"a": 1}`)
	assert.Equal(t, `{"a": 1}`, out)
}

func TestRecover_ExcessClosers(t *testing.T) {
	r := NewRecoverer()

	out := r.Recover(`{"a": 1}}`)
	assert.Equal(t, `{"a": 1}`, out)
}

func TestRecover_TrailingJunkBeforeClosers(t *testing.T) {
	r := NewRecoverer()

	out := r.Recover(`{"a": 1###}}`)
	assert.Equal(t, `{"a": 1}`, out)
}

func TestRecover_UnbalancedArrayTail(t *testing.T) {
	r := NewRecoverer()

	// The ]} tail candidate closes the open array then the object.
	out := r.Recover(`{"a": [1, 2}}`)
	assert.Equal(t, `{"a": [1, 2]}`, out)
}

func TestRecover_TrailingComma(t *testing.T) {
	r := NewRecoverer()

	out := r.Recover(`{"a": 1, "b": 2,}`)
	assert.Equal(t, `{"a": 1, "b": 2}`, out)
}

func TestRecover_SiblingObjectsGetSeparator(t *testing.T) {
	r := NewRecoverer()

	out := r.Recover(`{"list": [{"a": 1} {"b": 2}]}`)
	assert.Contains(t, out, `},{`)
}

func TestRecover_CorruptedStringBody(t *testing.T) {
	r := NewRecoverer()

	out := r.Recover(`{"name": "dev###ice", "id": 7}`)
	assert.Equal(t, `{"name": "device", "id": 7}`, out)
}

func TestRecover_NonPrintableStripped(t *testing.T) {
	r := NewRecoverer()

	out := r.Recover("{\"a\": 1�}")
	assert.Equal(t, `{"a": 1}`, out)
}

func TestRecover_WhitespaceCollapsed(t *testing.T) {
	r := NewRecoverer()

	out := r.Recover("{\"a\":   1,\n\n\"b\":\t2}")
	assert.Equal(t, `{"a": 1, "b": 2}`, out)
}

func TestRecover_AlwaysReturnsString(t *testing.T) {
	r := NewRecoverer()

	// Even hopeless input yields a string, never a panic.
	inputs := []string{
		"{" + string(rune(0)) + "}",
		"{}",
		"{]",
		`{"": }`,
	}
	for _, in := range inputs {
		out := r.Recover(in)
		assert.IsType(t, "", out)
	}
}
