package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorClass_String(t *testing.T) {
	tests := []struct {
		name  string
		class ErrorClass
		want  string
	}{
		{"transient", ErrorTransient, "transient"},
		{"invalid", ErrorInvalid, "invalid"},
		{"fatal", ErrorFatal, "fatal"},
		{"unknown", ErrorClass(42), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.class.String())
		})
	}
}

func TestWrap_MessageShape(t *testing.T) {
	base := stderrors.New("boom")
	err := Wrap(base, "FrameDecoder", "Decode", "direct decode")
	require.Error(t, err)
	assert.Equal(t, "FrameDecoder.Decode: direct decode failed: boom", err.Error())
	assert.True(t, stderrors.Is(err, base))
}

func TestWrap_NilPassthrough(t *testing.T) {
	assert.NoError(t, Wrap(nil, "c", "m", "a"))
	assert.NoError(t, WrapTransient(nil, "c", "m", "a"))
	assert.NoError(t, WrapInvalid(nil, "c", "m", "a"))
	assert.NoError(t, WrapFatal(nil, "c", "m", "a"))
}

func TestClassification(t *testing.T) {
	transient := WrapTransient(ErrDecodeFailed, "FrameDecoder", "Decode", "all offsets")
	invalid := WrapInvalid(ErrParsingFailed, "Parser", "TryParse", "all attempts")
	fatal := WrapFatal(ErrInvalidConfig, "Engine", "New", "options")

	assert.True(t, IsTransient(transient))
	assert.False(t, IsTransient(invalid))

	assert.True(t, IsInvalid(invalid))
	assert.False(t, IsInvalid(transient))

	assert.True(t, IsFatal(fatal))
	assert.False(t, IsFatal(invalid))

	assert.Equal(t, ErrorTransient, Classify(transient))
	assert.Equal(t, ErrorInvalid, Classify(invalid))
	assert.Equal(t, ErrorFatal, Classify(fatal))
}

func TestSentinelClassification(t *testing.T) {
	// Bare sentinels classify without wrapping.
	assert.True(t, IsTransient(ErrDecodeFailed))
	assert.True(t, IsInvalid(ErrParsingFailed))
	assert.True(t, IsInvalid(ErrEmptyPayload))
	assert.True(t, IsFatal(ErrMissingConfig))
}

func TestClassifiedError_Unwrap(t *testing.T) {
	err := WrapInvalid(ErrInvalidData, "Sniffer", "Classify", "input inspection")

	var ce *ClassifiedError
	require.True(t, stderrors.As(err, &ce))
	assert.Equal(t, ErrorInvalid, ce.Class)
	assert.Equal(t, "Sniffer", ce.Component)
	assert.True(t, stderrors.Is(err, ErrInvalidData))
}
