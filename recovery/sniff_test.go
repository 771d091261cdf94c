package recovery

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSniffer_FrameMagicBytes(t *testing.T) {
	s := NewSniffer()

	// 0x184D2204 little-endian on the wire
	frame := []byte{0x04, 0x22, 0x4D, 0x18, 0x00, 0x01, 0x02}
	det := s.Classify(BytesInput(frame))
	assert.Equal(t, CompressedFrame, det.Class)
	assert.Equal(t, frame, det.Bytes)
}

func TestSniffer_MagicTooShort(t *testing.T) {
	s := NewSniffer()

	// Exactly 4 bytes of magic with no frame body is not a frame.
	det := s.Classify(BytesInput([]byte{0x04, 0x22, 0x4D, 0x18}))
	assert.Equal(t, PlainBytes, det.Class)
}

func TestSniffer_PlainBytesWithoutMagic(t *testing.T) {
	s := NewSniffer()

	det := s.Classify(BytesInput([]byte("just some bytes")))
	assert.Equal(t, PlainBytes, det.Class)
	assert.Equal(t, []byte("just some bytes"), det.Bytes)
}

func TestSniffer_ControlCharsMeanCorrupted(t *testing.T) {
	s := NewSniffer()

	tests := []struct {
		name string
		text string
	}{
		{"nul byte", "hello\x00world"},
		{"vertical tab", "a\x0bb"},
		{"form feed", "a\x0cb"},
		{"unit separator", "a\x1fb"},
		{"delete", "a\x7fb"},
		{"c1 control", "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			det := s.Classify(TextInput(tt.text))
			assert.Equal(t, CorruptedText, det.Class)
			assert.Equal(t, tt.text, det.Text)
		})
	}
}

func TestSniffer_TabAndNewlineAreNotCorruption(t *testing.T) {
	s := NewSniffer()

	det := s.Classify(TextInput("plain\ttext\nwith whitespace"))
	assert.Equal(t, PlainBytes, det.Class)
}

func TestSniffer_CorruptedBraceStructure(t *testing.T) {
	s := NewSniffer()

	tests := []struct {
		name string
		text string
		want Classification
	}{
		{"junk after opening brace", `{garbage{"a": 1, "b": 2,}}}`, CorruptedText},
		{"replacement char in span", "{\"a\": �1}", CorruptedText},
		{"well-formed object", `{"a": 1, "b": true, "c": null}`, PlainBytes},
		{"exponent literal", `{"a": 1e5}`, PlainBytes},
		{"no braces at all", "hello world", PlainBytes},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			det := s.Classify(TextInput(tt.text))
			assert.Equal(t, tt.want, det.Class)
		})
	}
}

func TestSniffer_Base64CompressedFrame(t *testing.T) {
	s := NewSniffer()
	enc := NewFrameEncoder(0)

	frame, err := enc.Encode([]byte(`{"sensor": "temp-001", "value": 23.5}`))
	require.NoError(t, err)

	encoded := base64.StdEncoding.EncodeToString(frame)
	det := s.Classify(TextInput(encoded))
	assert.Equal(t, Base64CompressedFrame, det.Class)
	assert.Equal(t, frame, det.Bytes, "decoded bytes must be carried forward")
}

func TestSniffer_Base64PlainTextStaysPlain(t *testing.T) {
	s := NewSniffer()

	// Valid base64 but the decoded bytes carry no frame magic.
	encoded := base64.StdEncoding.EncodeToString([]byte("not a frame at all"))
	det := s.Classify(TextInput(encoded))
	assert.Equal(t, PlainBytes, det.Class)
}

func TestSniffer_StructuredValueSerialized(t *testing.T) {
	s := NewSniffer()

	det := s.Classify(ValueInput(map[string]any{"x": 1}))
	assert.Equal(t, PlainBytes, det.Class)
	assert.JSONEq(t, `{"x":1}`, string(det.Bytes))
}

func TestSniffer_ClassificationIsTotal(t *testing.T) {
	s := NewSniffer()

	inputs := []Input{
		BytesInput([]byte{0x01}),
		TextInput("x"),
		ValueInput([]any{1, 2, 3}),
		ValueInput(map[string]any{"nested": map[string]any{"deep": true}}),
		TextInput("{"),
		BytesInput(make([]byte, 1024)),
	}

	for _, in := range inputs {
		det := s.Classify(in)
		assert.Contains(t,
			[]Classification{PlainBytes, CompressedFrame, Base64CompressedFrame, CorruptedText},
			det.Class)
	}
}
