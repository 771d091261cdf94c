package recovery

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"strings"
)

// FrameMagic is the 4-byte constant identifying the start of an LZ4 frame,
// read as a little-endian 32-bit word at offset 0.
const FrameMagic uint32 = 0x184D2204

// HasFrameMagic reports whether the byte sequence starts with the LZ4 frame
// magic. Sequences of 4 bytes or fewer never match: a bare magic word with
// no frame body behind it is not a decodable frame.
func HasFrameMagic(b []byte) bool {
	return len(b) > 4 && binary.LittleEndian.Uint32(b[:4]) == FrameMagic
}

// Detection is the result of classifying one input: the classification plus
// the byte/text form carried forward to the selected processing path.
type Detection struct {
	Class Classification

	// Bytes carries the downstream byte form: the original bytes for
	// CompressedFrame and PlainBytes, the base64-decoded bytes for
	// Base64CompressedFrame, and the canonical JSON encoding for
	// structured values.
	Bytes []byte

	// Text carries the downstream text form for CorruptedText.
	Text string
}

// Sniffer classifies raw input into a processing path. Classification is
// total: every input maps to exactly one path and sniffing never fails;
// ambiguous input defaults to PlainBytes.
type Sniffer struct{}

// NewSniffer creates a new format sniffer.
func NewSniffer() *Sniffer {
	return &Sniffer{}
}

// Classify inspects the input and decides its processing path.
func (s *Sniffer) Classify(in Input) Detection {
	switch in.Kind() {
	case KindBytes:
		if HasFrameMagic(in.Bytes()) {
			return Detection{Class: CompressedFrame, Bytes: in.Bytes()}
		}
		return Detection{Class: PlainBytes, Bytes: in.Bytes()}

	case KindText:
		return s.classifyText(in.Text())

	case KindValue:
		// Structured values are serialized to canonical JSON before
		// downstream use. A value that cannot be marshalled still has
		// to land somewhere; its string form keeps classification total.
		data, err := json.Marshal(in.Value())
		if err != nil {
			return Detection{Class: PlainBytes, Bytes: []byte(stringify(in.Value()))}
		}
		return Detection{Class: PlainBytes, Bytes: data}

	default:
		return Detection{Class: PlainBytes}
	}
}

func (s *Sniffer) classifyText(text string) Detection {
	if hasControlChars(text) || hasCorruptedStructure(text) {
		return Detection{Class: CorruptedText, Text: text}
	}

	if decoded, ok := tryBase64Frame(text); ok {
		return Detection{Class: Base64CompressedFrame, Bytes: decoded}
	}

	return Detection{Class: PlainBytes, Bytes: []byte(text)}
}

// hasControlChars reports whether the text contains characters in the
// control ranges 0x00-0x08, 0x0B, 0x0C, 0x0E-0x1F, or 0x7F-0x9F. Tab,
// newline, and carriage return are ordinary whitespace, not corruption.
func hasControlChars(text string) bool {
	for _, r := range text {
		if isControlChar(r) {
			return true
		}
	}
	return false
}

func isControlChar(r rune) bool {
	switch {
	case r >= 0x00 && r <= 0x08:
		return true
	case r == 0x0B || r == 0x0C:
		return true
	case r >= 0x0E && r <= 0x1F:
		return true
	case r >= 0x7F && r <= 0x9F:
		return true
	default:
		return false
	}
}

// hasCorruptedStructure reports whether the text contains a brace-delimited
// region interleaved with characters outside the allowed JSON token set.
// This is a tuning heuristic inherited from the upstream pipeline: JSON
// arriving over its transport is plain printable ASCII, and outside quoted
// strings the only legal letter runs are the true/false/null literals (plus
// a number exponent marker). Anything else inside the braces indicates
// transport damage.
func hasCorruptedStructure(text string) bool {
	first := strings.IndexByte(text, '{')
	last := strings.LastIndexByte(text, '}')
	if first < 0 || last < 0 || first >= last {
		return false
	}

	inString := false
	escaped := false
	var run []rune

	literalRun := func() bool {
		if len(run) == 0 {
			return true
		}
		word := string(run)
		run = run[:0]
		switch word {
		case "true", "false", "null", "e", "E":
			return true
		default:
			return false
		}
	}

	for _, r := range text[first : last+1] {
		if escaped {
			escaped = false
			continue
		}
		if inString {
			switch r {
			case '\\':
				escaped = true
			case '"':
				inString = false
			}
			continue
		}

		switch {
		case r == '�' || r > 0x7E:
			return true
		case r == '"':
			if !literalRun() {
				return true
			}
			inString = true
		case isASCIILetter(r):
			run = append(run, r)
		default:
			if !literalRun() {
				return true
			}
		}
	}

	return !literalRun()
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// tryBase64Frame attempts to base64-decode the text; it reports success only
// when the decoded bytes form an LZ4 frame.
func tryBase64Frame(text string) ([]byte, bool) {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < 8 {
		return nil, false
	}
	decoded, err := base64.StdEncoding.DecodeString(trimmed)
	if err != nil {
		return nil, false
	}
	if !HasFrameMagic(decoded) {
		return nil, false
	}
	return decoded, true
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return ""
}
