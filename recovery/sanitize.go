package recovery

import "strings"

// Sanitize strips control and invalid characters from arbitrary text and
// normalizes its whitespace. It is a pure, total function: it never fails
// and always returns a string.
//
// Removed: every character in the control ranges 0x00-0x08, 0x0B, 0x0C,
// 0x0E-0x1F, 0x7F-0x9F, and the Unicode replacement character produced by
// invalid byte sequences during decoding. Runs of whitespace (including
// newlines) collapse to a single space and the result is trimmed.
func Sanitize(text string) string {
	cleaned := strings.Map(func(r rune) rune {
		if isControlChar(r) || r == '�' {
			return -1
		}
		return r
	}, text)

	return strings.Join(strings.Fields(cleaned), " ")
}
