package recovery

import "strings"

// ValidStructure checks bracket and brace balance with string and escape
// awareness. It is a balance check only, not a grammar check: a cheap
// pre-filter for accepting or rejecting repair candidates before a full
// parse is attempted.
//
// The text must start with '{' (after trimming) and end with '}' or ']'.
// The scan tracks whether the cursor is inside a quoted string (toggled on
// unescaped '"'); a backslash consumes the following character without
// touching the nesting counters. Outside strings, '{'/'}' adjust the brace
// counter and '['/']' the bracket counter. The text is valid iff both
// counters end at exactly zero.
func ValidStructure(text string) bool {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "{") {
		return false
	}
	if !strings.HasSuffix(trimmed, "}") && !strings.HasSuffix(trimmed, "]") {
		return false
	}

	braces, brackets := 0, 0
	inString := false
	escaped := false

	for _, r := range trimmed {
		if escaped {
			escaped = false
			continue
		}

		switch r {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				braces++
			}
		case '}':
			if !inString {
				braces--
			}
		case '[':
			if !inString {
				brackets++
			}
		case ']':
			if !inString {
				brackets--
			}
		}
	}

	return braces == 0 && brackets == 0
}
