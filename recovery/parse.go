package recovery

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/c360/reclaim/errors"
)

var unquotedKeyRe = regexp.MustCompile(`([\{,]\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`)

// parseAttempt is one layer of the best-effort parsing chain.
type parseAttempt struct {
	name string
	fn   func(string) (any, error)
}

// Parser performs a layered best-effort parse of possibly-damaged JSON
// text. The attempts form an explicit ordered chain, iterated until the
// first success:
//
//  1. strict: parse the text as-is
//  2. lenient: strip trailing commas, quote unquoted identifier keys,
//     normalize single quotes to double quotes, then strict-parse
//  3. extract: locate the first complete object span and strict-parse
//     only that span
//
// Exhausting every attempt is not an error; TryParse signals it with a
// false second return so the caller can fall back to a text form.
type Parser struct {
	attempts []parseAttempt
}

// NewParser creates a parser with the standard attempt chain.
func NewParser() *Parser {
	return &Parser{
		attempts: []parseAttempt{
			{name: "strict", fn: parseStrict},
			{name: "lenient", fn: parseLenient},
			{name: "extract", fn: parseExtract},
		},
	}
}

// TryParse returns the first successful parse of the text, or (nil, false)
// when every attempt fails. It never panics outward.
func (p *Parser) TryParse(text string) (value any, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			value, ok = nil, false
		}
	}()

	if strings.TrimSpace(text) == "" {
		return nil, false
	}

	for _, attempt := range p.attempts {
		if v, err := attempt.fn(text); err == nil {
			return v, true
		}
	}
	return nil, false
}

func parseStrict(text string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, err
	}
	return v, nil
}

func parseLenient(text string) (any, error) {
	fixed := trailingCommaRe.ReplaceAllString(text, "$1")
	fixed = unquotedKeyRe.ReplaceAllString(fixed, `$1"$2":`)
	fixed = strings.ReplaceAll(fixed, "'", `"`)
	return parseStrict(fixed)
}

func parseExtract(text string) (any, error) {
	span, ok := firstObjectSpan(text)
	if !ok {
		return nil, errors.ErrParsingFailed
	}
	return parseStrict(span)
}

// firstObjectSpan locates the first complete '{...}' span with an
// escape-aware scan to the matching brace. When no matching brace exists it
// falls back to the greedy span from the first '{' to the last '}'.
func firstObjectSpan(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return text[start : i+1], true
				}
			}
		}
	}

	end := strings.LastIndexByte(text, '}')
	if end <= start {
		return "", false
	}
	return text[start : end+1], true
}
