package recovery

import (
	"regexp"
	"strings"
	"unicode"
)

// Pre-compiled repair patterns. Structural balance checking is deliberately
// NOT regex-based (see ValidStructure); these patterns only normalize flat
// character runs where escape awareness does not matter.
var (
	startsWithKeyRe  = regexp.MustCompile(`^\{\s*"`)
	leadingJunkRe    = regexp.MustCompile(`^\{[^"{}]+`)
	leadingBracesRe  = regexp.MustCompile(`^\{+`)
	keyTokenRe       = regexp.MustCompile(`"[^"]*"\s*:`)
	trailingCommaRe  = regexp.MustCompile(`,\s*([\}\]])`)
	siblingObjectsRe = regexp.MustCompile(`\}\s*\{`)
	whitespaceRunRe  = regexp.MustCompile(`\s+`)
)

// endTails are the candidate closer tails tried during end repair, in order.
// The order matters: single closers win over compound ones so a minimal
// repair is preferred.
var endTails = []string{"}", "]", "]}", "}}"}

// Recoverer extracts the JSON substring from noisy text and repairs common
// structural defects: junk after the opening brace, duplicated opening
// braces, excess or mismatched closer runs, corrupted string bodies,
// trailing commas, and missing separators between sibling objects.
//
// Recover never fails: on any internal error the original text comes back
// unchanged, and the output is always a string.
type Recoverer struct{}

// NewRecoverer creates a new JSON recoverer.
func NewRecoverer() *Recoverer {
	return &Recoverer{}
}

// Recover repairs the JSON-like span of the text. Text without a
// brace-delimited span passes through unchanged.
func (r *Recoverer) Recover(text string) (out string) {
	defer func() {
		if rec := recover(); rec != nil {
			out = text
		}
	}()

	first := strings.IndexByte(text, '{')
	last := strings.LastIndexByte(text, '}')
	if first < 0 || last < 0 || first >= last {
		return text
	}

	sub := text[first : last+1]
	sub = repairStart(sub)
	sub = repairEnd(sub)
	sub = stripNonPrintable(sub)
	sub = repairStringBodies(sub)
	sub = trailingCommaRe.ReplaceAllString(sub, "$1")
	sub = siblingObjectsRe.ReplaceAllString(sub, "},{")
	sub = strings.TrimSpace(whitespaceRunRe.ReplaceAllString(sub, " "))

	return sub
}

// repairStart rewrites a damaged opening so the span starts with '{'
// followed by a quoted key. Candidates are tried in order; the first one
// that still looks like JSON wins, otherwise the span is left unmodified.
func repairStart(sub string) string {
	if startsWithKeyRe.MatchString(sub) {
		return sub
	}

	for _, cand := range startCandidates(sub) {
		if looksLikeJSON(cand) {
			return cand
		}
	}
	return sub
}

func startCandidates(sub string) []string {
	junkStripped := leadingJunkRe.ReplaceAllString(sub, "{")
	collapsed := leadingBracesRe.ReplaceAllString(junkStripped, "{")

	cands := []string{
		collapsed,
		junkStripped,
		leadingBracesRe.ReplaceAllString(sub, "{"),
	}

	if idx := strings.Index(sub, `{"`); idx > 0 {
		cands = append(cands, sub[idx:])
	}
	return cands
}

// looksLikeJSON is a lightweight acceptance check for start-repair
// candidates: opens with a brace, contains at least one quoted-key token,
// and ends on a closer.
func looksLikeJSON(s string) bool {
	if !strings.HasPrefix(s, "{") {
		return false
	}
	if !strings.Contains(s, `"`) {
		return false
	}
	if !keyTokenRe.MatchString(s) {
		return false
	}
	return strings.HasSuffix(s, "}") || strings.HasSuffix(s, "]")
}

// repairEnd fixes damaged closer runs: two or more consecutive closers, or
// trailing junk before the run, trigger candidate tails which are accepted
// only on full structural validation. If no tail validates the span is left
// unmodified.
func repairEnd(sub string) string {
	base, closers, junk := splitTail(sub)
	if closers < 2 && junk == 0 {
		return sub
	}
	if base == "" {
		return sub
	}

	for _, tail := range endTails {
		cand := base + tail
		if ValidStructure(cand) {
			return cand
		}
	}
	return sub
}

// splitTail walks backward over the trailing run of closers and whitespace,
// then over any non-structural junk in front of it, returning the stable
// prefix and what was skipped.
func splitTail(sub string) (base string, closers, junk int) {
	i := len(sub) - 1
	for i >= 0 {
		c := sub[i]
		if c == '}' || c == ']' {
			closers++
			i--
			continue
		}
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			i--
			continue
		}
		break
	}

	for i >= 0 && isTailJunk(sub[i]) {
		junk++
		i--
	}

	return sub[:i+1], closers, junk
}

func isTailJunk(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return false
	}
	switch c {
	case '"', ',', ':', '{', '}', '[', ']', '.', '-', '_', ' ', '\t', '\n', '\r':
		return false
	}
	return true
}

// stripNonPrintable removes every character outside the printable ASCII
// range, keeping whitespace.
func stripNonPrintable(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 0x20 && r <= 0x7E {
			return r
		}
		if unicode.IsSpace(r) {
			return r
		}
		return -1
	}, s)
}

// repairStringBodies deletes runs of corrupted characters inside quoted
// string values while preserving the surrounding quoted content. The scan
// is escape-aware so a \" inside a string does not end it.
func repairStringBodies(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString := false
	escaped := false

	for _, r := range s {
		if escaped {
			escaped = false
			b.WriteRune(r)
			continue
		}

		switch {
		case r == '\\' && inString:
			escaped = true
			b.WriteRune(r)
		case r == '"':
			inString = !inString
			b.WriteRune(r)
		case inString && !isStringBodyRune(r):
			// corrupted run inside a string value; drop it
		default:
			b.WriteRune(r)
		}
	}

	return b.String()
}

func isStringBodyRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
		return true
	}
	if unicode.IsSpace(r) {
		return true
	}
	return strings.ContainsRune(`",:{}[].-`, r)
}
