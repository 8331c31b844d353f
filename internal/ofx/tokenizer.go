package ofx

import "strings"

// token is one tag event from the statement text. OFX files are SGML-like but
// rarely well-formed: tags may be unclosed, close tags may be missing, and
// casing varies by bank. The tokenizer therefore never rejects input; it just
// reports what it can see in a single pass.
type token struct {
	name    string // tag name, upper-cased
	text    string // trimmed text content following the tag
	closing bool   // true for </TAG>
}

// tokenize scans raw statement text for <TAG> boundaries. A tag name runs to
// the first '>', '<' or line break, so a missing closing bracket is treated
// as implicit. Text content runs to the next '<'. Header lines before the
// first tag (OFXHEADER:100 etc.) contain no brackets and fall through.
func tokenize(raw string) []token {
	var tokens []token
	for i := 0; i < len(raw); {
		if raw[i] != '<' {
			i++
			continue
		}
		j := i + 1
		closing := false
		if j < len(raw) && raw[j] == '/' {
			closing = true
			j++
		}
		k := j
		for k < len(raw) && raw[k] != '>' && raw[k] != '<' && raw[k] != '\n' && raw[k] != '\r' {
			k++
		}
		name := strings.ToUpper(strings.TrimSpace(raw[j:k]))
		next := k
		if k < len(raw) && raw[k] == '>' {
			next = k + 1
		}
		if !isTagName(name) {
			// Stray '<' inside free text; skip it and keep scanning.
			i = j
			continue
		}
		t := next
		for t < len(raw) && raw[t] != '<' {
			t++
		}
		tokens = append(tokens, token{
			name:    name,
			text:    strings.TrimSpace(raw[next:t]),
			closing: closing,
		})
		i = t
	}
	return tokens
}

// isTagName reports whether s looks like an OFX tag name rather than stray
// text that happened to follow a '<'.
func isTagName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '.' || r == '_' || r == '-':
		default:
			return false
		}
	}
	return true
}
