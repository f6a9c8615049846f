package sqlfmt

import (
	"errors"
	"strings"
)

// ErrMultipleStatements reports a query holding more than one statement.
var ErrMultipleStatements = errors.New("multiple SQL statements not allowed; only single statements are permitted")

// Normalize trims surrounding whitespace and strips a single trailing
// semicolon. Any further semicolon outside string literals and quoted
// identifiers is rejected: every driver behind the gateway executes exactly
// one statement per call, and a second statement would otherwise fail with
// an obscure driver error or be dropped silently.
func Normalize(query string) (string, error) {
	normalized := strings.TrimSpace(query)
	if normalized == "" {
		return normalized, nil
	}

	if strings.HasSuffix(normalized, ";") {
		normalized = strings.TrimRight(strings.TrimSuffix(normalized, ";"), " \t\n\r")
	}

	if hasBareSemicolon(normalized) {
		return "", ErrMultipleStatements
	}
	return normalized, nil
}

// hasBareSemicolon reports whether any semicolon sits outside single-quoted
// strings and double-quoted identifiers. Doubled quotes and backslash
// escapes keep the scanner inside the literal.
func hasBareSemicolon(query string) bool {
	const (
		normal = iota
		inString
		inIdent
	)

	state := normal
	prev := rune(0)

	for _, ch := range query {
		switch state {
		case normal:
			switch ch {
			case ';':
				return true
			case '\'':
				state = inString
			case '"':
				state = inIdent
			}
		case inString:
			// A doubled quote exits here and re-enters on the next
			// character, still scanning the contents as string.
			if ch == '\'' && prev != '\\' {
				state = normal
			}
		case inIdent:
			if ch == '"' && prev != '\\' {
				state = normal
			}
		}
		prev = ch
	}
	return false
}
