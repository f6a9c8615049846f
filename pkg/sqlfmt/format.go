// Package sqlfmt inlines query parameters as escaped SQL literals. Drivers
// behind the gateway receive finished SQL text, so substitution must be
// exact: placeholders inside string literals are data, escaping follows
// standard quote doubling, and any type we cannot render safely is refused.
package sqlfmt

import (
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Format replaces each ? placeholder in query with the corresponding
// parameter rendered as a SQL literal. A ? inside a single-quoted string
// literal is left untouched. The parameter count must match the placeholder
// count exactly.
func Format(query string, params []any) (string, error) {
	var b strings.Builder
	b.Grow(len(query) + 16*len(params))

	next := 0
	inString := false
	i := 0
	for i < len(query) {
		ch := query[i]
		switch {
		case ch == '\'':
			// Doubled quotes are escapes, not literal boundaries.
			if inString && i+1 < len(query) && query[i+1] == '\'' {
				b.WriteString("''")
				i += 2
				continue
			}
			inString = !inString
			b.WriteByte(ch)
		case ch == '?' && !inString:
			if next >= len(params) {
				return "", fmt.Errorf("parameter count mismatch: query has more placeholders than the %d value(s) supplied", len(params))
			}
			lit, err := Literal(params[next])
			if err != nil {
				return "", fmt.Errorf("parameter %d: %w", next+1, err)
			}
			b.WriteString(lit)
			next++
		default:
			b.WriteByte(ch)
		}
		i++
	}

	if next != len(params) {
		return "", fmt.Errorf("parameter count mismatch: query has %d placeholder(s) but %d value(s) were supplied", next, len(params))
	}
	return b.String(), nil
}

// Literal renders one value as a SQL literal. Strings are quoted with
// standard quote doubling, timestamps are inlined in UTC, and binary data
// is rendered as a hex literal. Types with no safe textual form return an
// error.
func Literal(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "NULL", nil
	case string:
		return QuoteString(v), nil
	case bool:
		if v {
			return "TRUE", nil
		}
		return "FALSE", nil
	case int:
		return strconv.Itoa(v), nil
	case int8:
		return strconv.FormatInt(int64(v), 10), nil
	case int16:
		return strconv.FormatInt(int64(v), 10), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float32:
		return floatLiteral(float64(v))
	case float64:
		return floatLiteral(v)
	case time.Time:
		return "'" + v.UTC().Format("2006-01-02 15:04:05.999999") + "'", nil
	case []byte:
		return "0x" + hex.EncodeToString(v), nil
	default:
		return "", fmt.Errorf("unsupported parameter type %T", value)
	}
}

func floatLiteral(f float64) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("non-finite float %v cannot be a SQL literal", f)
	}
	return strconv.FormatFloat(f, 'g', -1, 64), nil
}

// QuoteString wraps s in single quotes, doubling embedded quotes.
func QuoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
