package record

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ParseMetadata reads the backend's metadata strings. Newer records carry
// JSON; older ones carry Python dict literals with single-quoted keys
// (`{'rssi': -97, 'gateway': 'gw-04'}`). Returns ok=false when neither
// form parses, in which case callers keep the raw string verbatim.
func ParseMetadata(s string) (map[string]any, bool) {
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err == nil {
		return m, true
	}

	converted, err := literalToJSON(s)
	if err != nil {
		return nil, false
	}
	if err := json.Unmarshal([]byte(converted), &m); err != nil {
		return nil, false
	}
	return m, true
}

// literalToJSON rewrites a Python-style structured literal as JSON:
// single-quoted strings become double-quoted, True/False/None become
// true/false/null, and tuples become arrays. Anything else passes through
// so the final json.Unmarshal decides validity.
func literalToJSON(s string) (string, error) {
	var out strings.Builder
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == '\'' || c == '"':
			value, consumed, err := scanQuoted(s[i:])
			if err != nil {
				return "", err
			}
			out.WriteString(strconv.Quote(value))
			i += consumed
		case c == '(':
			out.WriteByte('[')
			i++
		case c == ')':
			out.WriteByte(']')
			i++
		case isWordStart(c) && !(i > 0 && (isDigit(s[i-1]) || s[i-1] == '.')):
			// The exclusion keeps the exponent of numbers like 1e-05
			// out of the keyword path.
			j := i
			for j < len(s) && isWordChar(s[j]) {
				j++
			}
			switch word := s[i:j]; word {
			case "True":
				out.WriteString("true")
			case "False":
				out.WriteString("false")
			case "None":
				out.WriteString("null")
			default:
				return "", fmt.Errorf("unexpected token %q", word)
			}
			i = j
		default:
			out.WriteByte(c)
			i++
		}
	}
	return out.String(), nil
}

// scanQuoted reads one quoted string starting at s[0] and returns its
// unescaped value and the number of input bytes consumed.
func scanQuoted(s string) (string, int, error) {
	quote := s[0]
	var b strings.Builder
	for i := 1; i < len(s); i++ {
		c := s[i]
		if c == quote {
			return b.String(), i + 1, nil
		}
		if c == '\\' && i+1 < len(s) {
			i++
			switch s[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			default:
				b.WriteByte(s[i])
			}
			continue
		}
		b.WriteByte(c)
	}
	return "", 0, errors.New("unterminated string literal")
}

func isWordStart(c byte) bool {
	return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c == '_'
}

func isWordChar(c byte) bool {
	return isWordStart(c) || isDigit(c)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
