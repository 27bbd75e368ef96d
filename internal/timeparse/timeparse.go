// Package timeparse normalizes the upstream API's inconsistently formatted
// timestamp strings into instants.
//
// The platform emits several shapes: plain ISO-8601, "Z"-suffixed UTC,
// over-long fractional seconds (8+ digits), and naive local timestamps.
// Normalize tries progressively more forgiving parses and, as a last
// resort, substitutes the current wall clock rather than failing: the
// collection pipeline favors robustness over strict ordering.
package timeparse

import (
	"log/slog"
	"regexp"
	"strings"
	"time"
)

// Policy selects what the caller should do with a record whose timestamp
// could not be parsed at all.
type Policy string

const (
	// PolicySubstituteNow keeps the record, stamped with the current wall
	// clock. This can misorder output and is the historical default.
	PolicySubstituteNow Policy = "substitute-now"

	// PolicyDrop discards the record instead.
	PolicyDrop Policy = "drop"
)

// Valid reports whether p is a known policy.
func (p Policy) Valid() bool {
	return p == PolicySubstituteNow || p == PolicyDrop
}

const (
	layoutOffset = "2006-01-02T15:04:05.999999-07:00"
	layoutMicro  = "2006-01-02T15:04:05.000000-07:00"
	layoutNaive  = "2006-01-02T15:04:05"
)

// fracRun isolates the fractional-second run and trailing offset of an
// otherwise well-formed timestamp.
var fracRun = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2})\.(\d+)([+-]\d{2}:\d{2}|Z)`)

// tailJunk strips a fractional part and/or offset from the end of the string.
var tailJunk = regexp.MustCompile(`\.?\d*[+-]\d{2}:\d{2}$|Z$`)

// Normalize parses an arbitrarily-shaped timestamp string. It is total:
// every input yields a valid instant. The second return value is true when
// the current wall clock was substituted because nothing could be parsed.
func Normalize(s string) (time.Time, bool) {
	if s == "" {
		slog.Warn("empty timestamp, substituting current time")
		return time.Now(), true
	}

	// Strict parse, treating a trailing Z as the UTC offset. Fractions
	// longer than six digits are deferred to the truncation stage below
	// (Go's fraction matching is laxer than the upstream contract).
	if m := fracRun.FindStringSubmatch(s); m == nil || len(m[2]) <= 6 {
		normalized := s
		if strings.HasSuffix(normalized, "Z") {
			normalized = strings.TrimSuffix(normalized, "Z") + "+00:00"
		}
		if t, err := time.Parse(layoutOffset, normalized); err == nil {
			return t, false
		}
		if t, err := time.ParseInLocation(strings.TrimSuffix(layoutOffset, "-07:00"), normalized, time.Local); err == nil {
			return t, false
		}
	}

	// Over-long fractional seconds: truncate or right-pad to exactly six
	// digits and reparse.
	if m := fracRun.FindStringSubmatch(s); m != nil {
		frac := m[2]
		if len(frac) > 6 {
			frac = frac[:6]
		} else {
			frac = frac + strings.Repeat("0", 6-len(frac))
		}
		offset := m[3]
		if offset == "Z" {
			offset = "+00:00"
		}
		if t, err := time.Parse(layoutMicro, m[1]+"."+frac+offset); err == nil {
			return t, false
		}
	}

	// Drop the fractional part, keep the offset.
	base, _, hadFrac := strings.Cut(s, ".")
	if hadFrac {
		if strings.HasSuffix(s, "Z") {
			if t, err := time.ParseInLocation(layoutNaive, base, time.Local); err == nil {
				return t, false
			}
		} else if i := strings.Index(s, "+"); i >= 0 {
			if t, err := time.Parse(layoutNaive+"-07:00", base+s[strings.LastIndex(s, "+"):]); err == nil {
				return t, false
			}
		}
	}

	// Drop both fraction and offset, parse as a naive local timestamp.
	clean := tailJunk.ReplaceAllString(s, "")
	if t, err := time.ParseInLocation(layoutNaive, clean, time.Local); err == nil {
		return t, false
	}

	slog.Warn("could not parse timestamp, substituting current time", "timestamp", s)
	return time.Now(), true
}
