package toolpayload

import (
	"strings"
	"unicode"
)

const (
	// DefaultTruncationMarker is appended by the server when it caps tool output
	DefaultTruncationMarker = "... (truncated - output too large)"
	// DefaultExpandableField is the large list kept only for later expansion
	DefaultExpandableField = "all_venues"
)

// Repairer rebuilds a valid, if incomplete, object from truncated tool
// output by dropping the expandable list field and everything after it.
type Repairer struct {
	Marker string
	Field  string
}

var defaultRepairer = Repairer{
	Marker: DefaultTruncationMarker,
	Field:  DefaultExpandableField,
}

// Repair runs the default repairer
func Repair(raw string) (Object, bool) {
	return defaultRepairer.Repair(raw)
}

// Repair requires the truncation marker. The text between the first '{' and
// the marker is cut again at the expandable field's key, a trailing comma is
// stripped, and the still-open objects are closed.
func (r Repairer) Repair(raw string) (Object, bool) {
	marker := strings.Index(raw, r.Marker)
	if r.Marker == "" || marker < 0 {
		return nil, false
	}
	start := strings.IndexByte(raw, '{')
	if start < 0 || start > marker {
		return nil, false
	}

	text := raw[start:marker]
	if r.Field != "" {
		if cut := strings.Index(text, `"`+r.Field+`"`); cut >= 0 {
			trimmed := strings.TrimRightFunc(text[:cut], unicode.IsSpace)
			trimmed = strings.TrimSuffix(trimmed, ",")
			text = trimmed + closers(trimmed)
		}
	}
	return decodeObject(text)
}

// closers returns the brackets that close every container left open in text
func closers(text string) string {
	var open []byte
	inString := false
	escaped := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			open = append(open, c)
		case '}', ']':
			if len(open) > 0 {
				open = open[:len(open)-1]
			}
		}
	}

	var b strings.Builder
	for i := len(open) - 1; i >= 0; i-- {
		b.WriteString("\n")
		if open[i] == '{' {
			b.WriteByte('}')
		} else {
			b.WriteByte(']')
		}
	}
	return b.String()
}
