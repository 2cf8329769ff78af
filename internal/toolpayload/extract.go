// Package toolpayload turns raw tool output carried by the chat stream into
// resolved payloads: it finds the JSON object inside free-form text, repairs
// output the server cut short, and normalizes the known result shapes.
package toolpayload

import (
	"strings"

	"github.com/bytedance/sonic"
)

// Object is a decoded JSON object
type Object = map[string]any

// Extract returns the first balanced {...} object found in text. Braces
// inside string literals are ignored; an escaped quote does not end a
// string. Unterminated or unparsable candidates yield false.
func Extract(text string) (Object, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return nil, false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
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
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return decodeObject(text[start : i+1])
			}
		}
	}
	return nil, false
}

func decodeObject(text string) (Object, bool) {
	var obj Object
	if err := sonic.UnmarshalString(text, &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}
