package toolpayload

import (
	"bytes"
	"encoding/json"

	"github.com/bytedance/sonic"
)

// Parse extracts an object from raw tool text with the default repairer
func Parse(raw string) (Object, bool) {
	return defaultRepairer.Parse(raw)
}

// Decode decodes a tool_result field with the default repairer
func Decode(raw json.RawMessage) (Object, bool) {
	return defaultRepairer.Decode(raw)
}

// Parse extracts an object from raw tool text, falling back to repair
func (r Repairer) Parse(raw string) (Object, bool) {
	if obj, ok := Extract(raw); ok {
		return obj, true
	}
	return r.Repair(raw)
}

// Decode turns the result field of a tool_result frame into an object. The
// field is either an already structured object or a string of raw output.
func (r Repairer) Decode(raw json.RawMessage) (Object, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, false
	}

	switch trimmed[0] {
	case '{':
		var obj Object
		if err := sonic.Unmarshal(trimmed, &obj); err == nil && obj != nil {
			return obj, true
		}
		return r.Parse(string(trimmed))
	case '"':
		var text string
		if err := sonic.Unmarshal(trimmed, &text); err != nil {
			return nil, false
		}
		return r.Parse(text)
	}
	return nil, false
}
