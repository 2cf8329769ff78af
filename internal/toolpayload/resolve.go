package toolpayload

import (
	"github.com/bytedance/sonic"

	"github.com/lvyanru/venue-chat/internal/domain"
)

// Resolve normalizes a tool result into one known payload kind:
//   - an object with a type tag passes through;
//   - a type-tagged object under "result" is unwrapped;
//   - a "reservation" or "prevendita" object, wrapped or not, is retagged as
//     the matching confirmation.
//
// Anything else, including unknown type tags, resolves to nothing.
func Resolve(obj Object) (*domain.Payload, bool) {
	if obj == nil {
		return nil, false
	}
	if kind, ok := typeTag(obj); ok {
		return decode(kind, obj)
	}

	result, _ := obj["result"].(map[string]any)
	if kind, ok := typeTag(result); ok {
		return decode(kind, result)
	}

	switch {
	case hasObject(result, "reservation"):
		return decode(domain.KindReservation, result)
	case hasObject(obj, "reservation"):
		return decode(domain.KindReservation, obj)
	case hasObject(result, "prevendita"):
		return decode(domain.KindTicket, result)
	case hasObject(obj, "prevendita"):
		return decode(domain.KindTicket, obj)
	}
	return nil, false
}

func typeTag(obj Object) (domain.PayloadKind, bool) {
	if obj == nil {
		return "", false
	}
	tag, _ := obj["type"].(string)
	return domain.PayloadKind(tag), tag != ""
}

func hasObject(obj Object, key string) bool {
	if obj == nil {
		return false
	}
	nested, ok := obj[key].(map[string]any)
	return ok && nested != nil
}

func decode(kind domain.PayloadKind, obj Object) (*domain.Payload, bool) {
	if !kind.Valid() {
		return nil, false
	}
	tagged := make(Object, len(obj)+1)
	for k, v := range obj {
		tagged[k] = v
	}
	tagged["type"] = string(kind)

	data, err := sonic.Marshal(tagged)
	if err != nil {
		return nil, false
	}
	p, err := domain.DecodePayload(kind, data)
	if err != nil {
		return nil, false
	}
	return p, true
}
