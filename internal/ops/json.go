package ops

import (
	"encoding/json"
	"fmt"
)

// Marshal encodes op externally tagged: {"NewCircle":{"sketch_id":...}}
func Marshal(op Operation) ([]byte, error) {
	if op == nil {
		return nil, fmt.Errorf("cannot marshal nil operation")
	}
	op = Value(op)
	return json.Marshal(map[string]Operation{op.Kind().String(): op})
}

// Unmarshal decodes the form written by Marshal
func Unmarshal(data []byte) (Operation, error) {
	var env map[string]json.RawMessage
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to unmarshal operation: %w", err)
	}
	if len(env) != 1 {
		return nil, fmt.Errorf("operation must have exactly one variant tag, got %d", len(env))
	}
	for name, raw := range env {
		kind, ok := KindFromString(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownKind, name)
		}
		op, err := decodeKind(kind, raw)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", name, err)
		}
		return op, nil
	}
	panic("unreachable")
}

func decodeKind(kind Kind, raw json.RawMessage) (Operation, error) {
	switch kind {
	case KindCreate:
		return decodeAs[Create](raw)
	case KindDescribe:
		return decodeAs[Describe](raw)
	case KindNewPlane:
		return decodeAs[NewPlane](raw)
	case KindNewSketch:
		return decodeAs[NewSketch](raw)
	case KindNewRectangle:
		return decodeAs[NewRectangle](raw)
	case KindNewCircle:
		return decodeAs[NewCircle](raw)
	case KindNewExtrusion:
		return decodeAs[NewExtrusion](raw)
	case KindModifyExtrusionDepth:
		return decodeAs[ModifyExtrusionDepth](raw)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
}

func decodeAs[T Operation](raw json.RawMessage) (Operation, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}
