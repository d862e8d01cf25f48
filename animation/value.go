package animation

import (
	"fmt"
	"strconv"
)

// Kind identifies the type carried by a Value.
type Kind uint8

const (
	KindNone Kind = iota
	KindInt
	KindFloat
	KindBool
	KindString
	KindEntity
)

var kindTags = [...]string{
	KindNone:   "",
	KindInt:    "int",
	KindFloat:  "float",
	KindBool:   "bool",
	KindString: "string",
	KindEntity: "entity",
}

func (k Kind) String() string {
	if k == KindNone {
		return "none"
	}
	if int(k) < len(kindTags) {
		return kindTags[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// EntityRef is an opaque handle to a scene entity.
type EntityRef uint64

// Value is a parameter or threshold value. The zero Value has KindNone.
type Value struct {
	kind Kind
	i    int64
	f    float64
	b    bool
	s    string
	e    EntityRef
}

func Int(v int64) Value { return Value{kind: KindInt, i: v} }
func Float(v float64) Value { return Value{kind: KindFloat, f: v} }
func Bool(v bool) Value { return Value{kind: KindBool, b: v} }
func String(v string) Value { return Value{kind: KindString, s: v} }
func Entity(ref EntityRef) Value { return Value{kind: KindEntity, e: ref} }

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNone() bool { return v.kind == KindNone }

func (v Value) AsInt() (int64, bool) {
	return v.i, v.kind == KindInt
}

func (v Value) AsFloat() (float64, bool) {
	return v.f, v.kind == KindFloat
}

func (v Value) AsBool() (bool, bool) {
	return v.b, v.kind == KindBool
}

func (v Value) AsString() (string, bool) {
	return v.s, v.kind == KindString
}

func (v Value) AsEntity() (EntityRef, bool) {
	return v.e, v.kind == KindEntity
}

// Tag returns the persisted type tag.
func (v Value) Tag() string {
	return kindTags[v.kind]
}

// Payload returns the persisted string payload.
func (v Value) Payload() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindString:
		return v.s
	case KindEntity:
		return strconv.FormatUint(uint64(v.e), 10)
	default:
		return ""
	}
}

func (v Value) String() string {
	if v.kind == KindNone {
		return "<none>"
	}
	return v.Tag() + ":" + v.Payload()
}

// ParseValue decodes a persisted (type, payload) pair. An empty or unknown tag
// yields the empty Value.
func ParseValue(tag, payload string) (Value, error) {
	switch tag {
	case "int":
		n, err := strconv.ParseInt(payload, 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("animation: parse int %q: %w", payload, err)
		}
		return Int(n), nil
	case "float":
		f, err := strconv.ParseFloat(payload, 64)
		if err != nil {
			return Value{}, fmt.Errorf("animation: parse float %q: %w", payload, err)
		}
		return Float(f), nil
	case "bool":
		b, err := strconv.ParseBool(payload)
		if err != nil {
			return Value{}, fmt.Errorf("animation: parse bool %q: %w", payload, err)
		}
		return Bool(b), nil
	case "string":
		return String(payload), nil
	case "entity":
		n, err := strconv.ParseUint(payload, 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("animation: parse entity %q: %w", payload, err)
		}
		return Entity(EntityRef(n)), nil
	default:
		return Value{}, nil
	}
}
