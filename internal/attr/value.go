package attr

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is a sealed interface over the attribute value types.
// Only String, Int, Bool, and Address implement it. Absence of a value
// is a nil Value, not a member of the union.
type Value interface {
	attrValue() // sealed
}

// String is a text attribute value.
type String string

func (String) attrValue() {}

// Int is an integer attribute value. Always int64, never a float.
type Int int64

func (Int) attrValue() {}

// Bool is a boolean attribute value.
type Bool bool

func (Bool) attrValue() {}

// Address is a memory address attribute value, e.g. a program counter.
type Address uint64

func (Address) attrValue() {}

// NoAddress is the explicit "no address" sentinel. Writing it through
// the frame facade is indistinguishable from writing absence.
const NoAddress Address = ^Address(0)

// String renders the address as 0x-prefixed lowercase hex.
func (a Address) String() string {
	return fmt.Sprintf("0x%x", uint64(a))
}

// ParseAddress parses a 0x-prefixed hex address string.
func ParseAddress(s string) (Address, error) {
	body, ok := strings.CutPrefix(s, "0x")
	if !ok {
		return 0, fmt.Errorf("parse address %q: missing 0x prefix", s)
	}
	n, err := strconv.ParseUint(body, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("parse address %q: %w", s, err)
	}
	return Address(n), nil
}

// Storage kinds for the (kind, text) column encoding.
const (
	KindString = "string"
	KindInt    = "int"
	KindBool   = "bool"
	KindAddr   = "addr"
)

// Encode maps a non-nil Value to its (kind, text) storage columns.
func Encode(v Value) (kind, text string, err error) {
	switch val := v.(type) {
	case String:
		return KindString, string(val), nil
	case Int:
		return KindInt, strconv.FormatInt(int64(val), 10), nil
	case Bool:
		return KindBool, strconv.FormatBool(bool(val)), nil
	case Address:
		return KindAddr, val.String(), nil
	case nil:
		return "", "", fmt.Errorf("encode: nil value has no storage form")
	default:
		return "", "", fmt.Errorf("encode: unsupported value type %T", v)
	}
}

// Decode reverses Encode.
func Decode(kind, text string) (Value, error) {
	switch kind {
	case KindString:
		return String(text), nil
	case KindInt:
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("decode int %q: %w", text, err)
		}
		return Int(n), nil
	case KindBool:
		b, err := strconv.ParseBool(text)
		if err != nil {
			return nil, fmt.Errorf("decode bool %q: %w", text, err)
		}
		return Bool(b), nil
	case KindAddr:
		a, err := ParseAddress(text)
		if err != nil {
			return nil, fmt.Errorf("decode addr: %w", err)
		}
		return a, nil
	default:
		return nil, fmt.Errorf("decode: unknown value kind %q", kind)
	}
}
