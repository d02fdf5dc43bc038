package schema

import (
	"errors"
	"fmt"
)

// ErrUnsupportedKind reports a value kind outside the supported set.
var ErrUnsupportedKind = errors.New("unsupported value kind")

// Kind identifies the value kind of a schema field.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindBool
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
)

// String returns the kind name.
func (k Kind) String() string {
	names := []string{
		"invalid", "bool", "int8", "int16", "int32", "int64",
		"uint8", "uint16", "uint32", "uint64", "float32", "float64",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "invalid"
}

// Valid reports whether the kind is one of the supported value kinds.
func (k Kind) Valid() bool {
	return k > KindInvalid && k <= KindFloat64
}

// Integer reports whether the kind is a signed or unsigned integer.
func (k Kind) Integer() bool {
	switch k {
	case KindInt8, KindInt16, KindInt32, KindInt64,
		KindUint8, KindUint16, KindUint32, KindUint64:
		return true
	default:
		return false
	}
}

// Signed reports whether the kind is a signed integer.
func (k Kind) Signed() bool {
	switch k {
	case KindInt8, KindInt16, KindInt32, KindInt64:
		return true
	default:
		return false
	}
}

// Float reports whether the kind is a floating-point kind.
func (k Kind) Float() bool {
	return k == KindFloat32 || k == KindFloat64
}

// Size returns the encoded width of the kind in bytes. Boolean width is
// configuration-dependent and supplied through w. Returns 0 for invalid
// kinds.
func (k Kind) Size(w BoolWidth) int {
	switch k {
	case KindBool:
		return int(w)
	case KindInt8, KindUint8:
		return 1
	case KindInt16, KindUint16:
		return 2
	case KindInt32, KindUint32, KindFloat32:
		return 4
	case KindInt64, KindUint64, KindFloat64:
		return 8
	default:
		return 0
	}
}

// ParseKind maps a kind name ("uint16", "bool", ...) to its Kind.
func ParseKind(s string) (Kind, error) {
	for k := KindBool; k <= KindFloat64; k++ {
		if k.String() == s {
			return k, nil
		}
	}
	return KindInvalid, fmt.Errorf("%w: %q", ErrUnsupportedKind, s)
}
