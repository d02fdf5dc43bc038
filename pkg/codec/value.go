package codec

import (
	"errors"
	"fmt"
	"math"

	"github.com/regmap-proto/regmap-go/pkg/schema"
)

// Value errors.
var (
	ErrValueType       = errors.New("value type does not match field kind")
	ErrValueOutOfRange = errors.New("value out of range for field kind")
)

// bitsOf converts a Go value to the canonical bit pattern of a kind:
// the value's two's-complement or IEEE-754 image, zero-extended from
// the kind's width to 64 bits. Rejects values of the wrong type and
// integers outside the kind's domain.
func bitsOf(kind schema.Kind, v any) (uint64, error) {
	switch kind {
	case schema.KindBool:
		b, ok := v.(bool)
		if !ok {
			return 0, fmt.Errorf("%w: %s wants bool, got %T", ErrValueType, kind, v)
		}
		if b {
			return 1, nil
		}
		return 0, nil

	case schema.KindFloat32:
		f, err := floatOf(kind, v)
		if err != nil {
			return 0, err
		}
		if !math.IsInf(f, 0) && math.Abs(f) > math.MaxFloat32 {
			return 0, fmt.Errorf("%w: %v exceeds float32", ErrValueOutOfRange, f)
		}
		return uint64(math.Float32bits(float32(f))), nil

	case schema.KindFloat64:
		f, err := floatOf(kind, v)
		if err != nil {
			return 0, err
		}
		return math.Float64bits(f), nil
	}

	if !kind.Integer() {
		return 0, fmt.Errorf("%w: %s", schema.ErrUnsupportedKind, kind)
	}
	return intBits(kind, v)
}

// valueOf reconstructs the typed Go value of a kind from its canonical
// bit pattern.
func valueOf(kind schema.Kind, bits uint64) any {
	switch kind {
	case schema.KindBool:
		return bits != 0
	case schema.KindInt8:
		return int8(bits)
	case schema.KindInt16:
		return int16(bits)
	case schema.KindInt32:
		return int32(bits)
	case schema.KindInt64:
		return int64(bits)
	case schema.KindUint8:
		return uint8(bits)
	case schema.KindUint16:
		return uint16(bits)
	case schema.KindUint32:
		return uint32(bits)
	case schema.KindUint64:
		return bits
	case schema.KindFloat32:
		return math.Float32frombits(uint32(bits))
	case schema.KindFloat64:
		return math.Float64frombits(bits)
	default:
		return nil
	}
}

// kindOf maps a Go scalar to its value kind. Plain int and uint are
// excluded: scalar encoding requires an explicit width.
func kindOf(v any) (schema.Kind, bool) {
	switch v.(type) {
	case bool:
		return schema.KindBool, true
	case int8:
		return schema.KindInt8, true
	case int16:
		return schema.KindInt16, true
	case int32:
		return schema.KindInt32, true
	case int64:
		return schema.KindInt64, true
	case uint8:
		return schema.KindUint8, true
	case uint16:
		return schema.KindUint16, true
	case uint32:
		return schema.KindUint32, true
	case uint64:
		return schema.KindUint64, true
	case float32:
		return schema.KindFloat32, true
	case float64:
		return schema.KindFloat64, true
	default:
		return schema.KindInvalid, false
	}
}

func intBits(kind schema.Kind, v any) (uint64, error) {
	var sval int64
	var uval uint64
	signed := true

	switch n := v.(type) {
	case int:
		sval = int64(n)
	case int8:
		sval = int64(n)
	case int16:
		sval = int64(n)
	case int32:
		sval = int64(n)
	case int64:
		sval = n
	case uint:
		uval, signed = uint64(n), false
	case uint8:
		uval, signed = uint64(n), false
	case uint16:
		uval, signed = uint64(n), false
	case uint32:
		uval, signed = uint64(n), false
	case uint64:
		uval, signed = n, false
	default:
		return 0, fmt.Errorf("%w: %s wants an integer, got %T", ErrValueType, kind, v)
	}

	min, max := kindDomain(kind)
	if signed {
		if sval < min {
			return 0, fmt.Errorf("%w: %d below %s minimum", ErrValueOutOfRange, sval, kind)
		}
		if sval > 0 && uint64(sval) > max {
			return 0, fmt.Errorf("%w: %d above %s maximum", ErrValueOutOfRange, sval, kind)
		}
		return uint64(sval) & widthMask(kind), nil
	}
	if uval > max {
		return 0, fmt.Errorf("%w: %d above %s maximum", ErrValueOutOfRange, uval, kind)
	}
	return uval, nil
}

// kindDomain returns the accepted integer domain of a kind: the most
// negative value and the largest magnitude.
func kindDomain(kind schema.Kind) (min int64, max uint64) {
	switch kind {
	case schema.KindInt8:
		return math.MinInt8, math.MaxInt8
	case schema.KindInt16:
		return math.MinInt16, math.MaxInt16
	case schema.KindInt32:
		return math.MinInt32, math.MaxInt32
	case schema.KindInt64:
		return math.MinInt64, math.MaxInt64
	case schema.KindUint8:
		return 0, math.MaxUint8
	case schema.KindUint16:
		return 0, math.MaxUint16
	case schema.KindUint32:
		return 0, math.MaxUint32
	default:
		return 0, math.MaxUint64
	}
}

func widthMask(kind schema.Kind) uint64 {
	switch kind.Size(schema.BoolByte) {
	case 1:
		return 0xFF
	case 2:
		return 0xFFFF
	case 4:
		return 0xFFFFFFFF
	default:
		return ^uint64(0)
	}
}

func floatOf(kind schema.Kind, v any) (float64, error) {
	switch n := v.(type) {
	case float32:
		return float64(n), nil
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int8:
		return float64(n), nil
	case int16:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case uint8:
		return float64(n), nil
	case uint16:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("%w: %s wants a number, got %T", ErrValueType, kind, v)
	}
}
