package codec

import (
	"fmt"

	"github.com/regmap-proto/regmap-go/pkg/schema"
)

// Scalar enumerates the Go types with a direct value kind. Enumeration
// values encode through their underlying integer type.
type Scalar interface {
	bool | int8 | int16 | int32 | int64 |
		uint8 | uint16 | uint32 | uint64 | float32 | float64
}

// EncodeScalar encodes a single value under a configuration, without a
// schema. The value kind follows the Go type; plain int and uint are
// rejected because they imply no wire width.
func EncodeScalar(cfg schema.Config, v any) ([]byte, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	kind, ok := kindOf(v)
	if !ok {
		return nil, fmt.Errorf("%w: no value kind for %T", schema.ErrUnsupportedKind, v)
	}
	ops, err := opsFor(kind, cfg)
	if err != nil {
		return nil, err
	}
	bits, err := bitsOf(kind, v)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, ops.size)
	ops.put(buf, bits)
	return buf, nil
}

// DecodeScalar decodes a single value of an explicit kind from the
// leading bytes of buf.
func DecodeScalar(cfg schema.Config, kind schema.Kind, buf []byte) (any, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ops, err := opsFor(kind, cfg)
	if err != nil {
		return nil, err
	}
	if len(buf) < ops.size {
		return nil, fmt.Errorf("%w: %s needs %d bytes, have %d",
			ErrShortBuffer, kind, ops.size, len(buf))
	}
	return valueOf(kind, ops.get(buf[:ops.size])), nil
}

// EncodeValue is the typed form of EncodeScalar.
func EncodeValue[T Scalar](cfg schema.Config, v T) ([]byte, error) {
	return EncodeScalar(cfg, any(v))
}

// DecodeValue decodes a single value of the kind implied by T.
func DecodeValue[T Scalar](cfg schema.Config, buf []byte) (T, error) {
	var zero T
	kind, ok := kindOf(any(zero))
	if !ok {
		return zero, fmt.Errorf("%w: no value kind for %T", schema.ErrUnsupportedKind, zero)
	}
	v, err := DecodeScalar(cfg, kind, buf)
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}
