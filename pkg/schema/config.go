package schema

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig reports malformed schema input: a configuration
// outside the supported boolean widths or byte orders, or a field
// placed past the 16-bit address space.
var ErrInvalidConfig = errors.New("invalid schema configuration")

// BoolWidth selects the encoded width of boolean fields in bytes.
type BoolWidth uint8

const (
	// BoolByte encodes booleans as a single 0/1 byte.
	BoolByte BoolWidth = 1

	// BoolWord encodes booleans as a 16-bit integer 0/1.
	BoolWord BoolWidth = 2

	// BoolDword encodes booleans as a 32-bit integer 0/1.
	BoolDword BoolWidth = 4
)

// Valid reports whether the width is one of the supported widths.
func (w BoolWidth) Valid() bool {
	return w == BoolByte || w == BoolWord || w == BoolDword
}

// String returns the width name.
func (w BoolWidth) String() string {
	switch w {
	case BoolByte:
		return "byte"
	case BoolWord:
		return "word"
	case BoolDword:
		return "dword"
	default:
		return "invalid"
	}
}

// ParseBoolWidth maps a width name ("byte", "word", "dword") to its
// BoolWidth.
func ParseBoolWidth(s string) (BoolWidth, error) {
	switch s {
	case "byte":
		return BoolByte, nil
	case "word":
		return BoolWord, nil
	case "dword":
		return BoolDword, nil
	default:
		return 0, fmt.Errorf("%w: bool width %q", ErrInvalidConfig, s)
	}
}

// ByteOrder selects the byte layout of multi-byte values.
type ByteOrder uint8

const (
	OrderInvalid ByteOrder = iota

	// OrderLittleEndian writes the least significant byte first.
	OrderLittleEndian

	// OrderBigEndian writes the most significant byte first.
	OrderBigEndian

	// OrderWordSwap lays 32- and 64-bit values out as 16-bit words from
	// least to most significant by increasing address, each word
	// big-endian. 8- and 16-bit values match OrderBigEndian. This is
	// the register order of many Modbus devices.
	OrderWordSwap
)

// Valid reports whether the order is one of the supported orders.
func (o ByteOrder) Valid() bool {
	return o > OrderInvalid && o <= OrderWordSwap
}

// String returns the order name.
func (o ByteOrder) String() string {
	switch o {
	case OrderLittleEndian:
		return "little"
	case OrderBigEndian:
		return "big"
	case OrderWordSwap:
		return "word-swap"
	default:
		return "invalid"
	}
}

// ParseByteOrder maps an order name ("little", "big", "word-swap") to
// its ByteOrder.
func ParseByteOrder(s string) (ByteOrder, error) {
	switch s {
	case "little":
		return OrderLittleEndian, nil
	case "big":
		return OrderBigEndian, nil
	case "word-swap":
		return OrderWordSwap, nil
	default:
		return OrderInvalid, fmt.Errorf("%w: byte order %q", ErrInvalidConfig, s)
	}
}

// Config fixes the deployment-dependent encoding choices of a schema.
// Config values are comparable and key the schema cache.
type Config struct {
	// BoolWidth is the encoded width of boolean fields.
	BoolWidth BoolWidth

	// ByteOrder is the byte layout of multi-byte values.
	ByteOrder ByteOrder
}

// DefaultConfig returns the common Modbus register configuration:
// word-swapped byte order and word-wide booleans.
func DefaultConfig() Config {
	return Config{BoolWidth: BoolWord, ByteOrder: OrderWordSwap}
}

// Validate checks that both configuration dimensions carry supported
// values.
func (c Config) Validate() error {
	if !c.BoolWidth.Valid() {
		return fmt.Errorf("%w: bool width %d", ErrInvalidConfig, c.BoolWidth)
	}
	if !c.ByteOrder.Valid() {
		return fmt.Errorf("%w: byte order %d", ErrInvalidConfig, c.ByteOrder)
	}
	return nil
}

// String returns the configuration as "order/boolwidth".
func (c Config) String() string {
	return c.ByteOrder.String() + "/" + c.BoolWidth.String()
}
