package codec

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/regmap-proto/regmap-go/pkg/schema"
)

// ErrShortBuffer reports a decode buffer shorter than the bytes a
// field or image requires.
var ErrShortBuffer = errors.New("buffer too short")

// putFunc writes the canonical bits of a value into b. b holds exactly
// the field's encoded width.
type putFunc func(b []byte, bits uint64)

// getFunc reads the canonical bits of a value from b.
type getFunc func(b []byte) uint64

// kindOps is one row of the conversion table: the encoded width of a
// kind under a configuration, with its write and read functions.
type kindOps struct {
	size int
	put  putFunc
	get  getFunc
}

// opsFor selects the conversion row for a kind. Called once per field
// at codec construction, and per call on the schema-free scalar paths.
func opsFor(kind schema.Kind, cfg schema.Config) (kindOps, error) {
	if !cfg.ByteOrder.Valid() {
		return kindOps{}, fmt.Errorf("%w: byte order %d", schema.ErrInvalidConfig, cfg.ByteOrder)
	}
	size := kind.Size(cfg.BoolWidth)
	switch size {
	case 1:
		return kindOps{size: 1, put: put8, get: get8}, nil
	case 2:
		// 16-bit words carry no word order: big-endian and word-swap
		// coincide.
		if cfg.ByteOrder == schema.OrderLittleEndian {
			return kindOps{size: 2, put: put16le, get: get16le}, nil
		}
		return kindOps{size: 2, put: put16be, get: get16be}, nil
	case 4:
		switch cfg.ByteOrder {
		case schema.OrderLittleEndian:
			return kindOps{size: 4, put: put32le, get: get32le}, nil
		case schema.OrderBigEndian:
			return kindOps{size: 4, put: put32be, get: get32be}, nil
		default:
			return kindOps{size: 4, put: put32sw, get: get32sw}, nil
		}
	case 8:
		switch cfg.ByteOrder {
		case schema.OrderLittleEndian:
			return kindOps{size: 8, put: put64le, get: get64le}, nil
		case schema.OrderBigEndian:
			return kindOps{size: 8, put: put64be, get: get64be}, nil
		default:
			return kindOps{size: 8, put: put64sw, get: get64sw}, nil
		}
	default:
		return kindOps{}, fmt.Errorf("%w: %s", schema.ErrUnsupportedKind, kind)
	}
}

func put8(b []byte, bits uint64) { b[0] = byte(bits) }
func get8(b []byte) uint64       { return uint64(b[0]) }

func put16be(b []byte, bits uint64) { binary.BigEndian.PutUint16(b, uint16(bits)) }
func get16be(b []byte) uint64       { return uint64(binary.BigEndian.Uint16(b)) }

func put16le(b []byte, bits uint64) { binary.LittleEndian.PutUint16(b, uint16(bits)) }
func get16le(b []byte) uint64       { return uint64(binary.LittleEndian.Uint16(b)) }

func put32be(b []byte, bits uint64) { binary.BigEndian.PutUint32(b, uint32(bits)) }
func get32be(b []byte) uint64       { return uint64(binary.BigEndian.Uint32(b)) }

func put32le(b []byte, bits uint64) { binary.LittleEndian.PutUint32(b, uint32(bits)) }
func get32le(b []byte) uint64       { return uint64(binary.LittleEndian.Uint32(b)) }

// put32sw writes the low 16-bit word at b[0:2] and the high word at
// b[2:4], each big-endian.
func put32sw(b []byte, bits uint64) {
	v := uint32(bits)
	binary.BigEndian.PutUint16(b[0:2], uint16(v))
	binary.BigEndian.PutUint16(b[2:4], uint16(v>>16))
}

func get32sw(b []byte) uint64 {
	low := uint32(binary.BigEndian.Uint16(b[0:2]))
	high := uint32(binary.BigEndian.Uint16(b[2:4]))
	return uint64(high<<16 | low)
}

func put64be(b []byte, bits uint64) { binary.BigEndian.PutUint64(b, bits) }
func get64be(b []byte) uint64       { return binary.BigEndian.Uint64(b) }

func put64le(b []byte, bits uint64) { binary.LittleEndian.PutUint64(b, bits) }
func get64le(b []byte) uint64       { return binary.LittleEndian.Uint64(b) }

// put64sw writes the four 16-bit words from least to most significant
// by increasing address, each big-endian.
func put64sw(b []byte, bits uint64) {
	binary.BigEndian.PutUint16(b[0:2], uint16(bits))
	binary.BigEndian.PutUint16(b[2:4], uint16(bits>>16))
	binary.BigEndian.PutUint16(b[4:6], uint16(bits>>32))
	binary.BigEndian.PutUint16(b[6:8], uint16(bits>>48))
}

func get64sw(b []byte) uint64 {
	w0 := uint64(binary.BigEndian.Uint16(b[0:2]))
	w1 := uint64(binary.BigEndian.Uint16(b[2:4]))
	w2 := uint64(binary.BigEndian.Uint16(b[4:6]))
	w3 := uint64(binary.BigEndian.Uint16(b[6:8]))
	return w3<<48 | w2<<32 | w1<<16 | w0
}
