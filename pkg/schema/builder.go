package schema

import (
	"errors"
	"fmt"
	"sort"
)

// ErrEmptyLayout reports a layout that declares no fields.
var ErrEmptyLayout = errors.New("layout declares no fields")

// Builder accumulates field declarations for one layout. Declaration
// methods chain; the first declaration error is retained and reported
// by Resolve.
//
// Declaring a key or an address twice replaces the earlier field. The
// last registration wins in the key table, the address table, and the
// resolved field order.
type Builder struct {
	name  string
	cfg   Config
	decls []decl
	err   error
}

type decl struct {
	key     Key
	address uint16
	kind    Kind
	enum    bool
}

// NewBuilder returns a Builder for the given configuration. The
// configuration is validated by Resolve, not here.
func NewBuilder(cfg Config) *Builder {
	return &Builder{cfg: cfg}
}

// Named sets the layout name carried into the resolved schema.
func (b *Builder) Named(name string) *Builder {
	b.name = name
	return b
}

// Bool declares a boolean field. Its encoded width follows the
// configuration's BoolWidth.
func (b *Builder) Bool(key Key, address uint16) *Builder {
	return b.add(key, address, KindBool, false)
}

// Int8 declares a signed 8-bit field.
func (b *Builder) Int8(key Key, address uint16) *Builder {
	return b.add(key, address, KindInt8, false)
}

// Int16 declares a signed 16-bit field.
func (b *Builder) Int16(key Key, address uint16) *Builder {
	return b.add(key, address, KindInt16, false)
}

// Int32 declares a signed 32-bit field.
func (b *Builder) Int32(key Key, address uint16) *Builder {
	return b.add(key, address, KindInt32, false)
}

// Int64 declares a signed 64-bit field.
func (b *Builder) Int64(key Key, address uint16) *Builder {
	return b.add(key, address, KindInt64, false)
}

// Uint8 declares an unsigned 8-bit field.
func (b *Builder) Uint8(key Key, address uint16) *Builder {
	return b.add(key, address, KindUint8, false)
}

// Uint16 declares an unsigned 16-bit field.
func (b *Builder) Uint16(key Key, address uint16) *Builder {
	return b.add(key, address, KindUint16, false)
}

// Uint32 declares an unsigned 32-bit field.
func (b *Builder) Uint32(key Key, address uint16) *Builder {
	return b.add(key, address, KindUint32, false)
}

// Uint64 declares an unsigned 64-bit field.
func (b *Builder) Uint64(key Key, address uint16) *Builder {
	return b.add(key, address, KindUint64, false)
}

// Float32 declares a 32-bit IEEE-754 field.
func (b *Builder) Float32(key Key, address uint16) *Builder {
	return b.add(key, address, KindFloat32, false)
}

// Float64 declares a 64-bit IEEE-754 field.
func (b *Builder) Float64(key Key, address uint16) *Builder {
	return b.add(key, address, KindFloat64, false)
}

// Enum declares an enumeration field encoded as its underlying integer
// kind.
func (b *Builder) Enum(key Key, address uint16, base Kind) *Builder {
	if !base.Integer() {
		b.fail(fmt.Errorf("%w: enum base %s for field %q", ErrUnsupportedKind, base, key))
		return b
	}
	return b.add(key, address, base, true)
}

// Field declares a field of an explicit kind. Enumeration fields must
// go through Enum.
func (b *Builder) Field(key Key, address uint16, kind Kind) *Builder {
	if !kind.Valid() {
		b.fail(fmt.Errorf("%w: %s for field %q", ErrUnsupportedKind, kind, key))
		return b
	}
	return b.add(key, address, kind, false)
}

func (b *Builder) add(key Key, address uint16, kind Kind, enum bool) *Builder {
	if key == "" {
		b.fail(fmt.Errorf("%w: empty field key at address %d", ErrInvalidConfig, address))
		return b
	}
	b.decls = append(b.decls, decl{key: key, address: address, kind: kind, enum: enum})
	return b
}

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Resolve validates the declarations and produces the immutable Schema.
func (b *Builder) Resolve() (*Schema, error) {
	if b.err != nil {
		return nil, b.err
	}
	if err := b.cfg.Validate(); err != nil {
		return nil, err
	}
	if len(b.decls) == 0 {
		return nil, ErrEmptyLayout
	}

	// Walk declarations newest-first so that the last registration of a
	// key or an address is the one kept.
	seenKey := make(map[Key]bool, len(b.decls))
	seenAddr := make(map[uint16]bool, len(b.decls))
	fields := make([]Field, 0, len(b.decls))
	for i := len(b.decls) - 1; i >= 0; i-- {
		d := b.decls[i]
		if seenKey[d.key] || seenAddr[d.address] {
			continue
		}
		seenKey[d.key] = true
		seenAddr[d.address] = true

		size := d.kind.Size(b.cfg.BoolWidth)
		if size == 0 {
			return nil, fmt.Errorf("%w: %s for field %q", ErrUnsupportedKind, d.kind, d.key)
		}
		if int(d.address)+size > 0x10000 {
			return nil, fmt.Errorf("%w: field %q ends past the 16-bit address space", ErrInvalidConfig, d.key)
		}
		fields = append(fields, Field{
			Key:     d.key,
			Address: d.address,
			Size:    size,
			Kind:    d.kind,
			Enum:    d.enum,
		})
	}

	sort.Slice(fields, func(i, j int) bool { return fields[i].Address < fields[j].Address })

	start := fields[0].Address
	end := fields[0].End()
	byKey := make(map[Key]int, len(fields))
	byAddr := make(map[uint16]int, len(fields))
	for i, f := range fields {
		if f.End() > end {
			end = f.End()
		}
		byKey[f.Key] = i
		byAddr[f.Address] = i
	}

	return &Schema{
		name:   b.name,
		cfg:    b.cfg,
		start:  start,
		size:   end - int(start),
		fields: fields,
		byKey:  byKey,
		byAddr: byAddr,
	}, nil
}
