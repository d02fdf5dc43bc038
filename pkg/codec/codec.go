package codec

import (
	"errors"
	"fmt"

	"github.com/regmap-proto/regmap-go/pkg/schema"
)

// ErrSchemaMismatch reports a record passed to a codec built for a
// different schema.
var ErrSchemaMismatch = errors.New("record belongs to a different schema")

// fieldOp is one step of the precompiled conversion program.
type fieldOp struct {
	key    schema.Key
	kind   schema.Kind
	offset int
	size   int
	put    putFunc
	get    getFunc
}

// Codec converts between Records and the byte image of their schema.
// Each field's conversion functions are selected once at construction;
// Encode and Decode walk the resulting program without further type
// dispatch. A Codec is immutable and safe for concurrent use.
type Codec struct {
	schema *schema.Schema
	prog   []fieldOp
	index  map[schema.Key]int
}

// New builds the codec for a resolved schema.
func New(s *schema.Schema) (*Codec, error) {
	fields := s.Fields()
	prog := make([]fieldOp, 0, len(fields))
	index := make(map[schema.Key]int, len(fields))
	for _, f := range fields {
		ops, err := opsFor(f.Kind, s.Config())
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Key, err)
		}
		index[f.Key] = len(prog)
		prog = append(prog, fieldOp{
			key:    f.Key,
			kind:   f.Kind,
			offset: int(f.Address - s.StartAddress()),
			size:   ops.size,
			put:    ops.put,
			get:    ops.get,
		})
	}
	return &Codec{schema: s, prog: prog, index: index}, nil
}

// Schema returns the schema the codec was built for.
func (c *Codec) Schema() *schema.Schema {
	return c.schema
}

// Encode renders a record as the full byte image of its schema, from
// the start address over the total size. Unset fields and gaps between
// fields encode as zero bytes.
func (c *Codec) Encode(r *Record) ([]byte, error) {
	if r.schema != c.schema {
		return nil, ErrSchemaMismatch
	}
	buf := make([]byte, c.schema.TotalSize())
	for _, op := range c.prog {
		op.put(buf[op.offset:op.offset+op.size], r.bits[op.key])
	}
	return buf, nil
}

// Decode parses a byte image into a new record. The buffer must cover
// the schema's total size. All fields parse before the record is
// constructed; no partially populated record is ever returned.
func (c *Codec) Decode(buf []byte) (*Record, error) {
	if len(buf) < c.schema.TotalSize() {
		return nil, fmt.Errorf("%w: have %d bytes, need %d",
			ErrShortBuffer, len(buf), c.schema.TotalSize())
	}
	bits := make(map[schema.Key]uint64, len(c.prog))
	for _, op := range c.prog {
		bits[op.key] = op.get(buf[op.offset : op.offset+op.size])
	}
	return &Record{schema: c.schema, bits: bits}, nil
}

// EncodeField encodes one field's value at the field's width.
func (c *Codec) EncodeField(key schema.Key, v any) ([]byte, error) {
	op, err := c.op(key)
	if err != nil {
		return nil, err
	}
	bits, err := bitsOf(op.kind, v)
	if err != nil {
		return nil, fmt.Errorf("field %q: %w", key, err)
	}
	buf := make([]byte, op.size)
	op.put(buf, bits)
	return buf, nil
}

// DecodeField decodes one field's typed value from the leading bytes
// of buf.
func (c *Codec) DecodeField(key schema.Key, buf []byte) (any, error) {
	op, err := c.op(key)
	if err != nil {
		return nil, err
	}
	if len(buf) < op.size {
		return nil, fmt.Errorf("%w: field %q needs %d bytes, have %d",
			ErrShortBuffer, key, op.size, len(buf))
	}
	return valueOf(op.kind, op.get(buf[:op.size])), nil
}

func (c *Codec) op(key schema.Key) (fieldOp, error) {
	i, ok := c.index[key]
	if !ok {
		return fieldOp{}, fmt.Errorf("%w: %q", schema.ErrUnknownField, key)
	}
	return c.prog[i], nil
}
