package frame

import (
	"errors"
	"fmt"

	"github.com/regmap-proto/regmap-go/pkg/codec"
	"github.com/regmap-proto/regmap-go/pkg/schema"
)

// ErrInvalidUnit reports a transport unit outside the supported set.
var ErrInvalidUnit = errors.New("invalid transport unit")

// Builder derives write frames and read requests for one schema,
// delegating byte conversion to the schema's codec. A Builder is
// immutable and safe for concurrent use.
type Builder struct {
	codec *codec.Codec
	unit  Unit
}

// NewBuilder returns a Builder over a codec for a transport unit.
func NewBuilder(c *codec.Codec, unit Unit) (*Builder, error) {
	if !unit.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidUnit, unit)
	}
	return &Builder{codec: c, unit: unit}, nil
}

// Unit returns the transport unit the builder computes counts in.
func (b *Builder) Unit() Unit {
	return b.unit
}

// Schema returns the schema the builder serves.
func (b *Builder) Schema() *schema.Schema {
	return b.codec.Schema()
}

// WriteAll renders the whole record as one frame spanning the schema
// from its start address.
func (b *Builder) WriteAll(r *codec.Record) (Frame, error) {
	payload, err := b.codec.Encode(r)
	if err != nil {
		return Frame{}, err
	}
	return Frame{Start: b.Schema().StartAddress(), Payload: payload}, nil
}

// WriteField renders one field's value as a frame at the field's
// address.
func (b *Builder) WriteField(key schema.Key, v any) (Frame, error) {
	address, err := b.Schema().Address(key)
	if err != nil {
		return Frame{}, err
	}
	payload, err := b.codec.EncodeField(key, v)
	if err != nil {
		return Frame{}, err
	}
	return Frame{Start: address, Payload: payload}, nil
}

// WriteAt renders a single scalar as a frame at an explicit byte
// address, bypassing the schema's field table. The value's width
// follows its Go type under the schema's configuration.
func (b *Builder) WriteAt(address uint16, v any) (Frame, error) {
	payload, err := codec.EncodeScalar(b.Schema().Config(), v)
	if err != nil {
		return Frame{}, err
	}
	return Frame{Start: address, Payload: payload}, nil
}

// ReadAll covers the whole schema span.
func (b *Builder) ReadAll() ReadRequest {
	s := b.Schema()
	return ReadRequest{
		Start: s.StartAddress(),
		Count: b.unit.Count(s.TotalSize()),
	}
}

// ReadField covers a single field.
func (b *Builder) ReadField(key schema.Key) (ReadRequest, error) {
	f, err := b.Schema().Field(key)
	if err != nil {
		return ReadRequest{}, err
	}
	return ReadRequest{
		Start: f.Address,
		Count: b.unit.Count(f.Size),
	}, nil
}

// ReadAt passes an explicit start address and unit count through
// unvalidated.
func (b *Builder) ReadAt(address, count uint16) ReadRequest {
	return ReadRequest{Start: address, Count: count}
}
