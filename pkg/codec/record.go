package codec

import (
	"github.com/regmap-proto/regmap-go/pkg/schema"
)

// Record holds typed field values for one schema, keyed by field key.
// Values live as canonical bit patterns; Set and Value translate at
// the boundary. Fields never set read back as their kind's zero value,
// which is also how Encode renders them.
//
// A Record is per-call, mutable state and not safe for concurrent use.
type Record struct {
	schema *schema.Schema
	bits   map[schema.Key]uint64
}

// NewRecord returns an empty record for a schema.
func NewRecord(s *schema.Schema) *Record {
	return &Record{
		schema: s,
		bits:   make(map[schema.Key]uint64, s.Len()),
	}
}

// Schema returns the schema the record belongs to.
func (r *Record) Schema() *schema.Schema {
	return r.schema
}

// Set stores a field value. The value must match the field's kind:
// bool for boolean fields, any Go integer inside the kind's domain for
// integer and enumeration fields, any Go number for float fields.
func (r *Record) Set(key schema.Key, v any) error {
	f, err := r.schema.Field(key)
	if err != nil {
		return err
	}
	bits, err := bitsOf(f.Kind, v)
	if err != nil {
		return err
	}
	r.bits[key] = bits
	return nil
}

// Value returns a field's typed value: int16 fields yield int16, and
// so on. Unset fields yield the kind's zero value.
func (r *Record) Value(key schema.Key) (any, error) {
	f, err := r.schema.Field(key)
	if err != nil {
		return nil, err
	}
	return valueOf(f.Kind, r.bits[key]), nil
}

// Has reports whether the field has been set since construction or the
// last Clear.
func (r *Record) Has(key schema.Key) bool {
	_, ok := r.bits[key]
	return ok
}

// Keys returns the set fields in schema address order.
func (r *Record) Keys() []schema.Key {
	out := make([]schema.Key, 0, len(r.bits))
	for _, f := range r.schema.Fields() {
		if r.Has(f.Key) {
			out = append(out, f.Key)
		}
	}
	return out
}

// Len returns the number of set fields.
func (r *Record) Len() int {
	return len(r.bits)
}

// Clear unsets every field.
func (r *Record) Clear() {
	r.bits = make(map[schema.Key]uint64, r.schema.Len())
}
