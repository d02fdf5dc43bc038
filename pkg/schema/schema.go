package schema

import (
	"errors"
	"fmt"
)

// ErrUnknownField reports a field key not present in a schema.
var ErrUnknownField = errors.New("field not present in schema")

// Schema is the resolved address layout of one protocol layout under
// one configuration: the declared fields sorted by address, the start
// address, and the total byte span. A Schema is immutable after
// construction and safe for unsynchronized concurrent readers.
type Schema struct {
	name   string
	cfg    Config
	start  uint16
	size   int
	fields []Field
	byKey  map[Key]int
	byAddr map[uint16]int
}

// Name returns the layout name the schema was resolved from.
func (s *Schema) Name() string {
	return s.name
}

// Config returns the configuration the schema was resolved under.
func (s *Schema) Config() Config {
	return s.cfg
}

// StartAddress returns the lowest declared byte address.
func (s *Schema) StartAddress() uint16 {
	return s.start
}

// TotalSize returns the byte span from the start address to the end of
// the highest field, gaps included.
func (s *Schema) TotalSize() int {
	return s.size
}

// Len returns the number of fields.
func (s *Schema) Len() int {
	return len(s.fields)
}

// Fields returns a copy of the fields in ascending address order.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Field looks a field up by key.
func (s *Schema) Field(key Key) (Field, error) {
	i, ok := s.byKey[key]
	if !ok {
		return Field{}, fmt.Errorf("%w: %q", ErrUnknownField, key)
	}
	return s.fields[i], nil
}

// FieldAt looks a field up by its declared address.
func (s *Schema) FieldAt(address uint16) (Field, bool) {
	i, ok := s.byAddr[address]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// Address returns the byte address of a field.
func (s *Schema) Address(key Key) (uint16, error) {
	f, err := s.Field(key)
	if err != nil {
		return 0, err
	}
	return f.Address, nil
}

// Offset returns the byte offset of a field from the start address.
func (s *Schema) Offset(key Key) (int, error) {
	f, err := s.Field(key)
	if err != nil {
		return 0, err
	}
	return int(f.Address - s.start), nil
}
