package schema

// Key identifies a field within a layout. Keys are fixed at layout
// declaration and used for every lookup thereafter.
type Key string

// Field is one resolved field of a schema.
type Field struct {
	// Key is the field identifier.
	Key Key

	// Address is the absolute byte address of the field.
	Address uint16

	// Size is the encoded width in bytes.
	Size int

	// Kind is the value kind. Enumeration fields carry their
	// underlying integer kind here.
	Kind Kind

	// Enum marks fields declared as enumerations over an integer kind.
	Enum bool
}

// End returns the first byte address past the field. It is an int so
// that a field ending at the top of the 16-bit address space does not
// wrap.
func (f Field) End() int {
	return int(f.Address) + f.Size
}
