package frame

import "fmt"

// Unit is the addressable increment of a transport.
type Unit int

const (
	// UnitByte addresses single bytes, as native point arrays do.
	UnitByte Unit = 1

	// UnitRegister addresses 2-byte registers, as Modbus holding
	// registers do.
	UnitRegister Unit = 2
)

// Valid reports whether the unit is supported.
func (u Unit) Valid() bool {
	return u == UnitByte || u == UnitRegister
}

// Bytes returns the unit width in bytes.
func (u Unit) Bytes() int {
	return int(u)
}

// Count returns the number of units covering size bytes, rounded up.
func (u Unit) Count(size int) uint16 {
	return uint16((size + int(u) - 1) / int(u))
}

// String returns the unit name.
func (u Unit) String() string {
	switch u {
	case UnitByte:
		return "byte"
	case UnitRegister:
		return "register"
	default:
		return "invalid"
	}
}

// ParseUnit maps a unit name ("byte", "register") to its Unit.
func ParseUnit(s string) (Unit, error) {
	switch s {
	case "byte":
		return UnitByte, nil
	case "register":
		return UnitRegister, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidUnit, s)
	}
}

// Frame is one write operation: a payload placed at a start byte
// address. Frames are produced complete and never modified afterwards.
type Frame struct {
	// Start is the byte address the payload is written at.
	Start uint16

	// Payload is the encoded bytes.
	Payload []byte
}

// Len returns the payload length in bytes.
func (f Frame) Len() int {
	return len(f.Payload)
}

// End returns the first byte address past the payload.
func (f Frame) End() int {
	return int(f.Start) + len(f.Payload)
}

// String returns a short description for logs.
func (f Frame) String() string {
	return fmt.Sprintf("frame start=%d len=%d", f.Start, len(f.Payload))
}

// ReadRequest is one read operation: a count of addressable units from
// a start byte address.
type ReadRequest struct {
	// Start is the byte address the read begins at.
	Start uint16

	// Count is the read length in transport units, not bytes.
	Count uint16
}

// Bytes returns the read length in bytes under a unit.
func (r ReadRequest) Bytes(u Unit) int {
	return int(r.Count) * u.Bytes()
}

// String returns a short description for logs.
func (r ReadRequest) String() string {
	return fmt.Sprintf("read start=%d count=%d", r.Start, r.Count)
}
