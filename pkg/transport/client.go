package transport

import (
	"context"
	"errors"

	"github.com/regmap-proto/regmap-go/pkg/frame"
)

// Transport errors.
var (
	// ErrClientClosed indicates an operation on a closed client.
	ErrClientClosed = errors.New("transport: client closed")

	// ErrUnaligned indicates a byte address or payload length that does
	// not fall on a register boundary of the underlying transport.
	ErrUnaligned = errors.New("transport: unaligned access")
)

// Client is a register-space transport.
// Implemented by ModbusClient and MemoryClient.
type Client interface {
	// ReadRegion reads a contiguous region of the register space.
	// The request start is a byte address; the count is in the
	// transport's unit. The returned bytes are the raw wire image.
	ReadRegion(ctx context.Context, req frame.ReadRequest) ([]byte, error)

	// WriteRegion writes a frame's payload at its start address.
	WriteRegion(ctx context.Context, f frame.Frame) error

	// Unit returns the addressing unit of this transport.
	Unit() frame.Unit

	// RemoteAddr returns the device endpoint for diagnostics
	// (host:port, serial device path, or "memory").
	RemoteAddr() string

	// Close releases the underlying connection.
	Close() error
}

// Compile-time interface satisfaction checks.
var (
	_ Client = (*ModbusClient)(nil)
	_ Client = (*MemoryClient)(nil)
)
