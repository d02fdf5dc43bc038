package transport

import (
	"context"
	"fmt"
	"sync"

	"github.com/regmap-proto/regmap-go/pkg/frame"
)

// MemorySize is the simulated register space size: the full 16-bit
// byte address range.
const MemorySize = 0x10000

// MemoryClient is an in-memory register space. It backs unit tests and
// the CLI's simulation mode, where no device is on the other end.
//
// Reads and writes move raw bytes; the memory image has no notion of
// fields or byte order. Safe for concurrent use.
type MemoryClient struct {
	unit frame.Unit

	mu     sync.RWMutex
	mem    []byte
	closed bool
}

// NewMemoryClient creates a simulated register space addressed in the
// given unit.
func NewMemoryClient(unit frame.Unit) (*MemoryClient, error) {
	if !unit.Valid() {
		return nil, fmt.Errorf("%w: %d", frame.ErrInvalidUnit, unit)
	}
	return &MemoryClient{
		unit: unit,
		mem:  make([]byte, MemorySize),
	}, nil
}

// ReadRegion returns a copy of the requested region.
func (c *MemoryClient) ReadRegion(ctx context.Context, req frame.ReadRequest) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil, ErrClientClosed
	}

	start := int(req.Start)
	n := req.Bytes(c.unit)
	if start+n > MemorySize {
		return nil, fmt.Errorf("memory: read [%d, %d) outside register space", start, start+n)
	}

	out := make([]byte, n)
	copy(out, c.mem[start:start+n])
	return out, nil
}

// WriteRegion copies the frame's payload into the register space.
func (c *MemoryClient) WriteRegion(ctx context.Context, f frame.Frame) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClientClosed
	}

	start := int(f.Start)
	if start+f.Len() > MemorySize {
		return fmt.Errorf("memory: write [%d, %d) outside register space", start, start+f.Len())
	}

	copy(c.mem[start:], f.Payload)
	return nil
}

// Preload seeds the register space directly, bypassing the write path.
// Data extending past the end of the space is dropped.
func (c *MemoryClient) Preload(address uint16, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	copy(c.mem[int(address):], data)
}

// Bytes returns a copy of n bytes at address, for assertions.
func (c *MemoryClient) Bytes(address uint16, n int) []byte {
	c.mu.RLock()
	defer c.mu.RUnlock()

	end := int(address) + n
	if end > MemorySize {
		end = MemorySize
	}
	out := make([]byte, end-int(address))
	copy(out, c.mem[int(address):end])
	return out
}

// Unit returns the addressing unit configured at construction.
func (c *MemoryClient) Unit() frame.Unit {
	return c.unit
}

// RemoteAddr returns "memory".
func (c *MemoryClient) RemoteAddr() string {
	return "memory"
}

// Close marks the client closed. Subsequent reads and writes fail with
// ErrClientClosed.
func (c *MemoryClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}
