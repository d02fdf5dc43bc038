package transport

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/goburrow/modbus"

	"github.com/regmap-proto/regmap-go/pkg/frame"
)

// Modbus defaults.
const (
	// DefaultModbusTimeout bounds each request/response exchange.
	DefaultModbusTimeout = 5 * time.Second

	// Serial line defaults for RTU (Modbus spec defaults).
	DefaultBaudRate = 19200
	DefaultDataBits = 8
	DefaultParity   = "E"
	DefaultStopBits = 1
)

// ModbusConfig configures a Modbus client.
type ModbusConfig struct {
	// Address is "host:port" for TCP or a serial device path for RTU.
	Address string

	// SlaveID is the Modbus unit identifier.
	SlaveID byte

	// Timeout bounds each request/response exchange (default: 5s).
	Timeout time.Duration

	// Serial line settings, RTU only. Zero values take the Modbus
	// spec defaults (19200 8E1).
	BaudRate int
	DataBits int
	Parity   string
	StopBits int
}

// ModbusClient maps the byte-addressed register space onto Modbus
// holding registers. Each register holds two bytes, so byte addresses
// and payload lengths must be register aligned.
//
// Request deadlines come from the handler timeout configured at
// construction; the context is checked before each exchange.
type ModbusClient struct {
	handler modbusHandler
	client  modbus.Client
	addr    string

	mu     sync.Mutex
	closed bool
}

// modbusHandler is the common surface of the goburrow handler types.
type modbusHandler interface {
	Connect() error
	Close() error
}

// NewModbusTCP connects to a Modbus TCP device.
func NewModbusTCP(cfg ModbusConfig) (*ModbusClient, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("modbus: address is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultModbusTimeout
	}

	handler := modbus.NewTCPClientHandler(cfg.Address)
	handler.Timeout = cfg.Timeout
	handler.SlaveId = cfg.SlaveID

	if err := handler.Connect(); err != nil {
		return nil, fmt.Errorf("modbus: connect %s: %w", cfg.Address, err)
	}

	return &ModbusClient{
		handler: handler,
		client:  modbus.NewClient(handler),
		addr:    cfg.Address,
	}, nil
}

// NewModbusRTU opens a serial Modbus RTU device.
func NewModbusRTU(cfg ModbusConfig) (*ModbusClient, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("modbus: serial device path is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultModbusTimeout
	}
	if cfg.BaudRate == 0 {
		cfg.BaudRate = DefaultBaudRate
	}
	if cfg.DataBits == 0 {
		cfg.DataBits = DefaultDataBits
	}
	if cfg.Parity == "" {
		cfg.Parity = DefaultParity
	}
	if cfg.StopBits == 0 {
		cfg.StopBits = DefaultStopBits
	}

	handler := modbus.NewRTUClientHandler(cfg.Address)
	handler.BaudRate = cfg.BaudRate
	handler.DataBits = cfg.DataBits
	handler.Parity = cfg.Parity
	handler.StopBits = cfg.StopBits
	handler.SlaveId = cfg.SlaveID
	handler.Timeout = cfg.Timeout

	if err := handler.Connect(); err != nil {
		return nil, fmt.Errorf("modbus: open %s: %w", cfg.Address, err)
	}

	return &ModbusClient{
		handler: handler,
		client:  modbus.NewClient(handler),
		addr:    cfg.Address,
	}, nil
}

// ReadRegion reads count registers starting at the request's byte address.
func (c *ModbusClient) ReadRegion(ctx context.Context, req frame.ReadRequest) ([]byte, error) {
	if req.Start%2 != 0 {
		return nil, fmt.Errorf("%w: byte address %d is not register aligned", ErrUnaligned, req.Start)
	}
	if err := c.ready(ctx); err != nil {
		return nil, err
	}

	data, err := c.client.ReadHoldingRegisters(req.Start/2, req.Count)
	if err != nil {
		return nil, fmt.Errorf("modbus: read %d registers at %d: %w", req.Count, req.Start/2, err)
	}
	return data, nil
}

// WriteRegion writes the frame's payload as holding registers.
func (c *ModbusClient) WriteRegion(ctx context.Context, f frame.Frame) error {
	if f.Start%2 != 0 || f.Len()%2 != 0 {
		return fmt.Errorf("%w: frame at byte %d with %d bytes", ErrUnaligned, f.Start, f.Len())
	}
	if err := c.ready(ctx); err != nil {
		return err
	}

	quantity := uint16(f.Len() / 2)
	if _, err := c.client.WriteMultipleRegisters(f.Start/2, quantity, f.Payload); err != nil {
		return fmt.Errorf("modbus: write %d registers at %d: %w", quantity, f.Start/2, err)
	}
	return nil
}

// ready checks the context and the closed flag before an exchange.
func (c *ModbusClient) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClientClosed
	}
	return nil
}

// Unit returns frame.UnitRegister.
func (c *ModbusClient) Unit() frame.Unit {
	return frame.UnitRegister
}

// RemoteAddr returns the configured device endpoint.
func (c *ModbusClient) RemoteAddr() string {
	return c.addr
}

// Close closes the underlying connection.
// It is safe to call Close multiple times.
func (c *ModbusClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	return c.handler.Close()
}
