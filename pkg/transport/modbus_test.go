package transport

import (
	"context"
	"errors"
	"testing"

	"github.com/regmap-proto/regmap-go/pkg/frame"
)

// fakeRegisterBank implements the goburrow client interface against an
// in-memory register bank, recording the addresses it was called with.
type fakeRegisterBank struct {
	registers map[uint16][]byte

	readAddr     uint16
	readQuantity uint16
	writeAddr    uint16
	writeCount   uint16
	writeData    []byte

	err error
}

func newFakeRegisterBank() *fakeRegisterBank {
	return &fakeRegisterBank{registers: make(map[uint16][]byte)}
}

func (f *fakeRegisterBank) ReadHoldingRegisters(address, quantity uint16) ([]byte, error) {
	f.readAddr = address
	f.readQuantity = quantity
	if f.err != nil {
		return nil, f.err
	}
	if data, ok := f.registers[address]; ok {
		return data, nil
	}
	return make([]byte, int(quantity)*2), nil
}

func (f *fakeRegisterBank) WriteMultipleRegisters(address, quantity uint16, value []byte) ([]byte, error) {
	f.writeAddr = address
	f.writeCount = quantity
	f.writeData = append([]byte(nil), value...)
	if f.err != nil {
		return nil, f.err
	}
	f.registers[address] = f.writeData
	return nil, nil
}

// Remaining goburrow client methods, unused by the adapter.
func (f *fakeRegisterBank) ReadCoils(address, quantity uint16) ([]byte, error) { return nil, nil }
func (f *fakeRegisterBank) ReadDiscreteInputs(address, quantity uint16) ([]byte, error) {
	return nil, nil
}
func (f *fakeRegisterBank) WriteSingleCoil(address, value uint16) ([]byte, error) { return nil, nil }
func (f *fakeRegisterBank) WriteMultipleCoils(address, quantity uint16, value []byte) ([]byte, error) {
	return nil, nil
}
func (f *fakeRegisterBank) ReadInputRegisters(address, quantity uint16) ([]byte, error) {
	return nil, nil
}
func (f *fakeRegisterBank) WriteSingleRegister(address, value uint16) ([]byte, error) {
	return nil, nil
}
func (f *fakeRegisterBank) ReadWriteMultipleRegisters(readAddress, readQuantity, writeAddress, writeQuantity uint16, value []byte) ([]byte, error) {
	return nil, nil
}
func (f *fakeRegisterBank) MaskWriteRegister(address, andMask, orMask uint16) ([]byte, error) {
	return nil, nil
}
func (f *fakeRegisterBank) ReadFIFOQueue(address uint16) ([]byte, error) { return nil, nil }

// fakeHandler counts Close calls.
type fakeHandler struct {
	closeCount int
}

func (h *fakeHandler) Connect() error { return nil }
func (h *fakeHandler) Close() error {
	h.closeCount++
	return nil
}

func newFakeModbusClient() (*ModbusClient, *fakeRegisterBank, *fakeHandler) {
	bank := newFakeRegisterBank()
	handler := &fakeHandler{}
	client := &ModbusClient{
		handler: handler,
		client:  bank,
		addr:    "192.0.2.1:502",
	}
	return client, bank, handler
}

func TestModbusReadRegionMapsByteAddresses(t *testing.T) {
	client, bank, _ := newFakeModbusClient()
	bank.registers[50] = []byte{0x00, 0x01, 0x00, 0x02}

	// Byte address 100 = register 50, count already in registers
	data, err := client.ReadRegion(context.Background(), frame.ReadRequest{Start: 100, Count: 2})
	if err != nil {
		t.Fatalf("ReadRegion failed: %v", err)
	}

	if bank.readAddr != 50 {
		t.Errorf("register address: got %d, want 50", bank.readAddr)
	}
	if bank.readQuantity != 2 {
		t.Errorf("quantity: got %d, want 2", bank.readQuantity)
	}
	if string(data) != string([]byte{0x00, 0x01, 0x00, 0x02}) {
		t.Errorf("data: got % X", data)
	}
}

func TestModbusReadRegionUnaligned(t *testing.T) {
	client, _, _ := newFakeModbusClient()

	_, err := client.ReadRegion(context.Background(), frame.ReadRequest{Start: 101, Count: 1})
	if !errors.Is(err, ErrUnaligned) {
		t.Errorf("odd byte address: got %v, want ErrUnaligned", err)
	}
}

func TestModbusWriteRegionMapsByteAddresses(t *testing.T) {
	client, bank, _ := newFakeModbusClient()

	payload := []byte{0x00, 0x01, 0x00, 0x00, 0x00, 0x02, 0x00, 0x00}
	err := client.WriteRegion(context.Background(), frame.Frame{Start: 200, Payload: payload})
	if err != nil {
		t.Fatalf("WriteRegion failed: %v", err)
	}

	if bank.writeAddr != 100 {
		t.Errorf("register address: got %d, want 100", bank.writeAddr)
	}
	if bank.writeCount != 4 {
		t.Errorf("quantity: got %d, want 4", bank.writeCount)
	}
	if string(bank.writeData) != string(payload) {
		t.Errorf("payload: got % X, want % X", bank.writeData, payload)
	}
}

func TestModbusWriteRegionUnaligned(t *testing.T) {
	client, _, _ := newFakeModbusClient()
	ctx := context.Background()

	// Odd start address
	err := client.WriteRegion(ctx, frame.Frame{Start: 101, Payload: []byte{1, 2}})
	if !errors.Is(err, ErrUnaligned) {
		t.Errorf("odd start: got %v, want ErrUnaligned", err)
	}

	// Odd payload length
	err = client.WriteRegion(ctx, frame.Frame{Start: 100, Payload: []byte{1, 2, 3}})
	if !errors.Is(err, ErrUnaligned) {
		t.Errorf("odd length: got %v, want ErrUnaligned", err)
	}
}

func TestModbusDeviceErrorWrapped(t *testing.T) {
	client, bank, _ := newFakeModbusClient()
	bank.err = errors.New("modbus: exception '2' (illegal data address)")

	_, err := client.ReadRegion(context.Background(), frame.ReadRequest{Start: 0, Count: 1})
	if !errors.Is(err, bank.err) {
		t.Errorf("device error not wrapped: got %v", err)
	}

	err = client.WriteRegion(context.Background(), frame.Frame{Start: 0, Payload: []byte{1, 2}})
	if !errors.Is(err, bank.err) {
		t.Errorf("device error not wrapped: got %v", err)
	}
}

func TestModbusClosed(t *testing.T) {
	client, _, handler := newFakeModbusClient()

	if err := client.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if handler.closeCount != 1 {
		t.Errorf("handler close count: got %d, want 1", handler.closeCount)
	}

	ctx := context.Background()
	if _, err := client.ReadRegion(ctx, frame.ReadRequest{Start: 0, Count: 1}); !errors.Is(err, ErrClientClosed) {
		t.Errorf("ReadRegion after close: got %v, want ErrClientClosed", err)
	}
	if err := client.WriteRegion(ctx, frame.Frame{Start: 0, Payload: []byte{1, 2}}); !errors.Is(err, ErrClientClosed) {
		t.Errorf("WriteRegion after close: got %v, want ErrClientClosed", err)
	}

	// Double close does not close the handler again
	if err := client.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
	if handler.closeCount != 1 {
		t.Errorf("handler close count after double close: got %d, want 1", handler.closeCount)
	}
}

func TestModbusContextCanceled(t *testing.T) {
	client, _, _ := newFakeModbusClient()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.ReadRegion(ctx, frame.ReadRequest{Start: 0, Count: 1}); !errors.Is(err, context.Canceled) {
		t.Errorf("ReadRegion with canceled context: got %v, want context.Canceled", err)
	}
}

func TestModbusIdentity(t *testing.T) {
	client, _, _ := newFakeModbusClient()

	if got := client.Unit(); got != frame.UnitRegister {
		t.Errorf("Unit: got %v, want %v", got, frame.UnitRegister)
	}
	if got := client.RemoteAddr(); got != "192.0.2.1:502" {
		t.Errorf("RemoteAddr: got %q, want %q", got, "192.0.2.1:502")
	}
}

func TestModbusConfigValidation(t *testing.T) {
	if _, err := NewModbusTCP(ModbusConfig{}); err == nil {
		t.Error("NewModbusTCP without address: expected error")
	}
	if _, err := NewModbusRTU(ModbusConfig{}); err == nil {
		t.Error("NewModbusRTU without device path: expected error")
	}
}
