// Package transport moves register frames between codecs and devices.
//
// The transport layer provides:
//   - Client: a register-space transport abstraction
//   - ModbusClient: Modbus TCP and RTU holding registers
//   - MemoryClient: in-memory register space for tests and simulation
//   - Session: traffic-logged reads, writes, and batch commits
//   - Poller: periodic full-layout reads
//
// # Addressing
//
// The codec layer addresses everything in bytes. Each Client reports
// its transport unit (frame.UnitByte or frame.UnitRegister); read
// request counts are expressed in that unit, while start addresses
// stay byte-addressed. The Modbus client maps byte addresses onto
// 16-bit holding registers and therefore requires register-aligned
// addresses and payload lengths.
//
// # Sessions
//
// Session is the caller-facing surface. It binds a codec to a client
// and captures every read, write, batch merge, and lifecycle
// transition as a reglog event:
//
//	client, _ := transport.NewModbusTCP(transport.ModbusConfig{
//	    Address: "192.168.4.20:502",
//	    SlaveID: 1,
//	})
//	session, _ := transport.NewSession(transport.SessionConfig{
//	    Client: client,
//	    Codec:  c,
//	    Logger: trafficLog,
//	})
//	defer session.Close()
//
//	record, err := session.ReadAll(ctx)
//
// # Polling
//
// Poller reads the full layout span on a fixed interval and delivers
// decoded records to a callback. A poll that outlasts the interval
// causes the intervening ticks to be dropped rather than queued.
package transport
