// Package schema resolves declarative register layouts into immutable
// address tables.
//
// # Layouts
//
// A protocol layout declares its fields ahead of time as (key, address)
// pairs with a value kind, either through the chainable Builder or by
// implementing the Layout interface:
//
//	type inverter struct{}
//
//	func (inverter) Name() string { return "inverter" }
//
//	func (inverter) Declare(b *schema.Builder) {
//	    b.Uint16("status", 0).
//	        Int32("power", 2).
//	        Bool("enabled", 6)
//	}
//
// Resolving a layout under a configuration produces a Schema: the
// fields sorted by address, each with its encoded size, plus the
// layout's start address and total byte span. Addresses are byte
// addresses; conversion to transport units (for example 2-byte Modbus
// registers) happens at the frame and transport layers.
//
// # Configuration
//
// A Config fixes the two deployment-dependent encoding choices: the
// width of boolean fields (1, 2, or 4 bytes) and the byte order of
// multi-byte values (little-endian, big-endian, or the register
// word-swap order used by many Modbus devices).
//
// # Caching
//
// Resolve caches schemas by (layout name, configuration) for the
// lifetime of the process. A resolved Schema is never mutated and is
// safe for unsynchronized concurrent readers.
//
// # Duplicate declarations
//
// Declaring a key or an address twice does not fail: the later
// registration replaces the earlier one in the key table, the address
// table, and the field order.
package schema
