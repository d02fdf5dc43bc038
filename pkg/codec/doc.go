// Package codec converts typed field values to and from the byte
// images of register layouts.
//
// # Records
//
// A Record holds the field values of one schema. Values are stored as
// canonical fixed-width bit patterns; Set and Value translate between
// Go types and those patterns, validating type and range on the way
// in:
//
//	rec := codec.NewRecord(sch)
//	rec.Set("power", int32(1500))
//	rec.Set("enabled", true)
//
// # Codecs
//
// A Codec binds a schema to its byte conversion. The write and read
// function of every field is selected once, at construction, from a
// table keyed by value kind and byte order; Encode and Decode walk
// that precompiled program without any per-call type inspection.
// Decode is all-or-nothing: a record is only produced after every
// field parsed.
//
// # Word order
//
// Under OrderWordSwap, 32- and 64-bit values are laid out as 16-bit
// words from least to most significant by increasing address, each
// word big-endian. Encoding 0x00010002 yields [0x00 0x02 0x00 0x01].
// 8- and 16-bit values are unaffected. Floats round-trip through
// their IEEE-754 bit patterns, enumerations through their underlying
// integer kind, and booleans through the configured width as the
// integer 0 or 1.
//
// # Single values
//
// EncodeScalar, DecodeScalar, and the generic EncodeValue and
// DecodeValue apply the same table to one value without a schema;
// EncodeField and DecodeField resolve the value kind of a named field
// through the schema first.
package codec
