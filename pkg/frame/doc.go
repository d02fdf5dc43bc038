// Package frame produces the write and read descriptors a transport
// executes against a register map.
//
// A Frame pairs a start byte address with the payload to place there;
// a ReadRequest pairs a start byte address with a count of addressable
// units. The Builder derives both from a schema-bound codec, either
// for the whole layout or for single fields:
//
//	fb, _ := frame.NewBuilder(cdc, frame.UnitRegister)
//	wf, _ := fb.WriteField("power", int32(1500))
//	rr := fb.ReadAll()
//
// Descriptors carry byte addresses; a register-oriented transport
// divides by its unit width when issuing the wire operation. Read
// counts are already expressed in transport units, rounded up to cover
// the requested bytes.
package frame
