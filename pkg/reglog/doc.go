// Package reglog captures register traffic as a structured event
// stream. Every frame write, region read, batch merge and lifecycle
// change in a session becomes one Event, so a device conversation can
// be replayed and inspected offline. This is distinct from operational
// logging: slog tells you what the program did, a trace tells you what
// went over the wire.
//
// Capture is wired through transport.SessionConfig:
//
//	trace, err := reglog.NewFileLogger("meter.rlog")
//	if err != nil {
//		return err
//	}
//	defer trace.Close()
//
//	session, err := transport.NewSession(transport.SessionConfig{
//		Client: client,
//		Codec:  c,
//		Logger: reglog.NewMultiLogger(trace, reglog.NewSlogAdapter(slog.Default())),
//	})
//
// Trace files hold CBOR events with integer keys, conventionally named
// *.rlog. Reader streams them back, optionally through a Filter, and
// the regmap-log command renders, filters and exports them.
package reglog
