package reglog

// Logger receives traffic events from the layers of a session. Log is
// called inline on the register I/O path, so implementations must be
// safe for concurrent use and should hand events off quickly.
type Logger interface {
	Log(event Event)
}

// Discard is a Logger all events vanish into. It stands in wherever no
// traffic capture is configured.
var Discard Logger = discard{}

type discard struct{}

func (discard) Log(Event) {}

// MultiLogger fans each event out to every logger in order. The usual
// pairing is a FileLogger for the durable trace plus a SlogAdapter for
// a live console view.
type MultiLogger []Logger

// NewMultiLogger combines loggers into one.
func NewMultiLogger(loggers ...Logger) MultiLogger {
	return MultiLogger(loggers)
}

// Log forwards the event to every logger.
func (m MultiLogger) Log(event Event) {
	for _, l := range m {
		l.Log(event)
	}
}

var _ Logger = MultiLogger(nil)
