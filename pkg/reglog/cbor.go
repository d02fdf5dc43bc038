package reglog

import (
	"io"

	"github.com/fxamacker/cbor/v2"
)

// A trace file is a plain concatenation of CBOR maps, one per event,
// keyed by the integer tags declared on Event. Encoding is
// deterministic, so re-encoding a trace reproduces it byte for byte,
// and timestamps keep nanosecond precision across the round trip.
var (
	encMode = mustEncMode()
	decMode = mustDecMode()
)

func mustEncMode() cbor.EncMode {
	opts := cbor.CoreDetEncOptions()
	opts.Time = cbor.TimeRFC3339Nano
	mode, err := opts.EncMode()
	if err != nil {
		panic(err)
	}
	return mode
}

func mustDecMode() cbor.DecMode {
	// Lenient on input: traces written by newer versions may carry
	// keys this one does not know, and must still decode.
	mode, err := cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyQuiet,
		IndefLength: cbor.IndefLengthAllowed,
	}.DecMode()
	if err != nil {
		panic(err)
	}
	return mode
}

// Marshal encodes a single event in trace file form.
func Marshal(event Event) ([]byte, error) {
	return encMode.Marshal(event)
}

// Unmarshal decodes a single event from trace file form.
func Unmarshal(data []byte) (Event, error) {
	var event Event
	if err := decMode.Unmarshal(data, &event); err != nil {
		return Event{}, err
	}
	return event, nil
}

// NewEncoder returns an encoder that appends events to w.
func NewEncoder(w io.Writer) *cbor.Encoder {
	return encMode.NewEncoder(w)
}

// NewDecoder returns a decoder that reads consecutive events from r.
func NewDecoder(r io.Reader) *cbor.Decoder {
	return decMode.NewDecoder(r)
}
