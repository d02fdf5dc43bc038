package reglog

import (
	"time"
)

// Event represents a traffic log event captured at any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID uniquely identifies the session (UUID).
	SessionID string `cbor:"2,keyasint"`

	// Direction indicates traffic flow.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// RemoteAddr is the device endpoint (IP:port or serial port path).
	RemoteAddr string `cbor:"6,keyasint,omitempty"`

	// Layout is the register layout name in use.
	Layout string `cbor:"7,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Write       *WriteEvent       `cbor:"10,keyasint,omitempty"` // Frame written to device
	Read        *ReadEvent        `cbor:"11,keyasint,omitempty"` // Region read from device
	Merge       *MergeEvent       `cbor:"12,keyasint,omitempty"` // Batch commit summary
	StateChange *StateChangeEvent `cbor:"13,keyasint,omitempty"` // Session/poller state
	Error       *ErrorEventData   `cbor:"14,keyasint,omitempty"` // Errors at any layer
}

// Direction indicates the direction of traffic flow.
type Direction uint8

const (
	// DirectionIn indicates data received from the device.
	DirectionIn Direction = 0
	// DirectionOut indicates data sent to the device.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which layer of the stack captured the event.
type Layer uint8

const (
	// LayerTransport is the register transport (raw frames).
	LayerTransport Layer = 0
	// LayerBatch is the write-batching layer (merge summaries).
	LayerBatch Layer = 1
	// LayerSession is the session lifecycle layer.
	LayerSession Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerBatch:
		return "BATCH"
	case LayerSession:
		return "SESSION"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryWrite indicates a frame written to the device.
	CategoryWrite Category = 0
	// CategoryRead indicates a region read from the device.
	CategoryRead Category = 1
	// CategoryMerge indicates a batch commit summary.
	CategoryMerge Category = 2
	// CategoryState indicates a state change.
	CategoryState Category = 3
	// CategoryError indicates an error event.
	CategoryError Category = 4
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryWrite:
		return "WRITE"
	case CategoryRead:
		return "READ"
	case CategoryMerge:
		return "MERGE"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// WriteEvent captures a frame written to the device.
type WriteEvent struct {
	// Address is the starting byte address of the frame.
	Address uint16 `cbor:"1,keyasint"`

	// Size is the payload size in bytes (before truncation).
	Size int `cbor:"2,keyasint"`

	// Data is the payload bytes (may be truncated for large frames).
	Data []byte `cbor:"3,keyasint,omitempty"`

	// Truncated indicates if Data was truncated.
	Truncated bool `cbor:"4,keyasint,omitempty"`
}

// ReadEvent captures a region read from the device.
type ReadEvent struct {
	// Address is the starting byte address of the request.
	Address uint16 `cbor:"1,keyasint"`

	// Count is the requested length in transport units.
	Count uint16 `cbor:"2,keyasint"`

	// Size is the response size in bytes (before truncation).
	Size int `cbor:"3,keyasint"`

	// Data is the response bytes (may be truncated for large reads).
	Data []byte `cbor:"4,keyasint,omitempty"`

	// Truncated indicates if Data was truncated.
	Truncated bool `cbor:"5,keyasint,omitempty"`
}

// MergeEvent summarizes a batch commit.
type MergeEvent struct {
	// Pending is the number of buffered field writes before merging.
	Pending int `cbor:"1,keyasint"`

	// Frames is the number of frames produced.
	Frames int `cbor:"2,keyasint"`

	// Bytes is the total payload size across all frames.
	Bytes int `cbor:"3,keyasint"`

	// Optimized indicates whether adjacent writes were merged.
	Optimized bool `cbor:"4,keyasint,omitempty"`
}

// StateChangeEvent captures session and poller lifecycle events.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"4,keyasint,omitempty"`
}

// StateEntity indicates what entity changed state.
type StateEntity uint8

const (
	// StateEntitySession indicates a session state change.
	StateEntitySession StateEntity = 0
	// StateEntityPoller indicates a poller state change.
	StateEntityPoller StateEntity = 1
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntitySession:
		return "SESSION"
	case StateEntityPoller:
		return "POLLER"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Code is the device exception code (if applicable).
	Code *int `cbor:"3,keyasint,omitempty"`

	// Context describes what operation was being performed.
	Context string `cbor:"4,keyasint,omitempty"`
}
