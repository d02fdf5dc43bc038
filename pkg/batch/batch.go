package batch

import (
	"errors"
	"sort"

	"github.com/regmap-proto/regmap-go/pkg/codec"
	"github.com/regmap-proto/regmap-go/pkg/frame"
	"github.com/regmap-proto/regmap-go/pkg/schema"
)

// ErrNothingToCommit reports a commit over an empty batch. Build and
// BuildOptimized simply yield no frames; the error belongs to the
// caller-facing commit surface.
var ErrNothingToCommit = errors.New("no pending writes to commit")

// Batch buffers pending field writes keyed by byte address. Scheduling
// the same address again replaces the earlier payload.
type Batch struct {
	codec   *codec.Codec
	entries map[uint16][]byte
}

// New returns an empty batch over a schema-bound codec.
func New(c *codec.Codec) *Batch {
	return &Batch{
		codec:   c,
		entries: make(map[uint16][]byte),
	}
}

// Schema returns the schema the batch encodes against.
func (b *Batch) Schema() *schema.Schema {
	return b.codec.Schema()
}

// Set schedules a write to a named field. The value is encoded
// immediately; a later Set to the same field or address wins.
func (b *Batch) Set(key schema.Key, v any) error {
	address, err := b.Schema().Address(key)
	if err != nil {
		return err
	}
	payload, err := b.codec.EncodeField(key, v)
	if err != nil {
		return err
	}
	b.entries[address] = payload
	return nil
}

// SetAt schedules a scalar write at an explicit byte address,
// bypassing the field table. The value's width follows its Go type
// under the schema's configuration.
func (b *Batch) SetAt(address uint16, v any) error {
	payload, err := codec.EncodeScalar(b.Schema().Config(), v)
	if err != nil {
		return err
	}
	b.entries[address] = payload
	return nil
}

// Len returns the number of pending writes.
func (b *Batch) Len() int {
	return len(b.entries)
}

// Clear discards every pending write.
func (b *Batch) Clear() {
	b.entries = make(map[uint16][]byte)
}

// Build produces one frame per pending write, in no particular order.
// An empty batch yields nil.
func (b *Batch) Build() []frame.Frame {
	if len(b.entries) == 0 {
		return nil
	}
	frames := make([]frame.Frame, 0, len(b.entries))
	for address, payload := range b.entries {
		frames = append(frames, frame.Frame{Start: address, Payload: payload})
	}
	return frames
}

// BuildOptimized produces frames with exactly adjacent writes merged.
// Pending writes are scanned in ascending address order; a write
// starting exactly where the current run ends extends the run, any
// other write flushes the run and starts a new one. An empty batch
// yields nil.
func (b *Batch) BuildOptimized() []frame.Frame {
	if len(b.entries) == 0 {
		return nil
	}

	addresses := make([]uint16, 0, len(b.entries))
	for address := range b.entries {
		addresses = append(addresses, address)
	}
	sort.Slice(addresses, func(i, j int) bool { return addresses[i] < addresses[j] })

	var frames []frame.Frame
	run := frame.Frame{
		Start:   addresses[0],
		Payload: append([]byte(nil), b.entries[addresses[0]]...),
	}
	for _, address := range addresses[1:] {
		payload := b.entries[address]
		if int(address) == run.End() {
			run.Payload = append(run.Payload, payload...)
			continue
		}
		frames = append(frames, run)
		run = frame.Frame{
			Start:   address,
			Payload: append([]byte(nil), payload...),
		}
	}
	return append(frames, run)
}
