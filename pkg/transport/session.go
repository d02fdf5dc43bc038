package transport

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/regmap-proto/regmap-go/pkg/batch"
	"github.com/regmap-proto/regmap-go/pkg/codec"
	"github.com/regmap-proto/regmap-go/pkg/frame"
	"github.com/regmap-proto/regmap-go/pkg/reglog"
	"github.com/regmap-proto/regmap-go/pkg/schema"
)

// MaxLogDataSize is the maximum payload size to include in traffic log
// events (4 KB). Larger payloads are truncated in log events to avoid
// excessive memory usage.
const MaxLogDataSize = 4096

// SessionConfig configures a Session.
type SessionConfig struct {
	// Client is the register transport (required).
	Client Client

	// Codec translates records for the session's layout (required).
	Codec *codec.Codec

	// Logger receives traffic events. Defaults to reglog.Discard.
	Logger reglog.Logger
}

// Session binds a codec to a transport client and captures all
// register traffic as reglog events. Safe for concurrent use.
type Session struct {
	id      string
	client  Client
	codec   *codec.Codec
	builder *frame.Builder
	logger  reglog.Logger

	closeOnce sync.Once
	closeErr  error
}

// NewSession creates a session over the given client and codec.
// The session takes ownership of the client: closing the session
// closes the client.
func NewSession(cfg SessionConfig) (*Session, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("session: client is required")
	}
	if cfg.Codec == nil {
		return nil, fmt.Errorf("session: codec is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = reglog.Discard
	}

	builder, err := frame.NewBuilder(cfg.Codec, cfg.Client.Unit())
	if err != nil {
		return nil, err
	}

	s := &Session{
		id:      uuid.NewString(),
		client:  cfg.Client,
		codec:   cfg.Codec,
		builder: builder,
		logger:  logger,
	}

	s.logState(reglog.StateEntitySession, "", "open", "")
	return s, nil
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// Schema returns the layout this session reads and writes.
func (s *Session) Schema() *schema.Schema {
	return s.codec.Schema()
}

// Client returns the underlying transport client.
func (s *Session) Client() Client {
	return s.client
}

// ReadAll fetches the layout's full span and decodes it into a record.
func (s *Session) ReadAll(ctx context.Context) (*codec.Record, error) {
	data, err := s.read(ctx, s.builder.ReadAll())
	if err != nil {
		return nil, err
	}
	return s.codec.Decode(data)
}

// ReadField fetches and decodes a single field.
func (s *Session) ReadField(ctx context.Context, key schema.Key) (any, error) {
	req, err := s.builder.ReadField(key)
	if err != nil {
		return nil, err
	}
	data, err := s.read(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.codec.DecodeField(key, data)
}

// WriteAll writes the record's full register image in a single frame.
func (s *Session) WriteAll(ctx context.Context, r *codec.Record) error {
	f, err := s.builder.WriteAll(r)
	if err != nil {
		return err
	}
	return s.write(ctx, f)
}

// WriteField writes a single field value.
func (s *Session) WriteField(ctx context.Context, key schema.Key, v any) error {
	f, err := s.builder.WriteField(key, v)
	if err != nil {
		return err
	}
	return s.write(ctx, f)
}

// WriteAt writes a value at a raw byte address, with the width taken
// from the value's Go type rather than the layout. Addresses outside
// the layout are allowed.
func (s *Session) WriteAt(ctx context.Context, address uint16, v any) error {
	f, err := s.builder.WriteAt(address, v)
	if err != nil {
		return err
	}
	return s.write(ctx, f)
}

// Commit flushes a batch to the device. With optimize set, writes to
// adjacent addresses are merged into combined frames first.
//
// Returns batch.ErrNothingToCommit when the batch holds no writes.
// The batch is cleared only after every frame is written; on a partial
// failure the remaining writes stay buffered for a retry.
func (s *Session) Commit(ctx context.Context, b *batch.Batch, optimize bool) error {
	pending := b.Len()

	var frames []frame.Frame
	if optimize {
		frames = b.BuildOptimized()
	} else {
		frames = b.Build()
	}
	if len(frames) == 0 {
		return batch.ErrNothingToCommit
	}

	total := 0
	for _, f := range frames {
		total += f.Len()
	}
	s.logger.Log(reglog.Event{
		Timestamp:  time.Now(),
		SessionID:  s.id,
		Direction:  reglog.DirectionOut,
		Layer:      reglog.LayerBatch,
		Category:   reglog.CategoryMerge,
		RemoteAddr: s.client.RemoteAddr(),
		Layout:     s.Schema().Name(),
		Merge: &reglog.MergeEvent{
			Pending:   pending,
			Frames:    len(frames),
			Bytes:     total,
			Optimized: optimize,
		},
	})

	for _, f := range frames {
		if err := s.write(ctx, f); err != nil {
			return err
		}
	}

	b.Clear()
	return nil
}

// Close closes the underlying client and logs the session end.
// It is safe to call Close multiple times.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.logState(reglog.StateEntitySession, "open", "closed", "")
		s.closeErr = s.client.Close()
	})
	return s.closeErr
}

// read performs one region read and logs it.
func (s *Session) read(ctx context.Context, req frame.ReadRequest) ([]byte, error) {
	data, err := s.client.ReadRegion(ctx, req)
	if err != nil {
		s.logError(err, "ReadRegion")
		return nil, err
	}

	s.logger.Log(s.makeReadEvent(req, data))
	return data, nil
}

// write performs one frame write and logs it.
func (s *Session) write(ctx context.Context, f frame.Frame) error {
	if err := s.client.WriteRegion(ctx, f); err != nil {
		s.logError(err, "WriteRegion")
		return err
	}

	s.logger.Log(s.makeWriteEvent(f))
	return nil
}

// makeReadEvent creates a log event for a region read.
func (s *Session) makeReadEvent(req frame.ReadRequest, data []byte) reglog.Event {
	payload := data
	truncated := false

	if len(data) > MaxLogDataSize {
		payload = data[:MaxLogDataSize]
		truncated = true
	}

	return reglog.Event{
		Timestamp:  time.Now(),
		SessionID:  s.id,
		Direction:  reglog.DirectionIn,
		Layer:      reglog.LayerTransport,
		Category:   reglog.CategoryRead,
		RemoteAddr: s.client.RemoteAddr(),
		Layout:     s.Schema().Name(),
		Read: &reglog.ReadEvent{
			Address:   req.Start,
			Count:     req.Count,
			Size:      len(data),
			Data:      payload,
			Truncated: truncated,
		},
	}
}

// makeWriteEvent creates a log event for a frame write.
func (s *Session) makeWriteEvent(f frame.Frame) reglog.Event {
	payload := f.Payload
	truncated := false

	if len(f.Payload) > MaxLogDataSize {
		payload = f.Payload[:MaxLogDataSize]
		truncated = true
	}

	return reglog.Event{
		Timestamp:  time.Now(),
		SessionID:  s.id,
		Direction:  reglog.DirectionOut,
		Layer:      reglog.LayerTransport,
		Category:   reglog.CategoryWrite,
		RemoteAddr: s.client.RemoteAddr(),
		Layout:     s.Schema().Name(),
		Write: &reglog.WriteEvent{
			Address:   f.Start,
			Size:      f.Len(),
			Data:      payload,
			Truncated: truncated,
		},
	}
}

// logState records a lifecycle transition.
func (s *Session) logState(entity reglog.StateEntity, oldState, newState, reason string) {
	s.logger.Log(reglog.Event{
		Timestamp:  time.Now(),
		SessionID:  s.id,
		Direction:  reglog.DirectionOut,
		Layer:      reglog.LayerSession,
		Category:   reglog.CategoryState,
		RemoteAddr: s.client.RemoteAddr(),
		Layout:     s.Schema().Name(),
		StateChange: &reglog.StateChangeEvent{
			Entity:   entity,
			OldState: oldState,
			NewState: newState,
			Reason:   reason,
		},
	})
}

// logError records a transport failure.
func (s *Session) logError(err error, context string) {
	s.logger.Log(reglog.Event{
		Timestamp:  time.Now(),
		SessionID:  s.id,
		Direction:  reglog.DirectionOut,
		Layer:      reglog.LayerTransport,
		Category:   reglog.CategoryError,
		RemoteAddr: s.client.RemoteAddr(),
		Layout:     s.Schema().Name(),
		Error: &reglog.ErrorEventData{
			Layer:   reglog.LayerTransport,
			Message: err.Error(),
			Context: context,
		},
	})
}
