package transport

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/regmap-proto/regmap-go/pkg/batch"
	"github.com/regmap-proto/regmap-go/pkg/codec"
	"github.com/regmap-proto/regmap-go/pkg/frame"
	"github.com/regmap-proto/regmap-go/pkg/reglog"
	"github.com/regmap-proto/regmap-go/pkg/schema"
)

// recordingLogger captures traffic events for assertions.
type recordingLogger struct {
	mu     sync.Mutex
	events []reglog.Event
}

func (l *recordingLogger) Log(event reglog.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}

func (l *recordingLogger) byCategory(cat reglog.Category) []reglog.Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []reglog.Event
	for _, e := range l.events {
		if e.Category == cat {
			out = append(out, e)
		}
	}
	return out
}

func plantSchema(t *testing.T) *schema.Schema {
	t.Helper()

	cfg := schema.Config{BoolWidth: schema.BoolWord, ByteOrder: schema.OrderWordSwap}
	s, err := schema.NewBuilder(cfg).
		Named("plant").
		Int32("power", 100).
		Int32("setpoint", 104).
		Uint16("mode", 200).
		Resolve()
	if err != nil {
		t.Fatalf("failed to resolve schema: %v", err)
	}
	return s
}

func newTestSession(t *testing.T) (*Session, *MemoryClient, *recordingLogger) {
	t.Helper()

	c, err := codec.New(plantSchema(t))
	if err != nil {
		t.Fatalf("failed to create codec: %v", err)
	}

	client, err := NewMemoryClient(frame.UnitRegister)
	if err != nil {
		t.Fatalf("failed to create memory client: %v", err)
	}

	logger := &recordingLogger{}
	session, err := NewSession(SessionConfig{
		Client: client,
		Codec:  c,
		Logger: logger,
	})
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}

	return session, client, logger
}

func TestNewSessionValidation(t *testing.T) {
	c, err := codec.New(plantSchema(t))
	if err != nil {
		t.Fatalf("failed to create codec: %v", err)
	}
	client, err := NewMemoryClient(frame.UnitRegister)
	if err != nil {
		t.Fatalf("failed to create memory client: %v", err)
	}

	if _, err := NewSession(SessionConfig{Codec: c}); err == nil {
		t.Error("NewSession without client: expected error")
	}
	if _, err := NewSession(SessionConfig{Client: client}); err == nil {
		t.Error("NewSession without codec: expected error")
	}
}

func TestSessionIdentity(t *testing.T) {
	session1, _, _ := newTestSession(t)
	session2, _, _ := newTestSession(t)

	if session1.ID() == "" {
		t.Error("session ID is empty")
	}
	if session1.ID() == session2.ID() {
		t.Error("two sessions share an ID")
	}
	if got := session1.Schema().Name(); got != "plant" {
		t.Errorf("Schema().Name() = %q, want %q", got, "plant")
	}
}

func TestSessionWriteField(t *testing.T) {
	session, client, logger := newTestSession(t)
	ctx := context.Background()

	if err := session.WriteField(ctx, "power", int32(1)); err != nil {
		t.Fatalf("WriteField failed: %v", err)
	}

	// Word-swap int32 1: low word first, each word big-endian
	want := []byte{0x00, 0x01, 0x00, 0x00}
	got := client.Bytes(100, 4)
	if string(got) != string(want) {
		t.Errorf("register image: got % X, want % X", got, want)
	}

	writes := logger.byCategory(reglog.CategoryWrite)
	if len(writes) != 1 {
		t.Fatalf("got %d write events, want 1", len(writes))
	}
	if writes[0].Write.Address != 100 || writes[0].Write.Size != 4 {
		t.Errorf("write event: address=%d size=%d, want address=100 size=4",
			writes[0].Write.Address, writes[0].Write.Size)
	}
	if writes[0].Layout != "plant" {
		t.Errorf("write event layout: got %q, want %q", writes[0].Layout, "plant")
	}
}

func TestSessionWriteAt(t *testing.T) {
	session, client, logger := newTestSession(t)
	ctx := context.Background()

	// Address 300 is outside the plant layout
	if err := session.WriteAt(ctx, 300, int32(1)); err != nil {
		t.Fatalf("WriteAt failed: %v", err)
	}

	want := []byte{0x00, 0x01, 0x00, 0x00}
	if got := client.Bytes(300, 4); string(got) != string(want) {
		t.Errorf("register image: got % X, want % X", got, want)
	}

	writes := logger.byCategory(reglog.CategoryWrite)
	if len(writes) != 1 {
		t.Fatalf("got %d write events, want 1", len(writes))
	}
	if writes[0].Write.Address != 300 || writes[0].Write.Size != 4 {
		t.Errorf("write event: address=%d size=%d, want address=300 size=4",
			writes[0].Write.Address, writes[0].Write.Size)
	}

	if err := session.WriteAt(ctx, 300, "nope"); !errors.Is(err, schema.ErrUnsupportedKind) {
		t.Errorf("string value: got %v, want ErrUnsupportedKind", err)
	}
}

func TestSessionReadAll(t *testing.T) {
	session, client, logger := newTestSession(t)
	ctx := context.Background()

	client.Preload(100, []byte{0x00, 0x02, 0x00, 0x00}) // power = 2
	client.Preload(104, []byte{0xFF, 0xFE, 0xFF, 0xFF}) // setpoint = -2
	client.Preload(200, []byte{0x00, 0x07})             // mode = 7

	record, err := session.ReadAll(ctx)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}

	if v, _ := record.Value("power"); v != int32(2) {
		t.Errorf("power: got %v, want int32(2)", v)
	}
	if v, _ := record.Value("setpoint"); v != int32(-2) {
		t.Errorf("setpoint: got %v, want int32(-2)", v)
	}
	if v, _ := record.Value("mode"); v != uint16(7) {
		t.Errorf("mode: got %v, want uint16(7)", v)
	}

	reads := logger.byCategory(reglog.CategoryRead)
	if len(reads) != 1 {
		t.Fatalf("got %d read events, want 1", len(reads))
	}
	// Span is bytes 100..202: 102 bytes = 51 registers
	if reads[0].Read.Address != 100 || reads[0].Read.Count != 51 {
		t.Errorf("read event: address=%d count=%d, want address=100 count=51",
			reads[0].Read.Address, reads[0].Read.Count)
	}
	if reads[0].Read.Size != 102 {
		t.Errorf("read event size: got %d, want 102", reads[0].Read.Size)
	}
}

func TestSessionReadField(t *testing.T) {
	session, client, logger := newTestSession(t)
	ctx := context.Background()

	client.Preload(200, []byte{0x00, 0x2A}) // mode = 42

	v, err := session.ReadField(ctx, "mode")
	if err != nil {
		t.Fatalf("ReadField failed: %v", err)
	}
	if v != uint16(42) {
		t.Errorf("mode: got %v, want uint16(42)", v)
	}

	reads := logger.byCategory(reglog.CategoryRead)
	if len(reads) != 1 {
		t.Fatalf("got %d read events, want 1", len(reads))
	}
	if reads[0].Read.Address != 200 || reads[0].Read.Count != 1 {
		t.Errorf("read event: address=%d count=%d, want address=200 count=1",
			reads[0].Read.Address, reads[0].Read.Count)
	}
}

func TestSessionReadFieldUnknownKey(t *testing.T) {
	session, _, _ := newTestSession(t)

	_, err := session.ReadField(context.Background(), "bogus")
	if !errors.Is(err, schema.ErrUnknownField) {
		t.Errorf("unknown field: got %v, want ErrUnknownField", err)
	}
}

func TestSessionWriteAllRoundTrip(t *testing.T) {
	session, _, _ := newTestSession(t)
	ctx := context.Background()

	record := codec.NewRecord(session.Schema())
	if err := record.Set("power", int32(-1500)); err != nil {
		t.Fatalf("Set power failed: %v", err)
	}
	if err := record.Set("setpoint", int32(2000)); err != nil {
		t.Fatalf("Set setpoint failed: %v", err)
	}
	if err := record.Set("mode", uint16(3)); err != nil {
		t.Fatalf("Set mode failed: %v", err)
	}

	if err := session.WriteAll(ctx, record); err != nil {
		t.Fatalf("WriteAll failed: %v", err)
	}

	got, err := session.ReadAll(ctx)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}

	if v, _ := got.Value("power"); v != int32(-1500) {
		t.Errorf("power: got %v, want int32(-1500)", v)
	}
	if v, _ := got.Value("setpoint"); v != int32(2000) {
		t.Errorf("setpoint: got %v, want int32(2000)", v)
	}
	if v, _ := got.Value("mode"); v != uint16(3) {
		t.Errorf("mode: got %v, want uint16(3)", v)
	}
}

func TestSessionCommitOptimized(t *testing.T) {
	session, client, logger := newTestSession(t)
	ctx := context.Background()

	b := batch.New(session.codec)
	if err := b.Set("power", int32(1)); err != nil {
		t.Fatalf("Set power failed: %v", err)
	}
	if err := b.Set("setpoint", int32(2)); err != nil {
		t.Fatalf("Set setpoint failed: %v", err)
	}
	if err := b.Set("mode", uint16(3)); err != nil {
		t.Fatalf("Set mode failed: %v", err)
	}

	if err := session.Commit(ctx, b, true); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	// power and setpoint are adjacent and merge into one frame
	wantRun := []byte{0x00, 0x01, 0x00, 0x00, 0x00, 0x02, 0x00, 0x00}
	if got := client.Bytes(100, 8); string(got) != string(wantRun) {
		t.Errorf("merged run: got % X, want % X", got, wantRun)
	}
	if got := client.Bytes(200, 2); string(got) != string([]byte{0x00, 0x03}) {
		t.Errorf("mode: got % X, want 00 03", got)
	}

	writes := logger.byCategory(reglog.CategoryWrite)
	if len(writes) != 2 {
		t.Fatalf("got %d write events, want 2 (merged)", len(writes))
	}

	merges := logger.byCategory(reglog.CategoryMerge)
	if len(merges) != 1 {
		t.Fatalf("got %d merge events, want 1", len(merges))
	}
	m := merges[0].Merge
	if m.Pending != 3 || m.Frames != 2 || m.Bytes != 10 || !m.Optimized {
		t.Errorf("merge event: %+v, want pending=3 frames=2 bytes=10 optimized", m)
	}

	if b.Len() != 0 {
		t.Errorf("batch not cleared after commit: %d entries", b.Len())
	}
}

func TestSessionCommitUnmerged(t *testing.T) {
	session, _, logger := newTestSession(t)
	ctx := context.Background()

	b := batch.New(session.codec)
	b.Set("power", int32(1))
	b.Set("setpoint", int32(2))
	b.Set("mode", uint16(3))

	if err := session.Commit(ctx, b, false); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	writes := logger.byCategory(reglog.CategoryWrite)
	if len(writes) != 3 {
		t.Fatalf("got %d write events, want 3 (unmerged)", len(writes))
	}

	merges := logger.byCategory(reglog.CategoryMerge)
	if len(merges) != 1 {
		t.Fatalf("got %d merge events, want 1", len(merges))
	}
	if merges[0].Merge.Optimized {
		t.Error("merge event marked optimized for a plain commit")
	}
}

func TestSessionCommitEmpty(t *testing.T) {
	session, _, logger := newTestSession(t)

	b := batch.New(session.codec)
	err := session.Commit(context.Background(), b, true)
	if !errors.Is(err, batch.ErrNothingToCommit) {
		t.Errorf("empty commit: got %v, want ErrNothingToCommit", err)
	}

	if writes := logger.byCategory(reglog.CategoryWrite); len(writes) != 0 {
		t.Errorf("empty commit produced %d write events", len(writes))
	}
}

func TestSessionCommitKeepsBatchOnFailure(t *testing.T) {
	session, client, logger := newTestSession(t)

	b := batch.New(session.codec)
	b.Set("power", int32(1))
	b.Set("mode", uint16(3))

	// Fail the transport under the session
	client.Close()

	err := session.Commit(context.Background(), b, true)
	if !errors.Is(err, ErrClientClosed) {
		t.Fatalf("commit over closed client: got %v, want ErrClientClosed", err)
	}

	if b.Len() != 2 {
		t.Errorf("batch cleared despite failure: %d entries, want 2", b.Len())
	}

	errs := logger.byCategory(reglog.CategoryError)
	if len(errs) != 1 {
		t.Fatalf("got %d error events, want 1", len(errs))
	}
	if errs[0].Error.Context != "WriteRegion" {
		t.Errorf("error context: got %q, want %q", errs[0].Error.Context, "WriteRegion")
	}
}

func TestSessionLifecycleEvents(t *testing.T) {
	session, _, logger := newTestSession(t)

	states := logger.byCategory(reglog.CategoryState)
	if len(states) != 1 {
		t.Fatalf("got %d state events after open, want 1", len(states))
	}
	if states[0].StateChange.NewState != "open" {
		t.Errorf("open event: new state %q, want %q", states[0].StateChange.NewState, "open")
	}
	if states[0].StateChange.Entity != reglog.StateEntitySession {
		t.Errorf("open event entity: got %v, want session", states[0].StateChange.Entity)
	}

	if err := session.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	// Second close must not emit another event
	if err := session.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}

	states = logger.byCategory(reglog.CategoryState)
	if len(states) != 2 {
		t.Fatalf("got %d state events after close, want 2", len(states))
	}
	last := states[1].StateChange
	if last.OldState != "open" || last.NewState != "closed" {
		t.Errorf("close event: %q -> %q, want open -> closed", last.OldState, last.NewState)
	}
}

func TestSessionReadErrorLogged(t *testing.T) {
	session, client, logger := newTestSession(t)

	client.Close()

	_, err := session.ReadAll(context.Background())
	if !errors.Is(err, ErrClientClosed) {
		t.Fatalf("ReadAll over closed client: got %v, want ErrClientClosed", err)
	}

	errs := logger.byCategory(reglog.CategoryError)
	if len(errs) != 1 {
		t.Fatalf("got %d error events, want 1", len(errs))
	}
	if errs[0].Error.Context != "ReadRegion" {
		t.Errorf("error context: got %q, want %q", errs[0].Error.Context, "ReadRegion")
	}
}

func TestSessionDefaultLogger(t *testing.T) {
	c, err := codec.New(plantSchema(t))
	if err != nil {
		t.Fatalf("failed to create codec: %v", err)
	}
	client, err := NewMemoryClient(frame.UnitRegister)
	if err != nil {
		t.Fatalf("failed to create memory client: %v", err)
	}

	// No logger configured: operations must still work
	session, err := NewSession(SessionConfig{Client: client, Codec: c})
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	defer session.Close()

	if err := session.WriteField(context.Background(), "mode", uint16(1)); err != nil {
		t.Errorf("WriteField failed: %v", err)
	}
}
