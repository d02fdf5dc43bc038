package reglog

import (
	"bytes"
	"reflect"
	"testing"
	"time"
)

func TestEventRoundTrip(t *testing.T) {
	ts := time.Date(2026, 3, 14, 10, 15, 32, 123456789, time.UTC)
	exception := 2

	tests := []struct {
		name  string
		event Event
	}{
		{
			name: "frame write",
			event: Event{
				Timestamp:  ts,
				SessionID:  "0b0ef07e-98a3-4b68-b74b-2372cd56f722",
				Direction:  DirectionOut,
				Layer:      LayerTransport,
				Category:   CategoryWrite,
				RemoteAddr: "192.168.4.20:502",
				Layout:     "power-meter",
				Write:      &WriteEvent{Address: 24, Size: 4, Data: []byte{0x00, 0x00, 0x20, 0xf8}},
			},
		},
		{
			name: "truncated region read",
			event: Event{
				Timestamp: ts.Add(time.Second),
				SessionID: "0b0ef07e-98a3-4b68-b74b-2372cd56f722",
				Direction: DirectionIn,
				Layer:     LayerTransport,
				Category:  CategoryRead,
				Read:      &ReadEvent{Address: 0, Count: 32, Size: 8192, Data: make([]byte, 4096), Truncated: true},
			},
		},
		{
			name: "merge summary",
			event: Event{
				Timestamp: ts.Add(2 * time.Second),
				SessionID: "0b0ef07e-98a3-4b68-b74b-2372cd56f722",
				Direction: DirectionOut,
				Layer:     LayerBatch,
				Category:  CategoryMerge,
				Merge:     &MergeEvent{Pending: 5, Frames: 2, Bytes: 14, Optimized: true},
			},
		},
		{
			name: "poller state change",
			event: Event{
				Timestamp:   ts.Add(3 * time.Second),
				SessionID:   "0b0ef07e-98a3-4b68-b74b-2372cd56f722",
				Direction:   DirectionOut,
				Layer:       LayerSession,
				Category:    CategoryState,
				StateChange: &StateChangeEvent{Entity: StateEntityPoller, OldState: "stopped", NewState: "running"},
			},
		},
		{
			name: "device exception",
			event: Event{
				Timestamp: ts.Add(4 * time.Second),
				SessionID: "0b0ef07e-98a3-4b68-b74b-2372cd56f722",
				Direction: DirectionIn,
				Layer:     LayerTransport,
				Category:  CategoryError,
				Error: &ErrorEventData{
					Layer:   LayerTransport,
					Message: "modbus: exception '2' (illegal data address)",
					Code:    &exception,
					Context: "ReadRegion",
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Marshal(tt.event)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}

			got, err := Unmarshal(data)
			if err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}

			if !got.Timestamp.Equal(tt.event.Timestamp) {
				t.Errorf("timestamp drifted: got %v, want %v", got.Timestamp, tt.event.Timestamp)
			}
			got.Timestamp, tt.event.Timestamp = time.Time{}, time.Time{}
			if !reflect.DeepEqual(got, tt.event) {
				t.Errorf("event did not survive the round trip:\ngot  %+v\nwant %+v", got, tt.event)
			}
		})
	}
}

func TestMarshalDeterministic(t *testing.T) {
	event := Event{
		Timestamp: time.Date(2026, 3, 14, 10, 15, 32, 0, time.UTC),
		SessionID: "0b0ef07e-98a3-4b68-b74b-2372cd56f722",
		Direction: DirectionOut,
		Layer:     LayerBatch,
		Category:  CategoryMerge,
		Merge:     &MergeEvent{Pending: 3, Frames: 1, Bytes: 12, Optimized: true},
	}

	first, err := Marshal(event)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	second, err := Marshal(event)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Error("same event encoded to different bytes")
	}
}

func TestMarshalUsesIntegerKeys(t *testing.T) {
	data, err := Marshal(Event{
		Timestamp: time.Now(),
		SessionID: "sess",
		Direction: DirectionIn,
		Layer:     LayerTransport,
		Category:  CategoryRead,
	})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var byNumber map[uint64]any
	if err := decMode.Unmarshal(data, &byNumber); err != nil {
		t.Fatalf("decode as integer-keyed map: %v", err)
	}
	for _, key := range []uint64{1, 2, 3, 4, 5} {
		if _, ok := byNumber[key]; !ok {
			t.Errorf("key %d missing from encoded map", key)
		}
	}

	var byName map[string]any
	if err := decMode.Unmarshal(data, &byName); err == nil && len(byName) > 0 {
		t.Error("encoded map has string keys")
	}
}

func TestUnmarshalSkipsUnknownKeys(t *testing.T) {
	// A trace written by a newer version may carry keys this one does
	// not define. Known fields must still come through.
	raw, err := encMode.Marshal(map[uint64]any{
		2:  "sess",
		5:  uint64(CategoryRead),
		99: "from the future",
	})
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}

	event, err := Unmarshal(raw)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if event.SessionID != "sess" {
		t.Errorf("SessionID = %q, want %q", event.SessionID, "sess")
	}
	if event.Category != CategoryRead {
		t.Errorf("Category = %v, want %v", event.Category, CategoryRead)
	}
}
