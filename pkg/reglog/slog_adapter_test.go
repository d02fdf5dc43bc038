package reglog

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"
)

// logLine runs one event through an adapter backed by a JSON handler
// and returns the decoded output line.
func logLine(t *testing.T, event Event) map[string]any {
	t.Helper()

	var buf bytes.Buffer
	adapter := NewSlogAdapter(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	adapter.Log(event)

	if buf.Len() == 0 {
		t.Fatal("adapter produced no output")
	}
	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("parse output: %v", err)
	}
	return line
}

func TestSlogAdapterRendersWrite(t *testing.T) {
	line := logLine(t, Event{
		Timestamp:  time.Now(),
		SessionID:  "sess-123",
		Direction:  DirectionOut,
		Layer:      LayerTransport,
		Category:   CategoryWrite,
		RemoteAddr: "192.168.4.20:502",
		Write:      &WriteEvent{Address: 100, Size: 8, Data: []byte{0x01, 0x02}},
	})

	want := map[string]any{
		"msg":        "register traffic",
		"session_id": "sess-123",
		"direction":  "OUT",
		"layer":      "TRANSPORT",
		"category":   "WRITE",
		"remote":     "192.168.4.20:502",
		"address":    float64(100),
		"size":       float64(8),
		"truncated":  false,
	}
	for key, value := range want {
		if line[key] != value {
			t.Errorf("%s = %v, want %v", key, line[key], value)
		}
	}
}

func TestSlogAdapterRendersMerge(t *testing.T) {
	line := logLine(t, Event{
		Timestamp: time.Now(),
		SessionID: "sess-456",
		Direction: DirectionOut,
		Layer:     LayerBatch,
		Category:  CategoryMerge,
		Merge:     &MergeEvent{Pending: 5, Frames: 2, Bytes: 14, Optimized: true},
	})

	for key, value := range map[string]any{
		"pending":   float64(5),
		"frames":    float64(2),
		"bytes":     float64(14),
		"optimized": true,
	} {
		if line[key] != value {
			t.Errorf("%s = %v, want %v", key, line[key], value)
		}
	}
}

func TestSlogAdapterRendersStateChange(t *testing.T) {
	line := logLine(t, Event{
		Timestamp:   time.Now(),
		SessionID:   "fc48ff64-0a25-4cd0-a458-e7422f7a8d52",
		Direction:   DirectionOut,
		Layer:       LayerSession,
		Category:    CategoryState,
		StateChange: &StateChangeEvent{Entity: StateEntitySession, NewState: "open"},
	})

	if line["session_id"] != "fc48ff64-0a25-4cd0-a458-e7422f7a8d52" {
		t.Errorf("session_id = %v", line["session_id"])
	}
	if line["entity"] != "SESSION" || line["new_state"] != "open" {
		t.Errorf("state attrs = %v/%v, want SESSION/open", line["entity"], line["new_state"])
	}
	if _, ok := line["reason"]; ok {
		t.Error("reason attr present without a reason")
	}
}
