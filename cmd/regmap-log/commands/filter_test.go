package commands

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/regmap-proto/regmap-go/pkg/reglog"
)

// drainTrace reads every event back out of a trace file.
func drainTrace(t *testing.T, path string) []reglog.Event {
	t.Helper()

	reader, err := reglog.NewReader(path)
	if err != nil {
		t.Fatalf("open filtered trace: %v", err)
	}
	defer reader.Close()

	var events []reglog.Event
	for {
		event, err := reader.Next()
		if err == io.EOF {
			return events
		}
		if err != nil {
			t.Fatalf("read filtered trace: %v", err)
		}
		events = append(events, event)
	}
}

func TestRunFilterCriteria(t *testing.T) {
	base := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	fixture := []reglog.Event{
		{Timestamp: base, SessionID: "sess-1", Layer: reglog.LayerTransport, Category: reglog.CategoryWrite, Layout: "power-meter"},
		{Timestamp: base.Add(time.Hour), SessionID: "sess-2", Layer: reglog.LayerBatch, Category: reglog.CategoryMerge, Layout: "power-meter"},
		{Timestamp: base.Add(2 * time.Hour), SessionID: "sess-1", Layer: reglog.LayerSession, Category: reglog.CategoryState, Layout: "storage-controller"},
	}
	path := createTestLogFile(t, fixture)

	tests := []struct {
		name    string
		opts    FilterOptions
		wantIdx []int // fixture indices expected in the output trace
	}{
		{"by session", FilterOptions{SessionID: "sess-1"}, []int{0, 2}},
		{
			"by time window",
			FilterOptions{
				TimeStart: base.Add(30 * time.Minute).Format(time.RFC3339),
				TimeEnd:   base.Add(90 * time.Minute).Format(time.RFC3339),
			},
			[]int{1},
		},
		{"by layer name", FilterOptions{Layer: "batch"}, []int{1}},
		{"by layout", FilterOptions{Layout: "storage-controller"}, []int{2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outPath := filepath.Join(t.TempDir(), "filtered.rlog")
			tt.opts.Output = outPath

			var summary bytes.Buffer
			if err := RunFilter(path, tt.opts, &summary); err != nil {
				t.Fatalf("RunFilter: %v", err)
			}

			got := drainTrace(t, outPath)
			if len(got) != len(tt.wantIdx) {
				t.Fatalf("kept %d events, want %d", len(got), len(tt.wantIdx))
			}
			for i, idx := range tt.wantIdx {
				want := fixture[idx]
				if got[i].SessionID != want.SessionID || got[i].Category != want.Category {
					t.Errorf("event %d = %s/%s, want %s/%s",
						i, got[i].SessionID, got[i].Category, want.SessionID, want.Category)
				}
			}
			if want := fmt.Sprintf("Kept %d", len(tt.wantIdx)); !strings.Contains(summary.String(), want) {
				t.Errorf("summary %q missing %q", summary.String(), want)
			}
		})
	}
}

func TestRunFilterRejectsBadCriteria(t *testing.T) {
	path := createTestLogFile(t, []reglog.Event{
		{Timestamp: time.Now(), Category: reglog.CategoryWrite},
	})

	for name, opts := range map[string]FilterOptions{
		"unknown layer": {Layer: "bogus"},
		"bad timestamp": {TimeStart: "yesterday"},
	} {
		opts.Output = filepath.Join(t.TempDir(), "unused.rlog")
		if err := RunFilter(path, opts, io.Discard); err == nil {
			t.Errorf("%s: RunFilter accepted bad criteria", name)
		}
	}
}
