package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/regmap-proto/regmap-go/pkg/reglog"
)

// timestampLayout is the column form of event timestamps, UTC with
// microseconds.
const timestampLayout = "2006-01-02T15:04:05.000000Z"

var exporters = map[string]func(*reglog.Reader, io.Writer) error{
	"jsonl": exportJSONL,
	"csv":   exportCSV,
}

// RunExport converts a trace into a line-oriented format other tools
// can ingest: one JSON object per event, or a flat CSV index. An empty
// output path writes to stdout.
func RunExport(path, format, output string) error {
	export, ok := exporters[format]
	if !ok {
		return fmt.Errorf("unknown format %q (jsonl or csv)", format)
	}

	reader, err := reglog.NewReader(path)
	if err != nil {
		return fmt.Errorf("open trace: %w", err)
	}
	defer reader.Close()

	w := io.Writer(os.Stdout)
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}

	return export(reader, w)
}

// forEachEvent calls fn for every remaining event in the trace.
func forEachEvent(reader *reglog.Reader, fn func(reglog.Event) error) error {
	for {
		event, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read trace: %w", err)
		}
		if err := fn(event); err != nil {
			return err
		}
	}
}

func exportJSONL(reader *reglog.Reader, w io.Writer) error {
	enc := json.NewEncoder(w)
	return forEachEvent(reader, func(event reglog.Event) error {
		return enc.Encode(event)
	})
}

var csvHeader = []string{
	"timestamp", "session_id", "direction", "layer", "category",
	"remote_addr", "layout", "type", "address", "size",
}

func exportCSV(reader *reglog.Reader, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	if err := forEachEvent(reader, func(event reglog.Event) error {
		return cw.Write(csvRow(event))
	}); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// csvRow flattens an event: the payload collapses to a type tag plus
// address and size columns where they apply.
func csvRow(event reglog.Event) []string {
	kind, address, size := "unknown", "", ""
	switch {
	case event.Write != nil:
		kind = "write"
		address = strconv.Itoa(int(event.Write.Address))
		size = strconv.Itoa(event.Write.Size)
	case event.Read != nil:
		kind = "read"
		address = strconv.Itoa(int(event.Read.Address))
		size = strconv.Itoa(event.Read.Size)
	case event.Merge != nil:
		kind = "merge"
		size = strconv.Itoa(event.Merge.Bytes)
	case event.StateChange != nil:
		kind = "state"
	case event.Error != nil:
		kind = "error"
	}

	return []string{
		event.Timestamp.UTC().Format(timestampLayout),
		event.SessionID,
		event.Direction.String(),
		event.Layer.String(),
		event.Category.String(),
		event.RemoteAddr,
		event.Layout,
		kind,
		address,
		size,
	}
}
