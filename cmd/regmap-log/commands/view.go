// Package commands implements the subcommands of the regmap-log trace
// inspection tool.
package commands

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/regmap-proto/regmap-go/pkg/reglog"
)

// ViewFilter narrows which events the view command renders. Nil
// criteria match every event.
type ViewFilter struct {
	Layer     *reglog.Layer
	Direction *reglog.Direction
	Category  *reglog.Category
}

// ParseViewFilter builds a ViewFilter from the command line's string
// forms; empty strings leave the criterion unset.
func ParseViewFilter(layer, direction, category string) (ViewFilter, error) {
	var f ViewFilter
	if layer != "" {
		l, err := parseLayer(layer)
		if err != nil {
			return ViewFilter{}, err
		}
		f.Layer = &l
	}
	if direction != "" {
		d, err := parseDirection(direction)
		if err != nil {
			return ViewFilter{}, err
		}
		f.Direction = &d
	}
	if category != "" {
		c, err := parseCategory(category)
		if err != nil {
			return ViewFilter{}, err
		}
		f.Category = &c
	}
	return f, nil
}

func (f ViewFilter) matches(event reglog.Event) bool {
	if f.Layer != nil && event.Layer != *f.Layer {
		return false
	}
	if f.Direction != nil && event.Direction != *f.Direction {
		return false
	}
	if f.Category != nil && event.Category != *f.Category {
		return false
	}
	return true
}

// RunView renders every matching event in the trace to output.
func RunView(path string, filter ViewFilter, output io.Writer) error {
	reader, err := reglog.NewReader(path)
	if err != nil {
		return fmt.Errorf("open trace: %w", err)
	}
	defer reader.Close()

	return forEachEvent(reader, func(event reglog.Event) error {
		if filter.matches(event) {
			formatEvent(output, event)
		}
		return nil
	})
}

// formatEvent renders one event as a header line followed by indented
// detail lines and a trailing blank line.
func formatEvent(w io.Writer, event reglog.Event) {
	fmt.Fprintf(w, "%s [sess:%s] %-3s %s %s\n",
		event.Timestamp.UTC().Format(timestampLayout),
		shortSessionID(event.SessionID),
		event.Direction, event.Layer, eventKind(event))
	for _, line := range detailLines(event) {
		fmt.Fprintf(w, "  %s\n", line)
	}
	fmt.Fprintln(w)
}

// shortSessionID trims a session UUID down to its first group, which
// is enough to tell concurrent sessions apart in a listing.
func shortSessionID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return id
}

func eventKind(event reglog.Event) string {
	switch {
	case event.Write != nil:
		return "Write"
	case event.Read != nil:
		return "Read"
	case event.Merge != nil:
		return "Merge"
	case event.StateChange != nil:
		return "State"
	case event.Error != nil:
		return "Error"
	}
	return "Unknown"
}

// detailLines returns the body of an event, one entry per output line,
// without indentation.
func detailLines(event reglog.Event) []string {
	var lines []string
	if event.Layout != "" {
		lines = append(lines, "Layout: "+event.Layout)
	}
	if event.RemoteAddr != "" {
		lines = append(lines, "Remote: "+event.RemoteAddr)
	}
	switch {
	case event.Write != nil:
		lines = append(lines, writeLines(event.Write)...)
	case event.Read != nil:
		lines = append(lines, readLines(event.Read)...)
	case event.Merge != nil:
		lines = append(lines, mergeLines(event.Merge)...)
	case event.StateChange != nil:
		lines = append(lines, stateChangeLines(event.StateChange)...)
	case event.Error != nil:
		lines = append(lines, errorLines(event.Error)...)
	}
	return lines
}

func writeLines(we *reglog.WriteEvent) []string {
	lines := []string{
		fmt.Sprintf("Address: %d", we.Address),
		fmt.Sprintf("Size: %d bytes", we.Size),
	}
	if len(we.Data) > 0 {
		lines = append(lines, dataLine(we.Data, we.Truncated))
	}
	return lines
}

func readLines(re *reglog.ReadEvent) []string {
	lines := []string{
		fmt.Sprintf("Address: %d", re.Address),
		fmt.Sprintf("Count: %d", re.Count),
		fmt.Sprintf("Size: %d bytes", re.Size),
	}
	if len(re.Data) > 0 {
		lines = append(lines, dataLine(re.Data, re.Truncated))
	}
	return lines
}

func mergeLines(me *reglog.MergeEvent) []string {
	lines := []string{
		fmt.Sprintf("Pending: %d writes", me.Pending),
		fmt.Sprintf("Frames: %d (%d bytes)", me.Frames, me.Bytes),
	}
	if me.Optimized {
		lines = append(lines, "Optimized: yes")
	}
	return lines
}

func stateChangeLines(sc *reglog.StateChangeEvent) []string {
	transition := "-> " + sc.NewState
	if sc.OldState != "" {
		transition = sc.OldState + " " + transition
	}
	lines := []string{"Entity: " + sc.Entity.String(), transition}
	if sc.Reason != "" {
		lines = append(lines, "Reason: "+sc.Reason)
	}
	return lines
}

func errorLines(ee *reglog.ErrorEventData) []string {
	lines := []string{
		"Layer: " + ee.Layer.String(),
		"Message: " + ee.Message,
	}
	if ee.Code != nil {
		lines = append(lines, fmt.Sprintf("Code: %d", *ee.Code))
	}
	if ee.Context != "" {
		lines = append(lines, "Context: "+ee.Context)
	}
	return lines
}

// dataLine renders a payload as hex, flagging captures the logger cut
// short.
func dataLine(data []byte, truncated bool) string {
	line := "Data: " + hex.EncodeToString(data)
	if truncated {
		line += " (truncated)"
	}
	return line
}

// The -layer, -direction, and -category flags are matched
// case-insensitively against these names.
var (
	layersByName = map[string]reglog.Layer{
		"transport": reglog.LayerTransport,
		"batch":     reglog.LayerBatch,
		"session":   reglog.LayerSession,
	}
	directionsByName = map[string]reglog.Direction{
		"in":  reglog.DirectionIn,
		"out": reglog.DirectionOut,
	}
	categoriesByName = map[string]reglog.Category{
		"write": reglog.CategoryWrite,
		"read":  reglog.CategoryRead,
		"merge": reglog.CategoryMerge,
		"state": reglog.CategoryState,
		"error": reglog.CategoryError,
	}
)

func parseLayer(s string) (reglog.Layer, error) {
	if l, ok := layersByName[strings.ToLower(s)]; ok {
		return l, nil
	}
	return 0, fmt.Errorf("unknown layer %q (transport, batch, or session)", s)
}

func parseDirection(s string) (reglog.Direction, error) {
	if d, ok := directionsByName[strings.ToLower(s)]; ok {
		return d, nil
	}
	return 0, fmt.Errorf("unknown direction %q (in or out)", s)
}

func parseCategory(s string) (reglog.Category, error) {
	if c, ok := categoriesByName[strings.ToLower(s)]; ok {
		return c, nil
	}
	return 0, fmt.Errorf("unknown category %q (write, read, merge, state, or error)", s)
}
