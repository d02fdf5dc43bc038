package inspect

import (
	"fmt"
	"strings"

	"github.com/regmap-proto/regmap-go/pkg/codec"
	"github.com/regmap-proto/regmap-go/pkg/frame"
	"github.com/regmap-proto/regmap-go/pkg/schema"
)

// FormatSchema renders a schema as an address-ordered field table.
func (f *Formatter) FormatSchema(s *schema.Schema) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("layout %s (%s)\n", s.Name(), s.Config()))
	sb.WriteString(fmt.Sprintf("span %d..%d: %d bytes, %d fields\n",
		s.StartAddress(), int(s.StartAddress())+s.TotalSize(), s.TotalSize(), s.Len()))

	if f.ShowOffsets {
		sb.WriteString("  address  offset  size  kind          key\n")
	} else {
		sb.WriteString("  address  size  kind          key\n")
	}

	for _, fld := range s.Fields() {
		if f.ShowOffsets {
			sb.WriteString(fmt.Sprintf("  %7d  %6d  %4d  %-12s  %s\n",
				fld.Address, int(fld.Address-s.StartAddress()), fld.Size, FormatKind(fld), fld.Key))
		} else {
			sb.WriteString(fmt.Sprintf("  %7d  %4d  %-12s  %s\n",
				fld.Address, fld.Size, FormatKind(fld), fld.Key))
		}
	}
	return sb.String()
}

// FormatRecord renders a record's set fields as aligned key/value
// lines in address order. With ShowHex each line carries the field's
// encoded bytes.
func (f *Formatter) FormatRecord(c *codec.Codec, r *codec.Record) string {
	keys := r.Keys()
	if len(keys) == 0 {
		return "  (no fields set)\n"
	}

	width := 0
	for _, key := range keys {
		if len(key) > width {
			width = len(key)
		}
	}

	var sb strings.Builder
	for _, key := range keys {
		v, err := r.Value(key)
		if err != nil {
			continue
		}
		sb.WriteString(fmt.Sprintf("  %-*s  %s", width, key, f.FormatValue(v)))

		if f.ShowHex && c != nil {
			if data, err := c.EncodeField(key, v); err == nil {
				sb.WriteString(fmt.Sprintf("  [% x]", data))
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// FormatFrame renders a write frame with its payload bytes.
func (f *Formatter) FormatFrame(fr frame.Frame, u frame.Unit) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("write at %s: %d bytes\n", FormatAddress(fr.Start, u), fr.Len()))
	sb.WriteString(HexDump(fr.Payload))
	return sb.String()
}

// FormatFrames renders a frame list the way a pending batch is shown.
func (f *Formatter) FormatFrames(frames []frame.Frame, u frame.Unit) string {
	if len(frames) == 0 {
		return "  (nothing pending)\n"
	}

	var sb strings.Builder
	for i, fr := range frames {
		sb.WriteString(fmt.Sprintf("[%d] ", i))
		sb.WriteString(f.FormatFrame(fr, u))
	}
	return sb.String()
}

// FormatReadRequest renders a read request with its byte extent.
func (f *Formatter) FormatReadRequest(req frame.ReadRequest, u frame.Unit) string {
	return fmt.Sprintf("read at %s: %d %ss (%d bytes)",
		FormatAddress(req.Start, u), req.Count, u, req.Bytes(u))
}
