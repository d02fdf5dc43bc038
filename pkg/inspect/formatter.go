// Package inspect renders schemas, records and frames for people:
// console tools, log viewers and debug output.
package inspect

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/regmap-proto/regmap-go/pkg/frame"
	"github.com/regmap-proto/regmap-go/pkg/schema"
)

// Formatter formats inspection output.
type Formatter struct {
	// ShowHex includes the encoded bytes alongside record values
	ShowHex bool

	// ShowOffsets includes schema-relative offsets in field tables
	ShowOffsets bool

	// IndentWidth is the number of spaces per indent level
	IndentWidth int
}

// NewFormatter creates a new Formatter with default settings.
func NewFormatter() *Formatter {
	return &Formatter{
		ShowHex:     true,
		ShowOffsets: false,
		IndentWidth: 2,
	}
}

// Indent returns the content with indentation.
func (f *Formatter) Indent(depth int, content string) string {
	width := f.IndentWidth
	if width == 0 {
		width = 2
	}
	indent := strings.Repeat(" ", depth*width)
	return indent + content
}

// FormatValue formats a decoded field value for display.
func (f *Formatter) FormatValue(value any) string {
	if value == nil {
		return "null"
	}

	switch v := value.(type) {
	case bool:
		if v {
			return "true"
		}
		return "false"

	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)

	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)

	case []byte:
		return fmt.Sprintf("0x%x", v)

	default:
		return fmt.Sprintf("%v", v)
	}
}

// FormatKind formats a field's kind, marking enumerations with their
// underlying integer kind.
func FormatKind(fld schema.Field) string {
	if fld.Enum {
		return fmt.Sprintf("enum(%s)", fld.Kind)
	}
	return fld.Kind.String()
}

// FormatAddress formats a byte address under a transport unit. Register
// transports get the register number alongside the byte address.
func FormatAddress(address uint16, u frame.Unit) string {
	if u == frame.UnitRegister {
		return fmt.Sprintf("%d (reg %d)", address, address/2)
	}
	return strconv.Itoa(int(address))
}

// HexDump renders data as offset-prefixed rows of sixteen bytes.
func HexDump(data []byte) string {
	if len(data) == 0 {
		return "  (empty)\n"
	}

	var sb strings.Builder
	for off := 0; off < len(data); off += 16 {
		end := off + 16
		if end > len(data) {
			end = len(data)
		}
		sb.WriteString(fmt.Sprintf("  %04x  % x\n", off, data[off:end]))
	}
	return sb.String()
}
