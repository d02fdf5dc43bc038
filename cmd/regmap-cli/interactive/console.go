// Package interactive provides the interactive command-line interface
// for the regmap CLI.
package interactive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"go.bug.st/serial"

	"github.com/regmap-proto/regmap-go/pkg/batch"
	"github.com/regmap-proto/regmap-go/pkg/codec"
	"github.com/regmap-proto/regmap-go/pkg/discovery"
	"github.com/regmap-proto/regmap-go/pkg/inspect"
	"github.com/regmap-proto/regmap-go/pkg/schema"
	"github.com/regmap-proto/regmap-go/pkg/transport"
)

// opTimeout bounds each register exchange issued from the console.
const opTimeout = 10 * time.Second

// discoverTimeout is the default browse window of the discover command.
const discoverTimeout = 3 * time.Second

// Console handles interactive mode for regmap-cli.
type Console struct {
	session   *transport.Session
	codec     *codec.Codec
	pending   *batch.Batch
	formatter *inspect.Formatter
	rl        *readline.Instance
}

// New creates a new interactive console over a session. The codec must
// be the one the session was built with.
func New(session *transport.Session, c *codec.Codec) (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "regmap> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	return &Console{
		session:   session,
		codec:     c,
		pending:   batch.New(c),
		formatter: inspect.NewFormatter(),
		rl:        rl,
	}, nil
}

// Stdout returns a writer that properly coordinates with the readline
// input. Use this for log output to avoid interfering with the command
// prompt.
func (c *Console) Stdout() io.Writer {
	return c.rl.Stdout()
}

// Stderr returns a writer that properly coordinates with the readline input.
func (c *Console) Stderr() io.Writer {
	return c.rl.Stderr()
}

// Run starts the interactive command loop.
func (c *Console) Run(ctx context.Context, cancel context.CancelFunc) {
	defer c.rl.Close()

	c.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			cancel()
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			c.printHelp()

		case "fields", "layout", "l":
			c.cmdFields()

		case "read", "r":
			c.cmdRead(ctx, args)

		case "write", "w":
			c.cmdWrite(ctx, args)

		case "set":
			c.cmdSet(args)

		case "setaddr":
			c.cmdSetAddr(args)

		case "pending", "p":
			c.cmdPending()

		case "commit":
			c.cmdCommit(ctx, args)

		case "discard":
			c.cmdDiscard()

		case "dump", "d":
			c.cmdDump(ctx)

		case "ports":
			c.cmdPorts()

		case "discover", "disc":
			c.cmdDiscover(ctx, args)

		case "status":
			c.cmdStatus()

		case "quit", "exit", "q":
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			cancel()
			return

		default:
			fmt.Fprintf(c.rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.rl.Stdout(), `
Register Map Console:
  Layout:
    fields             - Show the layout's field table
    dump               - Hex dump of the full register span

  Direct I/O:
    read [field]       - Read one field (or the full layout)
    write <field> <v>  - Write one field immediately

  Batched writes:
    set <field> <v>    - Stage a field write in the pending batch
    setaddr <addr> <v> - Stage a write at a byte address (decimal or 0x hex)
    pending            - Show staged writes as merged frames
    commit [-raw]      - Send the batch (-raw sends one frame per write)
    discard            - Drop all staged writes

  Discovery:
    discover [timeout] - Browse for Modbus gateways via mDNS
    ports              - List local serial ports

  General:
    status             - Show session status
    help               - Show this help
    quit               - Exit`)
}

// cmdFields prints the layout's field table.
func (c *Console) cmdFields() {
	fmt.Fprint(c.rl.Stdout(), c.formatter.FormatSchema(c.session.Schema()))
}

// cmdRead handles the read command.
func (c *Console) cmdRead(ctx context.Context, args []string) {
	opCtx, done := context.WithTimeout(ctx, opTimeout)
	defer done()

	if len(args) == 0 {
		record, err := c.session.ReadAll(opCtx)
		if err != nil {
			fmt.Fprintf(c.rl.Stdout(), "Read failed: %v\n", err)
			return
		}
		fmt.Fprint(c.rl.Stdout(), c.formatter.FormatRecord(c.codec, record))
		return
	}

	key := schema.Key(args[0])
	value, err := c.session.ReadField(opCtx, key)
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Read failed: %v\n", err)
		return
	}
	fmt.Fprintf(c.rl.Stdout(), "%s = %s\n", key, c.formatter.FormatValue(value))
}

// cmdWrite handles the write command.
func (c *Console) cmdWrite(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: write <field> <value>")
		fmt.Fprintln(c.rl.Stdout(), "  Example: write real_power 1500")
		return
	}

	value := parseValue(args[1:])

	opCtx, done := context.WithTimeout(ctx, opTimeout)
	defer done()

	if err := c.session.WriteField(opCtx, schema.Key(args[0]), value); err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Write failed: %v\n", err)
		return
	}
	fmt.Fprintln(c.rl.Stdout(), "OK")
}

// cmdSet stages a field write in the pending batch.
func (c *Console) cmdSet(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: set <field> <value>")
		fmt.Fprintln(c.rl.Stdout(), "  Nothing is sent until 'commit'")
		return
	}

	key := schema.Key(args[0])
	if err := c.pending.Set(key, parseValue(args[1:])); err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Set failed: %v\n", err)
		return
	}
	fmt.Fprintf(c.rl.Stdout(), "Staged %s (%d pending)\n", key, c.pending.Len())
}

// cmdSetAddr stages a write at an explicit byte address. Addresses that
// name a field encode at the field's width; anything else encodes at the
// value's natural width.
func (c *Console) cmdSetAddr(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: setaddr <address> <value>")
		fmt.Fprintln(c.rl.Stdout(), "  Example: setaddr 0x18 1500")
		return
	}

	address, err := parseAddress(args[0])
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Invalid address: %v\n", err)
		return
	}

	value := parseValue(args[1:])

	if fld, ok := c.session.Schema().FieldAt(address); ok {
		if err := c.pending.Set(fld.Key, value); err != nil {
			fmt.Fprintf(c.rl.Stdout(), "Set failed: %v\n", err)
			return
		}
		fmt.Fprintf(c.rl.Stdout(), "Staged %s at address %d (%d pending)\n",
			fld.Key, address, c.pending.Len())
		return
	}

	if err := c.pending.SetAt(address, value); err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Set failed: %v\n", err)
		return
	}
	fmt.Fprintf(c.rl.Stdout(), "Staged write at address %d (%d pending)\n",
		address, c.pending.Len())
}

// cmdPending shows the staged writes as the frames a commit would send.
func (c *Console) cmdPending() {
	frames := c.pending.BuildOptimized()
	if len(frames) == 0 {
		fmt.Fprintln(c.rl.Stdout(), "Nothing pending")
		return
	}

	unit := c.session.Client().Unit()
	fmt.Fprintf(c.rl.Stdout(), "\nPending Writes (%d staged, %d frames after merge):\n",
		c.pending.Len(), len(frames))
	fmt.Fprint(c.rl.Stdout(), c.formatter.FormatFrames(frames, unit))
	fmt.Fprintln(c.rl.Stdout())
}

// cmdCommit sends the pending batch.
func (c *Console) cmdCommit(ctx context.Context, args []string) {
	optimize := true
	if len(args) > 0 && args[0] == "-raw" {
		optimize = false
	}

	staged := c.pending.Len()

	opCtx, done := context.WithTimeout(ctx, opTimeout)
	defer done()

	if err := c.session.Commit(opCtx, c.pending, optimize); err != nil {
		if errors.Is(err, batch.ErrNothingToCommit) {
			fmt.Fprintln(c.rl.Stdout(), "Nothing to commit")
			return
		}
		fmt.Fprintf(c.rl.Stdout(), "Commit failed: %v\n", err)
		return
	}
	fmt.Fprintf(c.rl.Stdout(), "Committed %d writes\n", staged)
}

// cmdDiscard drops all staged writes.
func (c *Console) cmdDiscard() {
	n := c.pending.Len()
	c.pending.Clear()
	fmt.Fprintf(c.rl.Stdout(), "Discarded %d staged writes\n", n)
}

// cmdDump reads the full span and prints its byte image.
func (c *Console) cmdDump(ctx context.Context) {
	opCtx, done := context.WithTimeout(ctx, opTimeout)
	defer done()

	record, err := c.session.ReadAll(opCtx)
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Read failed: %v\n", err)
		return
	}

	image, err := c.codec.Encode(record)
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Encode failed: %v\n", err)
		return
	}

	s := c.session.Schema()
	fmt.Fprintf(c.rl.Stdout(), "span %d..%d: %d bytes\n",
		s.StartAddress(), int(s.StartAddress())+s.TotalSize(), s.TotalSize())
	fmt.Fprint(c.rl.Stdout(), inspect.HexDump(image))
}

// cmdPorts lists the local serial ports.
func (c *Console) cmdPorts() {
	ports, err := serial.GetPortsList()
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Failed to enumerate serial ports: %v\n", err)
		return
	}
	if len(ports) == 0 {
		fmt.Fprintln(c.rl.Stdout(), "No serial ports found")
		return
	}

	fmt.Fprintf(c.rl.Stdout(), "\nSerial Ports (%d):\n", len(ports))
	for _, p := range ports {
		fmt.Fprintf(c.rl.Stdout(), "  %s\n", p)
	}
	fmt.Fprintln(c.rl.Stdout())
}

// cmdDiscover browses for Modbus gateways via mDNS.
func (c *Console) cmdDiscover(ctx context.Context, args []string) {
	timeout := discoverTimeout
	if len(args) > 0 {
		d, err := parseTimeout(args[0])
		if err != nil {
			fmt.Fprintf(c.rl.Stdout(), "Invalid timeout: %v\n", err)
			return
		}
		timeout = d
	}

	browser, err := discovery.NewBrowser(discovery.DefaultBrowserConfig())
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Discovery failed: %v\n", err)
		return
	}
	defer browser.Stop()

	fmt.Fprintf(c.rl.Stdout(), "Browsing for gateways (%s)...\n", timeout)

	browseCtx, done := context.WithTimeout(ctx, timeout)
	defer done()

	gateways, err := browser.FindAll(browseCtx)
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Discovery failed: %v\n", err)
		return
	}
	if len(gateways) == 0 {
		fmt.Fprintln(c.rl.Stdout(), "No gateways found")
		return
	}

	fmt.Fprintf(c.rl.Stdout(), "\nGateways (%d):\n", len(gateways))
	fmt.Fprintln(c.rl.Stdout(), "-------------------------------------------")
	for _, gw := range gateways {
		fmt.Fprintf(c.rl.Stdout(), "  %s\n", gw.InstanceName)
		fmt.Fprintf(c.rl.Stdout(), "      Address: %s\n", gw.Addr())
		fmt.Fprintf(c.rl.Stdout(), "      Units:   %s\n", formatUnits(gw.Units))
		if gw.Profile != "" {
			fmt.Fprintf(c.rl.Stdout(), "      Profile: %s\n", gw.Profile)
		}
		if gw.Vendor != "" {
			fmt.Fprintf(c.rl.Stdout(), "      Vendor:  %s\n", gw.Vendor)
		}
		fmt.Fprintln(c.rl.Stdout())
	}
}

// cmdStatus shows the session status.
func (c *Console) cmdStatus() {
	s := c.session.Schema()
	client := c.session.Client()

	fmt.Fprintln(c.rl.Stdout(), "\nSession Status")
	fmt.Fprintln(c.rl.Stdout(), "-------------------------------------------")
	fmt.Fprintf(c.rl.Stdout(), "  Session ID:  %s\n", shortID(c.session.ID()))
	fmt.Fprintf(c.rl.Stdout(), "  Layout:      %s (%d fields, %d bytes)\n",
		s.Name(), s.Len(), s.TotalSize())
	fmt.Fprintf(c.rl.Stdout(), "  Unit:        %s\n", client.Unit())
	fmt.Fprintf(c.rl.Stdout(), "  Remote:      %s\n", client.RemoteAddr())
	fmt.Fprintf(c.rl.Stdout(), "  Pending:     %d staged writes\n", c.pending.Len())
	fmt.Fprintln(c.rl.Stdout())
}

// parseValue parses a console value argument (try int, then float,
// then bool, then string).
func parseValue(args []string) any {
	valueStr := strings.Join(args, " ")

	if v, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return v
	}
	if v, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return v
	}
	if v, err := strconv.ParseBool(valueStr); err == nil {
		return v
	}
	// Treat as string (strip quotes if present)
	return strings.Trim(valueStr, "\"'")
}

// parseAddress parses a byte address, accepting decimal and 0x hex.
func parseAddress(s string) (uint16, error) {
	v, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, err
	}
	return uint16(v), nil
}

// parseTimeout accepts a duration string or a plain second count.
func parseTimeout(s string) (time.Duration, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	secs, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("want a duration like 5s, got %q", s)
	}
	return time.Duration(secs) * time.Second, nil
}

func formatUnits(units []uint8) string {
	if len(units) == 0 {
		return "-"
	}
	parts := make([]string, len(units))
	for i, u := range units {
		parts[i] = strconv.Itoa(int(u))
	}
	return strings.Join(parts, ",")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
