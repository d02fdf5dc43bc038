// Command regmap-log inspects register traffic traces (.rlog files)
// written by reglog.FileLogger, for example via regmap-cli -trace.
//
// view renders events one per line, filter sieves a trace into a
// smaller one, export converts to JSONL or CSV for other tools, and
// stats summarizes traffic volume and batch merge efficiency.
//
//	regmap-log view -category write meter.rlog
//	regmap-log filter -session 0b0ef07e -o one-session.rlog meter.rlog
//	regmap-log export -format csv -o meter.csv meter.rlog
//	regmap-log stats meter.rlog
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/regmap-proto/regmap-go/cmd/regmap-log/commands"
)

// Subcommands parse their own flags and return errors instead of
// exiting, so main owns the process exit path.
type subcommand struct {
	name     string
	synopsis string
	run      func(args []string) error
}

var subcommands = []subcommand{
	{"view", "render a trace in human-readable form", cmdView},
	{"filter", "sieve a trace into a new file", cmdFilter},
	{"export", "convert a trace to JSONL or CSV", cmdExport},
	{"stats", "summarize traffic volume and merge efficiency", cmdStats},
}

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(2)
	}

	name := os.Args[1]
	switch name {
	case "help", "-h", "-help", "--help":
		printUsage(os.Stdout)
		return
	}

	for _, sc := range subcommands {
		if sc.name != name {
			continue
		}
		if err := sc.run(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "regmap-log %s: %v\n", sc.name, err)
			os.Exit(1)
		}
		return
	}

	fmt.Fprintf(os.Stderr, "regmap-log: unknown command %q\n", name)
	printUsage(os.Stderr)
	os.Exit(2)
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: regmap-log <command> [flags] <trace.rlog>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, sc := range subcommands {
		fmt.Fprintf(w, "  %-8s %s\n", sc.name, sc.synopsis)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, `Run "regmap-log <command> -help" for command flags.`)
}

// newFlagSet builds one subcommand's flag set with a usage line naming
// the trailing trace argument.
func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: regmap-log %s [flags] <trace.rlog>\n\nFlags:\n", name)
		fs.PrintDefaults()
	}
	return fs
}

// traceArg returns the positional trace path after flag parsing.
func traceArg(fs *flag.FlagSet) (string, error) {
	if fs.NArg() != 1 {
		return "", fmt.Errorf("expected one trace file argument")
	}
	return fs.Arg(0), nil
}

func cmdView(args []string) error {
	fs := newFlagSet("view")
	layer := fs.String("layer", "", "only this layer (transport, batch, session)")
	direction := fs.String("direction", "", "only this direction (in, out)")
	category := fs.String("category", "", "only this category (write, read, merge, state, error)")
	fs.Parse(args)

	path, err := traceArg(fs)
	if err != nil {
		return err
	}
	filter, err := commands.ParseViewFilter(*layer, *direction, *category)
	if err != nil {
		return err
	}
	return commands.RunView(path, filter, os.Stdout)
}

func cmdFilter(args []string) error {
	fs := newFlagSet("filter")
	output := fs.String("o", "", "output trace file (required)")
	session := fs.String("session", "", "only this session ID")
	layout := fs.String("layout", "", "only this layout name")
	timeStart := fs.String("time-start", "", "drop events before this RFC3339 time")
	timeEnd := fs.String("time-end", "", "drop events at or after this RFC3339 time")
	layer := fs.String("layer", "", "only this layer (transport, batch, session)")
	direction := fs.String("direction", "", "only this direction (in, out)")
	category := fs.String("category", "", "only this category (write, read, merge, state, error)")
	fs.Parse(args)

	path, err := traceArg(fs)
	if err != nil {
		return err
	}
	if *output == "" {
		return fmt.Errorf("output file (-o) is required")
	}
	return commands.RunFilter(path, commands.FilterOptions{
		Output:    *output,
		SessionID: *session,
		Layout:    *layout,
		TimeStart: *timeStart,
		TimeEnd:   *timeEnd,
		Layer:     *layer,
		Direction: *direction,
		Category:  *category,
	}, os.Stdout)
}

func cmdExport(args []string) error {
	fs := newFlagSet("export")
	format := fs.String("format", "jsonl", "output format (jsonl, csv)")
	output := fs.String("o", "", "output file (default stdout)")
	fs.Parse(args)

	path, err := traceArg(fs)
	if err != nil {
		return err
	}
	return commands.RunExport(path, *format, *output)
}

func cmdStats(args []string) error {
	fs := newFlagSet("stats")
	fs.Parse(args)

	path, err := traceArg(fs)
	if err != nil {
		return err
	}
	return commands.RunStats(path, os.Stdout)
}
