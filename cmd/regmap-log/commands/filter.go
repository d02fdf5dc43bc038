package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/regmap-proto/regmap-go/pkg/reglog"
)

// FilterOptions are the string-form criteria from the command line.
// Zero-value fields are not applied.
type FilterOptions struct {
	Output    string
	SessionID string
	Layout    string
	TimeStart string
	TimeEnd   string
	Layer     string
	Direction string
	Category  string
}

// filter converts the options into a reglog.Filter, validating the
// enum and timestamp forms.
func (o FilterOptions) filter() (reglog.Filter, error) {
	f := reglog.Filter{SessionID: o.SessionID, Layout: o.Layout}

	var err error
	if f.TimeStart, err = parseTimeFlag("time-start", o.TimeStart); err != nil {
		return reglog.Filter{}, err
	}
	if f.TimeEnd, err = parseTimeFlag("time-end", o.TimeEnd); err != nil {
		return reglog.Filter{}, err
	}

	if o.Layer != "" {
		l, err := parseLayer(o.Layer)
		if err != nil {
			return reglog.Filter{}, err
		}
		f.Layer = &l
	}
	if o.Direction != "" {
		d, err := parseDirection(o.Direction)
		if err != nil {
			return reglog.Filter{}, err
		}
		f.Direction = &d
	}
	if o.Category != "" {
		c, err := parseCategory(o.Category)
		if err != nil {
			return reglog.Filter{}, err
		}
		f.Category = &c
	}
	return f, nil
}

func parseTimeFlag(name, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf("%s: want RFC3339, got %q", name, value)
	}
	return &t, nil
}

// RunFilter copies the matching events out of the trace at path into a
// new trace at opts.Output, and reports the kept count on w.
func RunFilter(path string, opts FilterOptions, w io.Writer) error {
	filter, err := opts.filter()
	if err != nil {
		return err
	}

	reader, err := reglog.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("open trace: %w", err)
	}
	defer reader.Close()

	out, err := reglog.NewFileLogger(opts.Output)
	if err != nil {
		return fmt.Errorf("create output trace: %w", err)
	}

	kept := 0
	err = forEachEvent(reader, func(event reglog.Event) error {
		out.Log(event)
		kept++
		return nil
	})
	if err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("write output trace: %w", err)
	}

	fmt.Fprintf(w, "Kept %d of the trace's events in %s\n", kept, opts.Output)
	return nil
}
