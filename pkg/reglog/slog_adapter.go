package reglog

import (
	"context"
	"log/slog"
)

// SlogAdapter mirrors traffic events into an slog.Logger at debug
// level, for watching register traffic on a console while a session
// runs. The trace file stays the durable record; this is a live view.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter returns an adapter writing to logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log emits the event as a single debug line.
func (a *SlogAdapter) Log(event Event) {
	attrs := make([]slog.Attr, 0, 10)
	attrs = append(attrs,
		slog.String("session_id", event.SessionID),
		slog.String("direction", event.Direction.String()),
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
	)
	if event.RemoteAddr != "" {
		attrs = append(attrs, slog.String("remote", event.RemoteAddr))
	}
	if event.Layout != "" {
		attrs = append(attrs, slog.String("layout", event.Layout))
	}
	attrs = append(attrs, payloadAttrs(event)...)

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "register traffic", attrs...)
}

// payloadAttrs renders whichever typed payload the event carries.
func payloadAttrs(event Event) []slog.Attr {
	switch {
	case event.Write != nil:
		return []slog.Attr{
			slog.Uint64("address", uint64(event.Write.Address)),
			slog.Int("size", event.Write.Size),
			slog.Bool("truncated", event.Write.Truncated),
		}
	case event.Read != nil:
		return []slog.Attr{
			slog.Uint64("address", uint64(event.Read.Address)),
			slog.Uint64("count", uint64(event.Read.Count)),
			slog.Int("size", event.Read.Size),
		}
	case event.Merge != nil:
		return []slog.Attr{
			slog.Int("pending", event.Merge.Pending),
			slog.Int("frames", event.Merge.Frames),
			slog.Int("bytes", event.Merge.Bytes),
			slog.Bool("optimized", event.Merge.Optimized),
		}
	case event.StateChange != nil:
		attrs := []slog.Attr{
			slog.String("entity", event.StateChange.Entity.String()),
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		}
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
		return attrs
	case event.Error != nil:
		attrs := []slog.Attr{
			slog.String("error_layer", event.Error.Layer.String()),
			slog.String("error_msg", event.Error.Message),
			slog.String("error_context", event.Error.Context),
		}
		if event.Error.Code != nil {
			attrs = append(attrs, slog.Int("error_code", *event.Error.Code))
		}
		return attrs
	}
	return nil
}

var _ Logger = (*SlogAdapter)(nil)
