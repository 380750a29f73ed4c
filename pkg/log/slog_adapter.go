package log

import (
	"context"
	"log/slog"
)

// SlogAdapter mirrors trace events to an slog.Logger at Debug level.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates an adapter writing to logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("session", event.SessionID),
		slog.String("direction", event.Direction.String()),
		slog.String("category", event.Category.String()),
	}
	if event.Federate != "" {
		attrs = append(attrs, slog.String("federate", event.Federate))
	}

	switch {
	case event.Call != nil:
		c := event.Call
		attrs = append(attrs, slog.String("call", c.Name))
		if c.Class != 0 {
			attrs = append(attrs, slog.Uint64("class", c.Class))
		}
		if c.Instance != 0 {
			attrs = append(attrs, slog.Uint64("instance", c.Instance))
		}
		if c.Label != "" {
			attrs = append(attrs, slog.String("label", c.Label))
		}
		if c.Time != nil {
			attrs = append(attrs, slog.Int64("time_us", *c.Time))
		}
		if len(c.Values) > 0 {
			attrs = append(attrs, slog.Int("values", len(c.Values)))
		}
		if c.Result != "" {
			attrs = append(attrs, slog.String("result", c.Result))
		}
		if c.Duration != nil {
			attrs = append(attrs, slog.Duration("took", *c.Duration))
		}
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("entity", event.StateChange.Entity.String()),
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Name != "" {
			attrs = append(attrs, slog.String("name", event.StateChange.Name))
		}
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_msg", event.Error.Message),
			slog.String("error_context", event.Error.Context),
		)
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "trace", attrs...)
}

var _ Logger = (*SlogAdapter)(nil)
