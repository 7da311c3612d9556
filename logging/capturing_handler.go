package logging

import (
	"context"
	"log/slog"
)

// ActorKey is the attribute that identifies which actor a record is about.
const ActorKey = "actor"

// CapturingHandler passes records through to another handler and keeps a
// copy of every record that carries an actor attribute. Records are
// captured at all levels; the underlying handler still applies its own.
type CapturingHandler struct {
	underlying slog.Handler
	collector  *LogCollector
	attrs      []slog.Attr
	// grouped is set once WithGroup has been called; later attributes no
	// longer sit at the top level and can't name the actor.
	grouped bool
}

// NewCapturingHandler wraps underlying.
func NewCapturingHandler(underlying slog.Handler, collector *LogCollector) *CapturingHandler {
	return &CapturingHandler{
		underlying: underlying,
		collector:  collector,
	}
}

func (h *CapturingHandler) Enabled(context.Context, slog.Level) bool {
	return true
}

func (h *CapturingHandler) Handle(ctx context.Context, r slog.Record) error {
	entry := LogEntry{
		Time:       r.Time,
		Level:      r.Level.String(),
		Message:    r.Message,
		Attributes: make(map[string]any, r.NumAttrs()+len(h.attrs)),
	}
	for _, attr := range h.attrs {
		entry.Attributes[attr.Key] = resolveValue(attr.Value)
	}
	if !h.grouped {
		r.Attrs(func(a slog.Attr) bool {
			entry.Attributes[a.Key] = resolveValue(a.Value)
			return true
		})
	}

	if actorID, ok := entry.Attributes[ActorKey].(string); ok && actorID != "" {
		h.collector.Add(actorID, entry)
	}

	if !h.underlying.Enabled(ctx, r.Level) {
		return nil
	}
	return h.underlying.Handle(ctx, r)
}

func (h *CapturingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.underlying = h.underlying.WithAttrs(attrs)
	if !h.grouped {
		next.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	}
	return &next
}

func (h *CapturingHandler) WithGroup(name string) slog.Handler {
	next := *h
	next.underlying = h.underlying.WithGroup(name)
	next.grouped = true
	return &next
}

// resolveValue converts a slog.Value into something encoding/json can
// serve.
func resolveValue(v slog.Value) any {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindInt64:
		return v.Int64()
	case slog.KindUint64:
		return v.Uint64()
	case slog.KindFloat64:
		return v.Float64()
	case slog.KindBool:
		return v.Bool()
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time()
	case slog.KindGroup:
		attrs := v.Group()
		group := make(map[string]any, len(attrs))
		for _, attr := range attrs {
			group[attr.Key] = resolveValue(attr.Value)
		}
		return group
	default:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return v.Any()
	}
}
