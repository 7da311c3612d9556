package logging

import (
	"log/slog"
)

// LoggerHook decorates the base logger handed to engine components.
type LoggerHook interface {
	Wrap(base *slog.Logger) *slog.Logger
}

// ActorLogHook captures actor-tagged records into a LogCollector.
type ActorLogHook struct {
	collector *LogCollector
}

// NewActorLogHook creates a hook feeding collector.
func NewActorLogHook(collector *LogCollector) *ActorLogHook {
	return &ActorLogHook{collector: collector}
}

// Wrap returns a logger that writes through base and captures actor
// records.
func (h *ActorLogHook) Wrap(base *slog.Logger) *slog.Logger {
	return Capture(base, h.collector)
}

// Capture wraps base so that records tagged with ActorKey are collected.
func Capture(base *slog.Logger, collector *LogCollector) *slog.Logger {
	return slog.New(NewCapturingHandler(base.Handler(), collector))
}
