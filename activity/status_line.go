package activity

import (
	"log/slog"
)

// StatusLine reports the progress of one actor's activity. It logs changes
// and forwards them to the shared handler.
type StatusLine struct {
	logger  *slog.Logger
	handler *StatusHandler
	actorID string
	last    string
}

// NewStatusLine creates a status line bound to an actor.
// The handler is optional; without one updates are only logged.
func NewStatusLine(actorID string, logger *slog.Logger, handler *StatusHandler) *StatusLine {
	return &StatusLine{
		logger:  logger,
		handler: handler,
		actorID: actorID,
	}
}

// Update renders the progress message of inst and publishes it. Inactive
// instances and kinds without a verb clear the status.
func (sl *StatusLine) Update(inst *Instance, r ProgressReader, p Printer) {
	msg, ok := inst.ProgressMessage(r, p)
	if !ok {
		sl.clear()
		return
	}
	if msg != sl.last {
		sl.logger.Info(msg, "actor", sl.actorID, "kind", inst.ID())
		sl.last = msg
	}
	if sl.handler != nil {
		sl.handler.Set(sl.actorID, inst.ID(), msg)
	}
}

func (sl *StatusLine) clear() {
	if sl.last != "" {
		sl.logger.Debug("activity status cleared", "actor", sl.actorID)
	}
	sl.last = ""
	if sl.handler != nil {
		sl.handler.Remove(sl.actorID)
	}
}
