package handlers

import (
	"net/http"
	"strconv"

	"github.com/nomis52/turnact/logging"
	"github.com/nomis52/turnact/world"
)

// ActorDetail is an actor's state plus the log records captured for it.
type ActorDetail struct {
	world.ActorView
	Logs []logging.LogEntry `json:"logs"`
}

// ActorsHandler lists every actor.
type ActorsHandler struct {
	actors ActorReader
}

// NewActorsHandler creates a new ActorsHandler.
func NewActorsHandler(actors ActorReader) *ActorsHandler {
	return &ActorsHandler{actors: actors}
}

// ServeHTTP implements http.Handler.
func (h *ActorsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.actors.ActorViews())
}

// ActorHandler returns one actor, identified by the {id} path value.
// The optional logs query parameter keeps only the newest n log records.
type ActorHandler struct {
	actors ActorReader
	logs   LogProvider
}

// NewActorHandler creates a new ActorHandler.
func NewActorHandler(actors ActorReader, logs LogProvider) *ActorHandler {
	return &ActorHandler{
		actors: actors,
		logs:   logs,
	}
}

// ServeHTTP implements http.Handler.
func (h *ActorHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	limit := -1
	if v := r.URL.Query().Get("logs"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, badRequest("logs must be a non-negative integer, got %q", v))
			return
		}
		limit = n
	}

	view, err := h.actors.ActorView(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	logs := h.logs.Logs(view.ID)
	if logs == nil {
		logs = []logging.LogEntry{}
	}
	if limit >= 0 && len(logs) > limit {
		logs = logs[len(logs)-limit:]
	}
	writeJSON(w, http.StatusOK, ActorDetail{ActorView: view, Logs: logs})
}
