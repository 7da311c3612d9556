package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/nomis52/turnact/server/runner"
)

// ReloadHandler rebuilds the engine from the configuration on disk. Actors
// are carried over into the new world. While the simulation runs the
// request is refused with 409 and a hint to stop it first.
type ReloadHandler struct {
	logger   *slog.Logger
	reloader Reloader
}

// NewReloadHandler creates a new ReloadHandler.
func NewReloadHandler(logger *slog.Logger, reloader Reloader) *ReloadHandler {
	return &ReloadHandler{
		logger:   logger,
		reloader: reloader,
	}
}

// ServeHTTP implements http.Handler.
func (h *ReloadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	err := h.reloader.Reload()
	switch {
	case err == nil:
		h.logger.Info("engine rebuilt from configuration")
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, runner.ErrRunInProgress):
		h.logger.Warn("reload refused while running")
		writeJSON(w, http.StatusConflict, ErrorResponse{
			Error: "cannot reload while the simulation runs; stop it with DELETE /api/run first",
		})
	default:
		h.logger.Error("failed to reload configuration", "error", err)
		writeJSON(w, errorStatus(err), ErrorResponse{
			Error: "failed to reload configuration: " + err.Error(),
		})
	}
}
