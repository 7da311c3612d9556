package handlers

import (
	"log/slog"
	"net/http"
)

// SnapshotHandler takes a snapshot of the world.
type SnapshotHandler struct {
	logger    *slog.Logger
	snapshots SnapshotService
}

// NewSnapshotHandler creates a new SnapshotHandler.
func NewSnapshotHandler(logger *slog.Logger, snapshots SnapshotService) *SnapshotHandler {
	return &SnapshotHandler{
		logger:    logger,
		snapshots: snapshots,
	}
}

// ServeHTTP implements http.Handler.
func (h *SnapshotHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	summary, err := h.snapshots.TakeSnapshot()
	if err != nil {
		h.logger.Error("failed to take snapshot", "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, summary)
}

// SnapshotListHandler lists stored snapshots, newest first.
type SnapshotListHandler struct {
	snapshots SnapshotService
}

// NewSnapshotListHandler creates a new SnapshotListHandler.
func NewSnapshotListHandler(snapshots SnapshotService) *SnapshotListHandler {
	return &SnapshotListHandler{snapshots: snapshots}
}

// ServeHTTP implements http.Handler.
func (h *SnapshotListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.snapshots.Snapshots())
}

// SnapshotGetHandler returns the snapshot identified by the {id} path value.
type SnapshotGetHandler struct {
	snapshots SnapshotService
}

// NewSnapshotGetHandler creates a new SnapshotGetHandler.
func NewSnapshotGetHandler(snapshots SnapshotService) *SnapshotGetHandler {
	return &SnapshotGetHandler{snapshots: snapshots}
}

// ServeHTTP implements http.Handler.
func (h *SnapshotGetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	snap, err := h.snapshots.GetSnapshot(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// RestoreHandler replaces the world with a stored snapshot.
type RestoreHandler struct {
	logger    *slog.Logger
	snapshots SnapshotService
}

// NewRestoreHandler creates a new RestoreHandler.
func NewRestoreHandler(logger *slog.Logger, snapshots SnapshotService) *RestoreHandler {
	return &RestoreHandler{
		logger:    logger,
		snapshots: snapshots,
	}
}

// ServeHTTP implements http.Handler.
func (h *RestoreHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.snapshots.RestoreSnapshot(id); err != nil {
		h.logger.Error("failed to restore snapshot", "id", id, "error", err)
		writeError(w, err)
		return
	}
	h.logger.Info("restored snapshot", "id", id)
	w.WriteHeader(http.StatusNoContent)
}
