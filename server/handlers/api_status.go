package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/nomis52/turnact/activity"
	"github.com/nomis52/turnact/server/runner"
	"github.com/nomis52/turnact/server/types"
	"github.com/nomis52/turnact/snapshot"
)

// NextRunResponse describes the next scheduled snapshot.
type NextRunResponse struct {
	Scheduled bool       `json:"scheduled"`
	NextRun   *time.Time `json:"next_run,omitempty"`
}

// APIStatusResponse is the consolidated response for /api/status.
type APIStatusResponse struct {
	Server types.ServerProperties `json:"server"`
	Uptime string                 `json:"uptime"`
	Turn   int64            `json:"turn"`
	Actors int              `json:"actors"`
	Run    runner.RunStatus `json:"run"`
	// Progress is the latest progress message per busy actor.
	Progress       map[string]activity.Status `json:"progress"`
	NextSnapshot   NextRunResponse            `json:"next_snapshot"`
	LatestSnapshot *snapshot.Summary          `json:"latest_snapshot,omitempty"`
}

// APIStatusProvider aggregates all the providers needed for the status endpoint.
type APIStatusProvider interface {
	RunStatusProvider
	NextSnapshotProvider
	Turn() int64
	ActorCount() int
	Progress() map[string]activity.Status
	LatestSnapshot() (snapshot.Summary, error)
	Properties() types.ServerProperties
}

// APIStatusHandler handles requests for the consolidated status endpoint.
type APIStatusHandler struct {
	logger   *slog.Logger
	provider APIStatusProvider
}

// NewAPIStatusHandler creates a new APIStatusHandler.
func NewAPIStatusHandler(logger *slog.Logger, provider APIStatusProvider) *APIStatusHandler {
	return &APIStatusHandler{
		logger:   logger,
		provider: provider,
	}
}

// ServeHTTP implements http.Handler.
func (h *APIStatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	next := h.provider.NextSnapshot()
	props := h.provider.Properties()
	resp := APIStatusResponse{
		Server:   props,
		Uptime:   props.Uptime(time.Now()).String(),
		Turn:     h.provider.Turn(),
		Actors:   h.provider.ActorCount(),
		Run:      h.provider.Status(),
		Progress: h.provider.Progress(),
		NextSnapshot: NextRunResponse{
			Scheduled: next != nil,
			NextRun:   next,
		},
	}

	latest, err := h.provider.LatestSnapshot()
	switch {
	case err == nil:
		resp.LatestSnapshot = &latest
	case !errors.Is(err, snapshot.ErrNotFound):
		h.logger.Error("failed to read latest snapshot", "error", err)
	}

	writeJSON(w, http.StatusOK, resp)
}
