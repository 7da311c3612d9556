package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/nomis52/turnact/activity"
	"github.com/nomis52/turnact/server/runner"
	"github.com/nomis52/turnact/snapshot"
	"github.com/nomis52/turnact/world"
)

// ErrorResponse is returned when an error occurs.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, errorStatus(err), ErrorResponse{Error: err.Error()})
}

// errorStatus maps engine and server errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, world.ErrUnknownActor), errors.Is(err, snapshot.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, runner.ErrRunInProgress), errors.Is(err, runner.ErrNotRunning):
		return http.StatusConflict
	case errors.Is(err, activity.ErrUnknownKind), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}
