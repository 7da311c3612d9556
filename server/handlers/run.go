package handlers

import (
	"context"
	"net/http"
)

// RunHandler starts (POST) and stops (DELETE) background stepping.
type RunHandler struct {
	ctx    context.Context
	runner RunController
}

// NewRunHandler creates a new RunHandler. Runs started through it end
// when ctx is done.
func NewRunHandler(ctx context.Context, r RunController) *RunHandler {
	return &RunHandler{
		ctx:    ctx,
		runner: r,
	}
}

// ServeHTTP implements http.Handler.
func (h *RunHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		if err := h.runner.Start(h.ctx); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	case http.MethodDelete:
		if err := h.runner.Stop(); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.Header().Set("Allow", "POST, DELETE")
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "method not allowed"})
	}
}
