package handlers

import (
	"log/slog"
	"net/http"
)

// StepHandler runs one turn and returns the per-actor outcomes.
type StepHandler struct {
	logger  *slog.Logger
	stepper Stepper
}

// NewStepHandler creates a new StepHandler.
func NewStepHandler(logger *slog.Logger, stepper Stepper) *StepHandler {
	return &StepHandler{
		logger:  logger,
		stepper: stepper,
	}
}

// ServeHTTP implements http.Handler.
func (h *StepHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	report, err := h.stepper.Step()
	if err != nil {
		writeError(w, err)
		return
	}
	h.logger.Debug("stepped world", "turn", report.Turn)
	writeJSON(w, http.StatusOK, report)
}
