package handlers

import (
	"net/http"

	"github.com/nomis52/turnact/buildinfo"
)

// HealthResponse is the JSON response for /health.
type HealthResponse struct {
	Status string `json:"status"`
	buildinfo.Properties
}

// HandleHealth reports that the server is up, with the build it runs.
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:     "ok",
		Properties: buildinfo.Get(),
	})
}
