package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/nomis52/turnact/activity"
)

// AssignRequest defines the request body for POST /api/actors/{id}/activity.
type AssignRequest struct {
	Kind        string          `json:"kind"`
	Moves       int             `json:"moves"`
	AllowResume bool            `json:"allow_resume"`
	Index       *int            `json:"index,omitempty"`
	Position    *int            `json:"position,omitempty"`
	Name        string          `json:"name,omitempty"`
	Placement   *activity.Point `json:"placement,omitempty"`
}

func (req AssignRequest) validate() error {
	if req.Kind == "" {
		return badRequest("kind is required")
	}
	if req.Moves < 0 {
		return badRequest("moves must not be negative, got %d", req.Moves)
	}
	return nil
}

func (req AssignRequest) options() []activity.InstanceOption {
	var opts []activity.InstanceOption
	if req.Index != nil {
		opts = append(opts, activity.WithIndex(*req.Index))
	}
	if req.Position != nil {
		opts = append(opts, activity.WithPosition(*req.Position))
	}
	if req.Name != "" {
		opts = append(opts, activity.WithName(req.Name))
	}
	if req.Placement != nil {
		opts = append(opts, activity.WithPlacement(*req.Placement))
	}
	return opts
}

// ActivityHandler assigns (POST) or cancels (DELETE) an actor's activity
// and responds with the actor's new state.
type ActivityHandler struct {
	controller ActivityController
	actors     ActorReader
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(controller ActivityController, actors ActorReader) *ActivityHandler {
	return &ActivityHandler{
		controller: controller,
		actors:     actors,
	}
}

// ServeHTTP implements http.Handler.
func (h *ActivityHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var err error
	switch r.Method {
	case http.MethodPost:
		var req AssignRequest
		if decodeErr := json.NewDecoder(r.Body).Decode(&req); decodeErr != nil {
			writeError(w, badRequest("invalid JSON: %v", decodeErr))
			return
		}
		if err := req.validate(); err != nil {
			writeError(w, err)
			return
		}
		err = h.controller.Assign(id, req.Kind, req.Moves, req.AllowResume, req.options()...)
	case http.MethodDelete:
		err = h.controller.Cancel(id)
	default:
		w.Header().Set("Allow", "POST, DELETE")
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "method not allowed"})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	view, err := h.actors.ActorView(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
