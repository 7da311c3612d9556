package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nomis52/turnact/activity"
	"github.com/nomis52/turnact/server/runner"
	"github.com/nomis52/turnact/world"
)

type mockRunner struct {
	running bool
	turn    int64
}

func (m *mockRunner) Start(context.Context) error {
	if m.running {
		return runner.ErrRunInProgress
	}
	m.running = true
	return nil
}

func (m *mockRunner) Stop() error {
	if !m.running {
		return runner.ErrNotRunning
	}
	m.running = false
	return nil
}

func (m *mockRunner) Step() (world.TurnReport, error) {
	if m.running {
		return world.TurnReport{}, runner.ErrRunInProgress
	}
	m.turn++
	return world.TurnReport{
		Turn:     m.turn,
		Outcomes: map[string]activity.Outcome{"a1": activity.OutcomeProgressed},
	}, nil
}

func serve(t *testing.T, h http.Handler, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRunHandler(t *testing.T) {
	r := &mockRunner{}
	handler := NewRunHandler(context.Background(), r)

	assert.Equal(t, http.StatusAccepted, serve(t, handler, http.MethodPost, "/api/run", nil).Code)
	assert.True(t, r.running)

	w := serve(t, handler, http.MethodPost, "/api/run", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "already running")

	assert.Equal(t, http.StatusNoContent, serve(t, handler, http.MethodDelete, "/api/run", nil).Code)
	assert.Equal(t, http.StatusConflict, serve(t, handler, http.MethodDelete, "/api/run", nil).Code)

	w = serve(t, handler, http.MethodGet, "/api/run", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "POST, DELETE", w.Header().Get("Allow"))
}

func TestStepHandler(t *testing.T) {
	r := &mockRunner{}
	handler := NewStepHandler(slog.Default(), r)

	w := serve(t, handler, http.MethodPost, "/api/step", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"turn":1,"outcomes":{"a1":"progressed"}}`, w.Body.String())

	r.running = true
	w = serve(t, handler, http.MethodPost, "/api/step", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}
