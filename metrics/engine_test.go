package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nomis52/turnact/activity"
)

func TestEngineMetricsScrape(t *testing.T) {
	registry, err := NewScrapeRegistry()
	require.NoError(t, err)
	m, err := NewEngineMetrics(registry)
	require.NoError(t, err)

	m.ObserveTurn("a1", "ACT_PICKAXE", activity.OutcomeProgressed)
	m.ObserveTurn("a1", "ACT_PICKAXE", activity.OutcomeProgressed)
	m.ObserveTurn("a1", "ACT_PICKAXE", activity.OutcomeExhausted)
	m.ObserveResume("a1", "ACT_PICKAXE")
	m.ObserveBacklog("a1", 2)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	registry.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, `turns_total{kind="ACT_PICKAXE",outcome="progressed"} 2`)
	assert.Contains(t, body, `turns_total{kind="ACT_PICKAXE",outcome="exhausted"} 1`)
	assert.Contains(t, body, `resumes_total{kind="ACT_PICKAXE"} 1`)
	assert.Contains(t, body, `backlog_depth{actor="a1"} 2`)
	assert.Contains(t, body, "go_goroutines")
}

func TestEngineMetricsDuplicateRegistration(t *testing.T) {
	registry, err := NewScrapeRegistry()
	require.NoError(t, err)
	_, err = NewEngineMetrics(registry)
	require.NoError(t, err)

	_, err = NewEngineMetrics(registry)
	assert.Error(t, err)
}

func TestEngineMetricsPush(t *testing.T) {
	registry := NewPushRegistry(PushConfig{URL: "http://localhost"})
	m, err := NewEngineMetrics(registry)
	require.NoError(t, err)

	m.ObserveTurn("a1", "ACT_WAIT", activity.OutcomeCompleted)
	m.ObserveBacklog("a1", 0)
	m.ObserveBacklog("a2", 1)
	assert.Equal(t, 3, registry.Len())
}
