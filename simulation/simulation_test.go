package simulation

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nomis52/turnact/activity"
	"github.com/nomis52/turnact/config"
	"github.com/nomis52/turnact/logging"
	"github.com/nomis52/turnact/metrics"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func parseConfig(t *testing.T, doc string) *config.Config {
	t.Helper()
	cfg, err := config.Parse([]byte(doc), map[string]string{})
	require.NoError(t, err)
	return &cfg
}

func TestNew(t *testing.T) {
	cfg := parseConfig(t, `
engine:
  seed: 7
simulation:
  actors:
    - name: Ann
      activity: ACT_WAIT
      moves: 200
    - name: Bob
`)
	status := activity.NewStatusHandler()
	registry := metrics.NewPushRegistry(metrics.PushConfig{URL: "http://localhost:8428", Job: "test"})
	collector := logging.NewLogCollector(0)

	sim, err := New(cfg, discard,
		WithStatusCollection(status),
		WithMetricsRegistry(registry),
		WithLoggerHook(logging.NewActorLogHook(collector)),
	)
	require.NoError(t, err)
	require.NotNil(t, sim.Metrics)
	require.NoError(t, sim.Populate(cfg.Simulation.Actors))
	assert.Equal(t, 2, sim.World.Len())

	views := sim.World.ActorViews()
	require.Len(t, views, 2)
	ann, bob := views[0], views[1]
	assert.Equal(t, "ACT_WAIT", ann.Activity.Kind)
	assert.Empty(t, bob.Activity.Kind)
	assert.Equal(t, cfg.Simulation.MaxStamina, ann.MaxStamina)

	sim.World.Step()
	report := sim.World.Step()
	assert.Equal(t, activity.OutcomeCompleted, report.Outcomes[ann.ID])
	assert.Equal(t, activity.OutcomeIdle, report.Outcomes[bob.ID])
	assert.Positive(t, registry.Len())
	assert.NotEmpty(t, collector.Logs(ann.ID), "status line updates are captured per actor")
}

func TestNew_CatalogOverrideWithScript(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "quick.lua"), []byte(`
function progress(act)
  act.clear = true
end
`), 0o644))
	catalogFile := filepath.Join(dir, "kinds.yaml")
	require.NoError(t, os.WriteFile(catalogFile, []byte(`
kinds:
  - id: ACT_WAIT
    based_on: time
    verb: waiting
    hooks: script:quick.lua
`), 0o644))

	cfg := parseConfig(t, "catalog:\n  file: "+catalogFile+"\n  script_dir: "+dir+"\n")
	sim, err := New(cfg, discard)
	require.NoError(t, err)
	assert.Nil(t, sim.Metrics)

	c := sim.World.NewActor("Ann")
	require.NoError(t, sim.World.Assign(c.ID(), "ACT_WAIT", 10*activity.MovesPerTurn, false))
	report := sim.World.Step()
	assert.Equal(t, activity.OutcomeCompleted, report.Outcomes[c.ID()])
}

func TestNew_ScriptHooksNeedScriptDir(t *testing.T) {
	catalogFile := filepath.Join(t.TempDir(), "kinds.yaml")
	require.NoError(t, os.WriteFile(catalogFile, []byte(`
kinds:
  - id: ACT_SCRIPTED
    based_on: speed
    hooks: script:missing.lua
`), 0o644))

	_, err := New(parseConfig(t, "catalog:\n  file: "+catalogFile+"\n"), discard)
	assert.ErrorContains(t, err, "scripting is disabled")
}

func TestNew_UnknownRecoveryKind(t *testing.T) {
	cfg := parseConfig(t, "engine:\n  recovery_kind: ACT_NAP\n")
	_, err := New(cfg, discard)
	assert.ErrorIs(t, err, activity.ErrUnknownKind)
}

func TestPopulate_UnknownActivity(t *testing.T) {
	cfg := parseConfig(t, `
simulation:
  actors:
    - name: Ann
      activity: ACT_JUGGLE
      moves: 100
`)
	sim, err := New(cfg, discard)
	require.NoError(t, err)

	err = sim.Populate(cfg.Simulation.Actors)
	assert.ErrorIs(t, err, activity.ErrUnknownKind)
	assert.Equal(t, 1, sim.World.Len(), "the actor is kept, idle")
}
