package world

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nomis52/turnact/activity"
	"github.com/nomis52/turnact/actor"
	"github.com/nomis52/turnact/catalog"
	"github.com/nomis52/turnact/snapshot"
)

func newTestWorld(t *testing.T, opts ...Option) *World {
	t.Helper()
	defs, err := catalog.Default()
	require.NoError(t, err)
	reg, err := catalog.Build(defs, catalog.NewResolver())
	require.NoError(t, err)
	sched, err := activity.NewScheduler(reg, activity.WithSeed(1))
	require.NoError(t, err)
	return New(reg, sched, opts...)
}

type backlogRecorder map[string]int

func (b backlogRecorder) ObserveBacklog(actorID string, depth int) {
	b[actorID] = depth
}

func TestRegionContains(t *testing.T) {
	r := Region{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10, MinZ: -1, MaxZ: 1}
	tests := []struct {
		name string
		p    activity.Point
		want bool
	}{
		{"inside", activity.Point{X: 5, Y: 5}, true},
		{"corner", activity.Point{X: 10, Y: 10, Z: 1}, true},
		{"west", activity.Point{X: -1, Y: 5}, false},
		{"too deep", activity.Point{X: 5, Y: 5, Z: -2}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Contains(tt.p))
		})
	}
}

func TestStepCompletesActivity(t *testing.T) {
	backlog := backlogRecorder{}
	status := activity.NewStatusHandler()
	w := newTestWorld(t, WithStatusHandler(status), WithBacklogObserver(backlog))
	c := w.NewActor("Ann")

	require.NoError(t, w.Assign(c.ID(), "ACT_WAIT", 2*activity.MovesPerTurn, false))
	st, ok := status.Get(c.ID())
	require.True(t, ok)
	assert.Equal(t, "waiting…", st.Message)

	report := w.Step()
	assert.Equal(t, int64(1), report.Turn)
	assert.Equal(t, activity.OutcomeProgressed, report.Outcomes[c.ID()])
	assert.Equal(t, 0, backlog[c.ID()])

	report = w.Step()
	assert.Equal(t, activity.OutcomeCompleted, report.Outcomes[c.ID()])
	assert.Equal(t, int64(2), w.Turn())

	_, ok = status.Get(c.ID())
	assert.False(t, ok, "idle actors have no status")

	report = w.Step()
	assert.Equal(t, activity.OutcomeIdle, report.Outcomes[c.ID()])
}

func TestAssignUnknown(t *testing.T) {
	w := newTestWorld(t)
	c := w.NewActor("Ann")

	err := w.Assign(c.ID(), "ACT_NOPE", 100, false)
	assert.ErrorIs(t, err, activity.ErrUnknownKind)

	err = w.Assign("missing", "ACT_WAIT", 100, false)
	assert.ErrorIs(t, err, ErrUnknownActor)
}

func TestAssignPushesBacklog(t *testing.T) {
	backlog := backlogRecorder{}
	w := newTestWorld(t, WithBacklogObserver(backlog))
	c := w.NewActor("Ann")

	require.NoError(t, w.Assign(c.ID(), "ACT_CRAFT", 5000, false))
	require.NoError(t, w.Assign(c.ID(), "ACT_WAIT", 500, false))
	w.Step()
	assert.Equal(t, 1, backlog[c.ID()])

	view, err := w.ActorView(c.ID())
	require.NoError(t, err)
	assert.Equal(t, "ACT_WAIT", view.Activity.Kind)
	require.Len(t, view.Backlog, 1)
	assert.Equal(t, "ACT_CRAFT", view.Backlog[0].Kind)
	assert.Equal(t, "Stop waiting?", view.Prompt)

	require.NoError(t, w.Cancel(c.ID()))
	view, err = w.ActorView(c.ID())
	require.NoError(t, err)
	assert.Empty(t, view.Activity.Kind)
	assert.Empty(t, view.Backlog, "cancel forgets backlog entries that weren't auto-paused")
}

func TestNPCOutOfBoundsAborts(t *testing.T) {
	w := newTestWorld(t, WithRegion(Region{MaxX: 10, MaxY: 10}))
	npc := w.NewActor("Bob", actor.WithNPC(true))
	player := w.NewActor("Ann")

	far := activity.WithPlacement(activity.Point{X: 50, Y: 50})
	require.NoError(t, w.Assign(npc.ID(), "ACT_BUILD", 5000, false, far))
	require.NoError(t, w.Assign(player.ID(), "ACT_BUILD", 5000, false, far))

	report := w.Step()
	assert.Equal(t, activity.OutcomeAborted, report.Outcomes[npc.ID()])
	assert.Equal(t, activity.OutcomeProgressed, report.Outcomes[player.ID()])
}

func TestTargetOutOfBounds(t *testing.T) {
	reg := newTestWorld(t).Registry()
	kind := reg.MustLookup("ACT_READ")

	unbounded := newTestWorld(t)
	bounded := newTestWorld(t, WithRegion(Region{MaxX: 10, MaxY: 10}))

	inside := activity.New(kind, 100, activity.WithPlacement(activity.Point{X: 1, Y: 1}))
	assert.False(t, bounded.TargetOutOfBounds(inside))

	coords := activity.New(kind, 100)
	coords.Coords = []activity.Point{{X: 1}, {X: 11}}
	assert.True(t, bounded.TargetOutOfBounds(coords))
	assert.False(t, unbounded.TargetOutOfBounds(coords))

	targets := activity.New(kind, 100)
	targets.Targets = []activity.Target{{ID: "carried", Pos: activity.Unset}, {ID: "far", Pos: activity.Point{Y: -3}}}
	assert.True(t, bounded.TargetOutOfBounds(targets))

	assert.False(t, bounded.TargetOutOfBounds(nil))
}

func TestFires(t *testing.T) {
	w := newTestWorld(t)
	tended := activity.Point{X: 1, Y: 1}
	untended := activity.Point{X: 20, Y: 20}
	w.AddFire(tended, 1)
	w.AddFire(untended, 1)

	c := w.NewActor("Ann", actor.WithPosition(activity.Point{}))
	require.NoError(t, w.Assign(c.ID(), "ACT_CRAFT", 5000, false))

	w.Step()
	fires := w.Fires()
	assert.Equal(t, 1, fires[tended])
	assert.NotContains(t, fires, untended)
}

func TestBuildProgressUsesConstructionCounter(t *testing.T) {
	w := newTestWorld(t)
	site := activity.Point{X: 3, Y: 4}
	w.SetConstruction(site, 4_200_000)

	c := w.NewActor("Ann")
	require.NoError(t, w.Assign(c.ID(), "ACT_BUILD", 5000, false, activity.WithPlacement(site)))

	view, err := w.ActorView(c.ID())
	require.NoError(t, err)
	assert.Equal(t, "building: 42%", view.Progress)
}

func TestDropItems(t *testing.T) {
	w := newTestWorld(t)
	c := w.NewActor("Ann", actor.WithCarryLimit(10), actor.WithPosition(activity.Point{X: 2}))
	require.NoError(t, w.Do(c.ID(), func(c *actor.Character) error {
		c.AddItem(actor.Item{ID: "rock", Name: "rock", Weight: 8})
		c.AddItem(actor.Item{ID: "anvil", Name: "anvil", Weight: 50})
		return nil
	}))
	require.NoError(t, w.Assign(c.ID(), "ACT_WAIT", activity.MovesPerTurn, false))

	w.Step()
	items := w.ItemsAt(activity.Point{X: 2})
	require.Len(t, items, 1)
	assert.Equal(t, "anvil", items[0].ID)
}

func TestDoUnknownActor(t *testing.T) {
	w := newTestWorld(t)
	err := w.Do("nobody", func(*actor.Character) error { return nil })
	assert.ErrorIs(t, err, ErrUnknownActor)

	_, err = w.ActorView("nobody")
	assert.ErrorIs(t, err, ErrUnknownActor)
}

func TestSnapshotRestore(t *testing.T) {
	taken := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	w := newTestWorld(t, WithClock(func() time.Time { return taken }))
	c := w.NewActor("Ann", actor.WithStamina(800, 1000), actor.WithPosition(activity.Point{X: 1, Y: 2}))
	require.NoError(t, w.Assign(c.ID(), "ACT_CRAFT", 5000, false))
	require.NoError(t, w.Assign(c.ID(), "ACT_READ", 3000, false))
	require.NoError(t, w.Do(c.ID(), func(c *actor.Character) error {
		c.Activity().IgnoreDistraction(activity.DistractionNoise)
		return nil
	}))
	w.Step()

	snap := w.Snapshot()
	assert.Equal(t, int64(1), snap.Turn)
	assert.Equal(t, taken, snap.TakenAt)
	require.Len(t, snap.Actors, 1)
	assert.Equal(t, "ACT_READ", snap.Actors[0].Activity.Kind)
	assert.Equal(t, 2900, snap.Actors[0].Activity.MovesLeft)

	restored := newTestWorld(t)
	require.NoError(t, restored.Restore(snap))
	assert.Equal(t, int64(1), restored.Turn())

	before, err := w.ActorView(c.ID())
	require.NoError(t, err)
	after, err := restored.ActorView(c.ID())
	require.NoError(t, err)
	assert.Equal(t, before.Activity, after.Activity)
	assert.Equal(t, before.Backlog, after.Backlog)
	assert.Equal(t, before.Stamina, after.Stamina)
	assert.Equal(t, before.Position, after.Position)
	assert.Equal(t, []activity.Distraction{activity.DistractionNoise}, after.Activity.IgnoredDistractions)
}

func TestSnapshotRestoreActorState(t *testing.T) {
	w := newTestWorld(t)
	c := w.NewActor("Ann", actor.WithStamina(800, 1000), actor.WithRestRate(35), actor.WithCarryLimit(20))
	manual := actor.Item{
		ID:     "i1",
		Name:   "fabrication manual",
		Weight: 2,
		Book:   &activity.Book{TypeID: "manual_fab", Skill: "fabrication", Level: 4},
	}
	require.NoError(t, w.Do(c.ID(), func(c *actor.Character) error {
		c.AddItem(manual)
		c.SetSkill("fabrication", activity.SkillProgress{Level: 1, Exercise: 60, Trainable: true})
		c.Identify("manual_fab")
		c.StepToward(activity.Point{X: 5}, 15)
		return nil
	}))

	restored := newTestWorld(t)
	require.NoError(t, restored.Restore(w.Snapshot()))
	require.NoError(t, restored.Do(c.ID(), func(rc *actor.Character) error {
		assert.Equal(t, []actor.Item{manual}, rc.Inventory())
		assert.Equal(t, c.Skills(), rc.Skills())
		assert.Equal(t, []string{"manual_fab"}, rc.Identified())
		assert.Equal(t, 35, rc.RestRate())
		assert.Equal(t, 20, rc.CarryLimit())
		assert.Equal(t, 15, rc.Exertion())
		return nil
	}))

	restored.Step()
	view, err := restored.ActorView(c.ID())
	require.NoError(t, err)
	assert.Equal(t, 785, view.Stamina, "deferred movement cost is charged after a restore")
}

func TestIdleTurnsDoNotBankMoves(t *testing.T) {
	w := newTestWorld(t)
	c := w.NewActor("Ann", actor.WithSpeed(100))
	for range 20 {
		report := w.Step()
		require.Equal(t, activity.OutcomeIdle, report.Outcomes[c.ID()])
	}

	require.NoError(t, w.Assign(c.ID(), "ACT_DIG", 1000, false))
	report := w.Step()
	assert.Equal(t, activity.OutcomeProgressed, report.Outcomes[c.ID()])
	require.True(t, c.HasActivity())
	assert.Equal(t, 900, c.Activity().MovesLeft)
}

func TestExhaustionRestsAndResumes(t *testing.T) {
	w := newTestWorld(t)
	c := w.NewActor("Ann", actor.WithStamina(500, 1000))
	require.NoError(t, w.Assign(c.ID(), "ACT_DIG", 100_000, false))

	var exhaustedTurn int64
	for exhaustedTurn == 0 && w.Turn() < 10 {
		report := w.Step()
		if report.Outcomes[c.ID()] == activity.OutcomeExhausted {
			exhaustedTurn = report.Turn
		}
	}
	require.Equal(t, int64(5), exhaustedTurn, "digging costs 40 stamina a turn, exhausted below 333")
	assert.Equal(t, 300, c.Stamina())

	rest := c.Activity()
	require.Equal(t, "ACT_WAIT_STAMINA", rest.ID())
	assert.Equal(t, activity.MovesPerMinute, rest.MovesTotal)
	assert.Equal(t, 533, rest.Value(0, 0))
	backlog := c.Backlog()
	require.Len(t, backlog, 1)
	assert.Equal(t, "ACT_DIG", backlog[0].ID())
	assert.True(t, backlog[0].AutoResume)

	resumed := false
	for !resumed && w.Turn() < exhaustedTurn+60 {
		report := w.Step()
		resumed = report.Outcomes[c.ID()] == activity.OutcomeCompleted && c.Activity().ID() == "ACT_DIG"
	}
	require.True(t, resumed, "dig resumes once stamina recovers")
	assert.GreaterOrEqual(t, c.Stamina(), 533)

	dig := c.Activity()
	assert.False(t, dig.AutoResume)
	assert.Equal(t, 100_000-5*activity.MovesPerTurn, dig.MovesLeft)
	assert.Zero(t, c.BacklogLen())

	report := w.Step()
	assert.Equal(t, activity.OutcomeProgressed, report.Outcomes[c.ID()])
}

func TestRestoreUnknownKindKeepsState(t *testing.T) {
	w := newTestWorld(t)
	c := w.NewActor("Ann")

	snap := snapshot.Snapshot{
		Turn: 7,
		Actors: []snapshot.ActorRecord{
			{ID: "x", Name: "Ghost", Activity: activity.Record{Kind: "ACT_GONE"}},
		},
	}
	err := w.Restore(snap)
	require.Error(t, err)
	assert.True(t, errors.Is(err, activity.ErrUnknownKind))

	assert.Equal(t, int64(0), w.Turn())
	_, err = w.ActorView(c.ID())
	assert.NoError(t, err)
}
