package actor

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nomis52/turnact/activity"
)

type fakeEnv struct {
	outOfBounds bool
	fires       []activity.Point
	counters    map[activity.Point]int
	dropped     []Item
}

func (e *fakeEnv) TargetOutOfBounds(*activity.Instance) bool { return e.outOfBounds }

func (e *fakeEnv) RefuelFire(near activity.Point) bool {
	e.fires = append(e.fires, near)
	return true
}

func (e *fakeEnv) ConstructionCounter(at activity.Point) (int, bool) {
	v, ok := e.counters[at]
	return v, ok
}

func (e *fakeEnv) DropItems(_ activity.Point, items []Item) {
	e.dropped = append(e.dropped, items...)
}

func testKinds(t *testing.T) *activity.Registry {
	t.Helper()
	reg := activity.NewRegistry()
	for _, spec := range []activity.KindSpec{
		{ID: "ACT_WAIT_STAMINA", Verb: "catching your breath"},
		{ID: "ACT_DIG", TimeBasis: activity.BasedOnSpeed, Category: activity.CategoryDig, Suspendable: true, Resumable: true, Verb: "digging"},
		{ID: "ACT_READ", TimeBasis: activity.BasedOnSpeed, Category: activity.CategoryRead, Suspendable: true, Resumable: true, Verb: "reading"},
		{ID: "ACT_WAIT", Verb: "waiting", StopPhrase: "Stop waiting around?"},
		{ID: "ACT_MEDITATE", Rooted: true, Verb: "meditating"},
	} {
		_, err := reg.Register(spec, nil)
		require.NoError(t, err)
	}
	return reg
}

func TestNew(t *testing.T) {
	c := New("Ada")
	_, err := uuid.Parse(c.ID())
	assert.NoError(t, err)
	assert.Equal(t, "Ada", c.Name())
	assert.Equal(t, defaultMaxStamina, c.MaxStamina())
	assert.False(t, c.HasActivity())

	c = New("Bob", WithID("bob"), WithNPC(true), WithSpeed(80), WithStamina(10, 100))
	assert.Equal(t, "bob", c.ID())
	assert.True(t, c.IsNPC())
	assert.Equal(t, 80, c.Speed())
	assert.Equal(t, 10, c.Stamina())
}

func TestStamina(t *testing.T) {
	c := New("Ada", WithStamina(50, 100), WithRestRate(30))
	c.ModStamina(-80)
	assert.Equal(t, 0, c.Stamina())
	c.SetStamina(500)
	assert.Equal(t, 100, c.Stamina())

	c.SetStamina(10)
	c.StartTurn()
	assert.Equal(t, 100, c.Moves())
	c.Root()
	c.Pause()
	assert.Equal(t, 0, c.Moves())
	assert.Equal(t, 40, c.Stamina())
	assert.True(t, c.IsRooted())
	c.StartTurn()
	assert.False(t, c.IsRooted())
}

func TestAssignActivity(t *testing.T) {
	reg := testKinds(t)
	dig := reg.MustLookup("ACT_DIG")

	t.Run("pushes current to backlog", func(t *testing.T) {
		c := New("Ada")
		first := activity.New(dig, 1000, activity.WithPlacement(activity.Point{X: 1}))
		first.IgnoreDistraction(activity.DistractionNoise)
		c.AssignActivity(first, true)

		second := activity.New(reg.MustLookup("ACT_READ"), 500)
		c.AssignActivity(second, true)

		assert.Same(t, second, c.Activity())
		assert.Equal(t, []*activity.Instance{first}, c.Backlog())
		assert.True(t, second.IsDistractionIgnored(activity.DistractionNoise))
	})

	t.Run("resumes matching backlog entry", func(t *testing.T) {
		c := New("Ada")
		old := activity.New(dig, 1000, activity.WithPlacement(activity.Point{X: 1}))
		old.MovesLeft = 300
		c.PushBacklog(old)

		c.AssignActivity(activity.New(dig, 1000, activity.WithPlacement(activity.Point{X: 1})), true)
		assert.Same(t, old, c.Activity())
		assert.Equal(t, 0, c.BacklogLen())
		assert.Equal(t, []string{MsgResume}, c.Messages())
	})

	t.Run("resume not allowed", func(t *testing.T) {
		c := New("Ada")
		old := activity.New(dig, 1000)
		c.PushBacklog(old)

		fresh := activity.New(dig, 1000)
		c.AssignActivity(fresh, false)
		assert.Same(t, fresh, c.Activity())
		assert.Equal(t, 1, c.BacklogLen())
	})

	t.Run("exhaustion pause is not merged", func(t *testing.T) {
		c := New("Ada")
		old := activity.New(dig, 1000)
		old.AutoResume = true
		c.PushBacklog(old)

		fresh := activity.New(dig, 1000)
		c.AssignActivity(fresh, true)
		assert.Same(t, fresh, c.Activity())
	})

	t.Run("rooted notice", func(t *testing.T) {
		c := New("Ada")
		c.AssignActivity(activity.New(reg.MustLookup("ACT_MEDITATE"), 100), true)
		assert.Equal(t, []string{"You are rooted to the spot while meditating."}, c.Messages())
	})
}

func TestCancelActivity(t *testing.T) {
	reg := testKinds(t)

	c := New("Ada")
	paused := activity.New(reg.MustLookup("ACT_DIG"), 100)
	paused.AutoResume = true
	chosen := activity.New(reg.MustLookup("ACT_READ"), 100)
	c.RestoreActivities(nil, []*activity.Instance{chosen, paused})

	current := activity.New(reg.MustLookup("ACT_DIG"), 100)
	c.SetActivity(current)
	c.CancelActivity()

	assert.Nil(t, c.Activity())
	assert.Equal(t, []*activity.Instance{current, paused}, c.Backlog())
	assert.Equal(t, []string{"You stop digging."}, c.Messages())

	c.SetActivity(activity.New(reg.MustLookup("ACT_WAIT"), 100))
	c.CancelActivity()
	assert.Equal(t, []*activity.Instance{paused}, c.Backlog(), "non-suspendable activity is dropped")
}

func TestResumeBacklogActivity(t *testing.T) {
	reg := testKinds(t)
	c := New("Ada")
	assert.False(t, c.ResumeBacklogActivity())

	chosen := activity.New(reg.MustLookup("ACT_DIG"), 100)
	c.PushBacklog(chosen)
	assert.False(t, c.ResumeBacklogActivity())

	paused := activity.New(reg.MustLookup("ACT_READ"), 100)
	paused.AutoResume = true
	paused.IgnoreDistraction(activity.DistractionPain)
	c.PushBacklog(paused)

	require.True(t, c.ResumeBacklogActivity())
	assert.Same(t, paused, c.Activity())
	assert.False(t, paused.AutoResume)
	assert.False(t, paused.IsDistractionIgnored(activity.DistractionPain))
	assert.Equal(t, []*activity.Instance{chosen}, c.Backlog())
}

func TestInterruptionPrompt(t *testing.T) {
	reg := testKinds(t)
	c := New("Ada")
	assert.Empty(t, c.InterruptionPrompt())

	c.SetActivity(activity.New(reg.MustLookup("ACT_DIG"), 100))
	assert.Equal(t, "Stop digging?", c.InterruptionPrompt())

	c.SetActivity(activity.New(reg.MustLookup("ACT_WAIT"), 100))
	assert.Equal(t, "Stop waiting around?", c.InterruptionPrompt())
}

func TestEnvironment(t *testing.T) {
	site := activity.Point{X: 3, Y: 3}
	env := &fakeEnv{outOfBounds: true, counters: map[activity.Point]int{site: 500_000}}
	c := New("Ada", WithEnvironment(env), WithCarryLimit(10), WithPosition(site))

	assert.True(t, c.ActivityOutOfBounds(nil))
	c.RefuelFire(nil)
	assert.Equal(t, []activity.Point{site}, env.fires)
	counter, ok := c.ConstructionCounter(site)
	assert.True(t, ok)
	assert.Equal(t, 500_000, counter)

	c.AddItem(Item{ID: "a", Name: "rock", Weight: 6})
	c.AddItem(Item{ID: "b", Name: "log", Weight: 8})
	c.DropInvalidInventory()
	assert.Equal(t, []Item{{ID: "b", Name: "log", Weight: 8}}, env.dropped)
	assert.Len(t, c.Inventory(), 1)

	bare := New("Bob")
	assert.False(t, bare.ActivityOutOfBounds(nil))
	_, ok = bare.ConstructionCounter(site)
	assert.False(t, ok)
}

func TestProgressReader(t *testing.T) {
	reg := testKinds(t)
	c := New("Ada")
	c.AddItem(Item{ID: "b1", Name: "textbook", Book: &activity.Book{TypeID: "tb", Skill: "survival", SkillName: "survival", Level: 4}})
	c.SetSkill("survival", activity.SkillProgress{Level: 2, Exercise: 10, Trainable: true})
	c.Identify("tb")

	inst := activity.New(reg.MustLookup("ACT_READ"), 100)
	inst.Targets = []activity.Target{{ID: "b1"}}
	msg, ok := inst.ProgressMessage(c, nil)
	require.True(t, ok)
	assert.Equal(t, "reading: survival 2 -> 3 (10%)", msg)

	name, ok := c.ItemName(activity.Target{ID: "b1"})
	assert.True(t, ok)
	assert.Equal(t, "textbook", name)
	_, ok = c.Book(activity.Target{ID: "nope"})
	assert.False(t, ok)
}

func TestMessagesBounded(t *testing.T) {
	c := New("Ada")
	for i := 0; i < maxMessages+5; i++ {
		c.Message("m")
	}
	assert.Len(t, c.Messages(), maxMessages)
}

func TestStepToward(t *testing.T) {
	c := New("Ada", WithStamina(100, 100), WithPosition(activity.Point{}))
	dest := activity.Point{X: 2, Y: -1}

	assert.False(t, c.StepToward(dest, 5))
	assert.Equal(t, activity.Point{X: 1, Y: -1}, c.Position())
	assert.Equal(t, 100, c.Stamina(), "movement is charged next turn")

	assert.True(t, c.StepToward(dest, 5))
	c.StartTurn()
	assert.Equal(t, 90, c.Stamina())
	assert.True(t, c.StepToward(dest, 5))
	c.StartTurn()
	assert.Equal(t, 90, c.Stamina())
}

func TestStartTurnDoesNotBankMoves(t *testing.T) {
	c := New("Ada", WithSpeed(100))
	for range 20 {
		c.StartTurn()
	}
	assert.Equal(t, 100, c.Moves(), "unspent moves are lost")

	c.SetMoves(-30)
	c.StartTurn()
	assert.Equal(t, 70, c.Moves(), "a deficit is carried into the next turn")
}

func TestPersistedState(t *testing.T) {
	c := New("Ada", WithRestRate(35), WithCarryLimit(12), WithExertion(8), WithStamina(100, 100))
	assert.Equal(t, 35, c.RestRate())
	assert.Equal(t, 12, c.CarryLimit())
	assert.Equal(t, 8, c.Exertion())

	c.SetSkill("fabrication", activity.SkillProgress{Level: 2, Exercise: 40, Trainable: true})
	c.Identify("book_z")
	c.Identify("book_a")
	assert.Equal(t, []string{"book_a", "book_z"}, c.Identified())

	skills := c.Skills()
	skills["fabrication"] = activity.SkillProgress{}
	assert.Equal(t, 2, c.Skill("fabrication").Level, "Skills returns a copy")

	c.StartTurn()
	assert.Equal(t, 92, c.Stamina())
	assert.Zero(t, c.Exertion())
}
