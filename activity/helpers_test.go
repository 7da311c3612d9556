package activity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeActor struct {
	id         string
	moves      int
	stamina    int
	maxStamina int
	npc        bool
	outOfBound bool

	act     *Instance
	backlog []*Instance

	refuels  int
	roots    int
	pauses   int
	drops    int
	messages []string
}

func newFakeActor() *fakeActor {
	return &fakeActor{id: "a1", moves: 100, stamina: 1000, maxStamina: 1000}
}

func (f *fakeActor) ID() string { return f.id }
func (f *fakeActor) Moves() int { return f.moves }
func (f *fakeActor) SetMoves(m int) { f.moves = m }
func (f *fakeActor) Stamina() int { return f.stamina }
func (f *fakeActor) MaxStamina() int { return f.maxStamina }
func (f *fakeActor) IsNPC() bool { return f.npc }
func (f *fakeActor) ActivityOutOfBounds(*Instance) bool { return f.outOfBound }
func (f *fakeActor) RefuelFire(*Instance) { f.refuels++ }
func (f *fakeActor) Root() { f.roots++ }
func (f *fakeActor) Pause() { f.pauses++; f.moves = 0 }
func (f *fakeActor) DropInvalidInventory() { f.drops++ }
func (f *fakeActor) Activity() *Instance { return f.act }
func (f *fakeActor) SetActivity(inst *Instance) { f.act = inst }
func (f *fakeActor) Message(msg string) { f.messages = append(f.messages, msg) }
func (f *fakeActor) PushBacklog(inst *Instance) {
	f.backlog = append([]*Instance{inst}, f.backlog...)
}

func (f *fakeActor) ResumeBacklogActivity() bool {
	if len(f.backlog) == 0 || !f.backlog[0].AutoResume {
		return false
	}
	f.act = f.backlog[0]
	f.act.AutoResume = false
	f.backlog = f.backlog[1:]
	return true
}

// testRegistry registers the kinds used across the package tests.
func testRegistry(t *testing.T) *Registry {
	t.Helper()
	reg := NewRegistry()
	specs := []KindSpec{
		{ID: "ACT_WAIT_STAMINA", TimeBasis: BasedOnTime, Category: CategoryWaitStamina, Verb: "catching your breath"},
		{ID: "ACT_WAIT", TimeBasis: BasedOnTime, Verb: "waiting"},
		{ID: "ACT_PICKAXE", TimeBasis: BasedOnSpeed, Category: CategoryExcavation, Suspendable: true, Resumable: true, Verb: "digging"},
		{ID: "ACT_DIG", TimeBasis: BasedOnSpeed, Category: CategoryDig, Suspendable: true, Resumable: true, Verb: "digging"},
		{ID: "ACT_READ", TimeBasis: BasedOnSpeed, Category: CategoryRead, Suspendable: true, Resumable: true, Verb: "reading"},
		{ID: "ACT_CRAFT", TimeBasis: BasedOnSpeed, Category: CategoryCraft, Suspendable: true, Resumable: true, Verb: "crafting"},
		{ID: "ACT_BUILD", TimeBasis: BasedOnSpeed, Category: CategoryBuild, Suspendable: true, Resumable: true, Verb: "building"},
		{ID: "ACT_CLEAR_RUBBLE", TimeBasis: BasedOnSpeed, Category: CategoryClearRubble, Resumable: true, Verb: "clearing rubble"},
		{ID: "ACT_TRAVELLING", TimeBasis: BasedOnNeither, Category: CategoryTravel, DefersStaminaCost: true, Verb: "travelling"},
		{ID: "ACT_FIRSTAID", TimeBasis: BasedOnSpeed, Verb: "bandaging"},
		{ID: "ACT_MEDITATE", TimeBasis: BasedOnTime, Rooted: true},
		{ID: "ACT_FIRE", TimeBasis: BasedOnTime, RefuelsFires: true},
	}
	for _, spec := range specs {
		_, err := reg.Register(spec, nil)
		require.NoError(t, err)
	}
	return reg
}

type fakeReader struct {
	items      map[string]string
	books      map[string]Book
	skills     map[string]SkillProgress
	identified map[string]bool
	counters   map[Point]int
}

func (r *fakeReader) ItemName(t Target) (string, bool) {
	name, ok := r.items[t.ID]
	return name, ok
}

func (r *fakeReader) Book(t Target) (Book, bool) {
	b, ok := r.books[t.ID]
	return b, ok
}

func (r *fakeReader) Skill(skill string) SkillProgress { return r.skills[skill] }
func (r *fakeReader) HasIdentified(typeID string) bool { return r.identified[typeID] }

func (r *fakeReader) ConstructionCounter(at Point) (int, bool) {
	c, ok := r.counters[at]
	return c, ok
}
