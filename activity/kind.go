package activity

import (
	"fmt"
)

// TimeBasis selects how an actor's move budget is converted into progress.
type TimeBasis int

const (
	// BasedOnTime consumes a fixed MovesPerTurn of effort each turn regardless of speed.
	BasedOnTime TimeBasis = iota
	// BasedOnSpeed converts the actor's move budget 1:1 into effort.
	BasedOnSpeed
	// BasedOnNeither leaves moves alone; the progress hook decides when the activity ends.
	BasedOnNeither
)

// String returns a human-readable representation of the TimeBasis
func (b TimeBasis) String() string {
	switch b {
	case BasedOnTime:
		return "time"
	case BasedOnSpeed:
		return "speed"
	case BasedOnNeither:
		return "neither"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (b TimeBasis) MarshalText() ([]byte, error) {
	if !b.valid() {
		return nil, fmt.Errorf("invalid time basis %d", int(b))
	}
	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *TimeBasis) UnmarshalText(text []byte) error {
	switch string(text) {
	case "time":
		*b = BasedOnTime
	case "speed":
		*b = BasedOnSpeed
	case "neither":
		*b = BasedOnNeither
	default:
		return fmt.Errorf("unknown time basis %q", string(text))
	}
	return nil
}

func (b TimeBasis) valid() bool {
	return b >= BasedOnTime && b <= BasedOnNeither
}

// Category is the closed set of kind families that get special treatment when
// rendering progress or matching a backlogged instance.
type Category int

const (
	CategoryGeneric Category = iota
	CategoryCraft
	CategoryRead
	// CategoryExcavation reports percent complete from moves.
	CategoryExcavation
	// CategoryDig reports percent complete like excavation and only resumes
	// at the same placement with identical parameters.
	CategoryDig
	CategoryBuild
	CategoryClearRubble
	CategoryTravel
	CategoryWaitStamina
)

var categoryNames = map[Category]string{
	CategoryGeneric:     "generic",
	CategoryCraft:       "craft",
	CategoryRead:        "read",
	CategoryExcavation:  "excavation",
	CategoryDig:         "dig",
	CategoryBuild:       "build",
	CategoryClearRubble: "clear_rubble",
	CategoryTravel:      "travel",
	CategoryWaitStamina: "wait_stamina",
}

// String returns a human-readable representation of the Category
func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	name, ok := categoryNames[c]
	if !ok {
		return nil, fmt.Errorf("invalid category %d", int(c))
	}
	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(text []byte) error {
	for cat, name := range categoryNames {
		if name == string(text) {
			*c = cat
			return nil
		}
	}
	return fmt.Errorf("unknown category %q", string(text))
}

// KindSpec is the registration-time description of a Kind.
type KindSpec struct {
	ID            string
	TimeBasis     TimeBasis
	Category      Category
	Suspendable   bool
	Resumable     bool
	MultiActivity bool
	Rooted        bool
	RefuelsFires  bool
	// DefersStaminaCost marks kinds that spend their stamina after the turn
	// ends, so the exhaustion check treats them as one point worse off.
	DefersStaminaCost bool
	// Verb is a message key, translated through a Printer.
	Verb string
	// StopPhrase defaults to "Stop <verb>?" when empty.
	StopPhrase string
}

// Kind is the immutable, shared descriptor of an activity type. Kinds are
// only created by a Registry.
type Kind struct {
	id                string
	timeBasis         TimeBasis
	category          Category
	suspendable       bool
	resumable         bool
	multiActivity     bool
	rooted            bool
	refuelsFires      bool
	defersStaminaCost bool
	verb              string
	stopPhrase        string
	hooks             Hooks
}

func newKind(spec KindSpec, hooks Hooks) *Kind {
	if hooks == nil {
		hooks = HookFuncs{}
	}
	return &Kind{
		id:                spec.ID,
		timeBasis:         spec.TimeBasis,
		category:          spec.Category,
		suspendable:       spec.Suspendable,
		resumable:         spec.Resumable,
		multiActivity:     spec.MultiActivity,
		rooted:            spec.Rooted,
		refuelsFires:      spec.RefuelsFires,
		defersStaminaCost: spec.DefersStaminaCost,
		verb:              spec.Verb,
		stopPhrase:        spec.StopPhrase,
		hooks:             hooks,
	}
}

func (k *Kind) ID() string { return k.id }
func (k *Kind) TimeBasis() TimeBasis { return k.timeBasis }
func (k *Kind) Category() Category { return k.category }
func (k *Kind) Suspendable() bool { return k.suspendable }
func (k *Kind) NoResume() bool { return !k.resumable }
func (k *Kind) MultiActivity() bool { return k.multiActivity }
func (k *Kind) Rooted() bool { return k.rooted }
func (k *Kind) RefuelsFires() bool { return k.refuelsFires }
func (k *Kind) DefersStaminaCost() bool { return k.defersStaminaCost }
func (k *Kind) Verb() string { return k.verb }

// StopPhrase is the question asked before interrupting the activity.
func (k *Kind) StopPhrase() string {
	if k.stopPhrase == "" && k.verb != "" {
		return fmt.Sprintf(MsgStopPhrase, k.verb)
	}
	return k.stopPhrase
}

// Spec returns the description the kind was registered with. StopPhrase
// is empty when the default applies.
func (k *Kind) Spec() KindSpec {
	return KindSpec{
		ID:                k.id,
		TimeBasis:         k.timeBasis,
		Category:          k.category,
		Suspendable:       k.suspendable,
		Resumable:         k.resumable,
		MultiActivity:     k.multiActivity,
		Rooted:            k.rooted,
		RefuelsFires:      k.refuelsFires,
		DefersStaminaCost: k.defersStaminaCost,
		Verb:              k.verb,
		StopPhrase:        k.stopPhrase,
	}
}

// Hooks is the per-kind behavior supplied outside the engine.
type Hooks interface {
	// Progress runs once per turn after moves have been spent. It may clear
	// the instance to signal completion.
	Progress(inst *Instance, a Actor)
	// Finish runs when moves_left reaches zero. Returning false means the
	// engine clears the instance itself.
	Finish(inst *Instance, a Actor) bool
}

// HookFuncs adapts plain functions to Hooks. Nil fields are no-ops.
type HookFuncs struct {
	OnProgress func(inst *Instance, a Actor)
	OnFinish   func(inst *Instance, a Actor) bool
}

func (h HookFuncs) Progress(inst *Instance, a Actor) {
	if h.OnProgress != nil {
		h.OnProgress(inst, a)
	}
}

func (h HookFuncs) Finish(inst *Instance, a Actor) bool {
	if h.OnFinish == nil {
		return false
	}
	return h.OnFinish(inst, a)
}
