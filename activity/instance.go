package activity

import (
	"math"
)

// Instance is one in-progress activity. A nil *Instance and an instance
// whose kind has been cleared both mean "no activity"; every method is safe
// to call on either.
type Instance struct {
	kind *Kind

	MovesTotal int
	MovesLeft  int
	Index      int
	Position   int
	Name       string
	Placement  Point
	// AutoResume is set only by the engine when it pauses the instance
	// because the actor ran out of stamina.
	AutoResume bool
	Values     []int
	StrValues  []string
	Coords     []Point
	Targets    []Target

	ignored map[Distraction]struct{}
}

// InstanceOption configures a new Instance.
type InstanceOption func(*Instance)

// WithIndex sets the instance's index parameter.
func WithIndex(index int) InstanceOption {
	return func(i *Instance) {
		i.Index = index
	}
}

// WithPosition sets the instance's position parameter.
func WithPosition(position int) InstanceOption {
	return func(i *Instance) {
		i.Position = position
	}
}

// WithName sets the instance's name parameter.
func WithName(name string) InstanceOption {
	return func(i *Instance) {
		i.Name = name
	}
}

// WithPlacement sets where the activity happens.
func WithPlacement(p Point) InstanceOption {
	return func(i *Instance) {
		i.Placement = p
	}
}

// New creates an instance of kind with moves of effort remaining. A nil kind
// yields an inactive instance.
func New(kind *Kind, moves int, opts ...InstanceOption) *Instance {
	inst := &Instance{
		kind:       kind,
		MovesTotal: moves,
		MovesLeft:  moves,
		Index:      -1,
		Position:   math.MinInt,
		Placement:  Unset,
	}
	for _, opt := range opts {
		opt(inst)
	}
	return inst
}

// Active reports whether the instance represents an ongoing activity.
func (i *Instance) Active() bool {
	return i != nil && i.kind != nil
}

// Clear turns the instance into the empty activity.
func (i *Instance) Clear() {
	if i == nil {
		return
	}
	i.kind = nil
}

// Kind returns the instance's kind, nil when inactive.
func (i *Instance) Kind() *Kind {
	if !i.Active() {
		return nil
	}
	return i.kind
}

// ID returns the kind identifier, empty when inactive.
func (i *Instance) ID() string {
	if !i.Active() {
		return ""
	}
	return i.kind.id
}

func (i *Instance) Rooted() bool {
	return i.Active() && i.kind.rooted
}

func (i *Instance) StopPhrase() string {
	if !i.Active() {
		return ""
	}
	return i.kind.StopPhrase()
}

func (i *Instance) Verb() string {
	if !i.Active() {
		return ""
	}
	return i.kind.verb
}

func (i *Instance) IsSuspendable() bool {
	return i.Active() && i.kind.suspendable
}

func (i *Instance) IsMultiType() bool {
	return i.Active() && i.kind.multiActivity
}

// Value returns Values[index], or def when the slot does not exist.
func (i *Instance) Value(index, def int) int {
	if !i.Active() || index < 0 || index >= len(i.Values) {
		return def
	}
	return i.Values[index]
}

// StrValue returns StrValues[index], or def when the slot does not exist.
func (i *Instance) StrValue(index int, def string) string {
	if !i.Active() || index < 0 || index >= len(i.StrValues) {
		return def
	}
	return i.StrValues[index]
}
