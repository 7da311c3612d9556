package activity

import (
	"fmt"
	"slices"
)

// Record is the persistable form of an Instance. An empty Kind records the
// empty activity.
type Record struct {
	Kind                string        `json:"kind" yaml:"kind"`
	MovesTotal          int           `json:"moves_total" yaml:"moves_total"`
	MovesLeft           int           `json:"moves_left" yaml:"moves_left"`
	Index               int           `json:"index" yaml:"index"`
	Position            int           `json:"position" yaml:"position"`
	Name                string        `json:"name,omitempty" yaml:"name,omitempty"`
	Placement           Point         `json:"placement" yaml:"placement"`
	AutoResume          bool          `json:"auto_resume,omitempty" yaml:"auto_resume,omitempty"`
	Values              []int         `json:"values,omitempty" yaml:"values,omitempty"`
	StrValues           []string      `json:"str_values,omitempty" yaml:"str_values,omitempty"`
	Coords              []Point       `json:"coords,omitempty" yaml:"coords,omitempty"`
	Targets             []Target      `json:"targets,omitempty" yaml:"targets,omitempty"`
	IgnoredDistractions []Distraction `json:"ignored_distractions,omitempty" yaml:"ignored_distractions,omitempty"`
}

// Record captures every field of the instance.
func (i *Instance) Record() Record {
	if !i.Active() {
		return Record{}
	}
	return Record{
		Kind:                i.kind.id,
		MovesTotal:          i.MovesTotal,
		MovesLeft:           i.MovesLeft,
		Index:               i.Index,
		Position:            i.Position,
		Name:                i.Name,
		Placement:           i.Placement,
		AutoResume:          i.AutoResume,
		Values:              slices.Clone(i.Values),
		StrValues:           slices.Clone(i.StrValues),
		Coords:              slices.Clone(i.Coords),
		Targets:             slices.Clone(i.Targets),
		IgnoredDistractions: i.IgnoredDistractions(),
	}
}

// Restore rebuilds an instance from rec. The empty record restores to nil.
func (r *Registry) Restore(rec Record) (*Instance, error) {
	if rec.Kind == "" {
		return nil, nil
	}
	kind, ok := r.Lookup(rec.Kind)
	if !ok {
		return nil, fmt.Errorf("restoring activity: %w: %q", ErrUnknownKind, rec.Kind)
	}
	inst := &Instance{
		kind:       kind,
		MovesTotal: rec.MovesTotal,
		MovesLeft:  rec.MovesLeft,
		Index:      rec.Index,
		Position:   rec.Position,
		Name:       rec.Name,
		Placement:  rec.Placement,
		AutoResume: rec.AutoResume,
		Values:     slices.Clone(rec.Values),
		StrValues:  slices.Clone(rec.StrValues),
		Coords:     slices.Clone(rec.Coords),
		Targets:    slices.Clone(rec.Targets),
	}
	for _, d := range rec.IgnoredDistractions {
		inst.IgnoreDistraction(d)
	}
	return inst, nil
}
