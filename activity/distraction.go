package activity

import (
	"fmt"
	"slices"
)

// Distraction classifies events that can interrupt an activity.
type Distraction int

const (
	DistractionNoise Distraction = iota
	DistractionPain
	DistractionAttacked
	DistractionHostileSpottedFar
	DistractionHostileSpottedNear
	DistractionTalkedTo
	DistractionAsthma
	DistractionMotionAlarm
	DistractionWeatherChange
)

var distractionNames = []string{
	DistractionNoise:              "noise",
	DistractionPain:               "pain",
	DistractionAttacked:           "attacked",
	DistractionHostileSpottedFar:  "hostile_spotted_far",
	DistractionHostileSpottedNear: "hostile_spotted_near",
	DistractionTalkedTo:           "talked_to",
	DistractionAsthma:             "asthma",
	DistractionMotionAlarm:        "motion_alarm",
	DistractionWeatherChange:      "weather_change",
}

// String returns a human-readable representation of the Distraction
func (d Distraction) String() string {
	if d < 0 || int(d) >= len(distractionNames) {
		return "unknown"
	}
	return distractionNames[d]
}

// MarshalText implements encoding.TextMarshaler.
func (d Distraction) MarshalText() ([]byte, error) {
	if d < 0 || int(d) >= len(distractionNames) {
		return nil, fmt.Errorf("invalid distraction %d", int(d))
	}
	return []byte(distractionNames[d]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Distraction) UnmarshalText(text []byte) error {
	idx := slices.Index(distractionNames, string(text))
	if idx < 0 {
		return fmt.Errorf("unknown distraction %q", string(text))
	}
	*d = Distraction(idx)
	return nil
}

// IsDistractionIgnored reports whether d is currently suppressed.
func (i *Instance) IsDistractionIgnored(d Distraction) bool {
	if i == nil {
		return false
	}
	_, ok := i.ignored[d]
	return ok
}

// IgnoreDistraction suppresses d for the rest of the activity.
func (i *Instance) IgnoreDistraction(d Distraction) {
	if i == nil {
		return
	}
	if i.ignored == nil {
		i.ignored = make(map[Distraction]struct{})
	}
	i.ignored[d] = struct{}{}
}

// AllowDistractions removes every suppression.
func (i *Instance) AllowDistractions() {
	if i == nil {
		return
	}
	clear(i.ignored)
}

// InheritDistractions adds every distraction other ignores.
func (i *Instance) InheritDistractions(other *Instance) {
	if i == nil || other == nil {
		return
	}
	for d := range other.ignored {
		i.IgnoreDistraction(d)
	}
}

// IgnoredDistractions returns the suppressed distractions in enum order.
func (i *Instance) IgnoredDistractions() []Distraction {
	if i == nil || len(i.ignored) == 0 {
		return nil
	}
	out := make([]Distraction, 0, len(i.ignored))
	for d := range i.ignored {
		out = append(out, d)
	}
	slices.Sort(out)
	return out
}
