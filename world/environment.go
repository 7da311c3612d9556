package world

import (
	"maps"

	"github.com/nomis52/turnact/activity"
	"github.com/nomis52/turnact/actor"
)

// The methods in this file are called by actors during Step, with the world
// lock held.

// TargetOutOfBounds reports whether any location the activity refers to is
// outside the loaded region.
func (w *World) TargetOutOfBounds(inst *activity.Instance) bool {
	if !w.bounded || !inst.Active() {
		return false
	}
	if inst.Placement.IsSet() && !w.region.Contains(inst.Placement) {
		return true
	}
	for _, p := range inst.Coords {
		if !w.region.Contains(p) {
			return true
		}
	}
	for _, t := range inst.Targets {
		if t.Pos.IsSet() && !w.region.Contains(t.Pos) {
			return true
		}
	}
	return false
}

// RefuelFire adds fuel to every fire adjacent to near on the same level.
func (w *World) RefuelFire(near activity.Point) bool {
	refuelled := false
	for at := range w.fires {
		if at.Z == near.Z && abs(at.X-near.X) <= 1 && abs(at.Y-near.Y) <= 1 {
			w.fires[at]++
			refuelled = true
		}
	}
	return refuelled
}

func (w *World) burnFires() {
	for at, fuel := range w.fires {
		if fuel <= 1 {
			delete(w.fires, at)
			w.logger.Debug("fire burnt out", "at", at.String())
			continue
		}
		w.fires[at] = fuel - 1
	}
}

// ConstructionCounter returns the progress counter of the construction at.
func (w *World) ConstructionCounter(at activity.Point) (int, bool) {
	counter, ok := w.constructions[at]
	return counter, ok
}

// DropItems leaves items on the ground.
func (w *World) DropItems(at activity.Point, items []actor.Item) {
	w.dropped[at] = append(w.dropped[at], items...)
}

// SetConstruction records the progress of a partial construction.
func (w *World) SetConstruction(at activity.Point, counter int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.constructions[at] = counter
}

// AddFire lights a fire with fuel turns of fuel.
func (w *World) AddFire(at activity.Point, fuel int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.fires[at] = fuel
}

// Fires returns the fuel left in each fire.
func (w *World) Fires() map[activity.Point]int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return maps.Clone(w.fires)
}

// ItemsAt returns the items lying at p.
func (w *World) ItemsAt(p activity.Point) []actor.Item {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]actor.Item(nil), w.dropped[p]...)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

var _ actor.Environment = (*World)(nil)
