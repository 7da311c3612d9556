package activity

import "slices"

// CanResumeWith reports whether i, a freshly requested activity, describes
// the same task as backlogged so the backlogged progress can be adopted.
func (i *Instance) CanResumeWith(backlogged *Instance) bool {
	if !i.Active() || !backlogged.Active() || i.kind.NoResume() {
		return false
	}
	// An exhaustion pause is resumed by the engine, never merged into a new request.
	if backlogged.AutoResume || i.AutoResume {
		return false
	}
	if i.kind.id != backlogged.kind.id {
		return false
	}

	switch i.kind.category {
	case CategoryClearRubble:
		if len(i.Coords) == 0 || len(backlogged.Coords) == 0 || i.Coords[0] != backlogged.Coords[0] {
			return false
		}
	case CategoryRead:
		if !sameMembers(i.Values, backlogged.Values) {
			return false
		}
		if len(i.Targets) == 0 || len(backlogged.Targets) == 0 || i.Targets[0] != backlogged.Targets[0] {
			return false
		}
	case CategoryDig:
		if i.Placement != backlogged.Placement {
			return false
		}
		if !slices.Equal(i.Values, backlogged.Values) ||
			!slices.Equal(i.StrValues, backlogged.StrValues) ||
			!slices.Equal(i.Coords, backlogged.Coords) {
			return false
		}
	}

	return i.Index == backlogged.Index &&
		i.Position == backlogged.Position &&
		i.Name == backlogged.Name &&
		slices.Equal(i.Targets, backlogged.Targets)
}

// sameMembers compares participant lists ignoring order: readers may join a
// session in any order, but the group must not change.
func sameMembers(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for _, v := range a {
		if !slices.Contains(b, v) {
			return false
		}
	}
	for _, v := range b {
		if !slices.Contains(a, v) {
			return false
		}
	}
	return true
}
