package activity

// Outcome reports what a single call to Scheduler.DoTurn did.
type Outcome int

const (
	// OutcomeIdle indicates the actor had no active instance; nothing changed.
	OutcomeIdle Outcome = iota

	// OutcomeProgressed indicates effort was spent and the instance is still active.
	OutcomeProgressed

	// OutcomeExhausted indicates the instance was moved to the backlog and a
	// stamina recovery instance took its place.
	OutcomeExhausted

	// OutcomeAborted indicates a remote actor's target left the loaded region
	// and the instance was dropped.
	OutcomeAborted

	// OutcomeCompleted indicates the instance finished or cleared itself this turn.
	OutcomeCompleted
)

// String returns a human-readable representation of the Outcome
func (o Outcome) String() string {
	switch o {
	case OutcomeIdle:
		return "idle"
	case OutcomeProgressed:
		return "progressed"
	case OutcomeExhausted:
		return "exhausted"
	case OutcomeAborted:
		return "aborted"
	case OutcomeCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}
