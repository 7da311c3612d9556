package runner

import (
	"fmt"
	"time"
)

// RunState is whether the world is being stepped in the background.
type RunState int

const (
	RunStateIdle RunState = iota
	RunStateRunning
)

// String returns the string representation of the run state.
func (s RunState) String() string {
	switch s {
	case RunStateIdle:
		return "idle"
	case RunStateRunning:
		return "running"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s RunState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *RunState) UnmarshalText(text []byte) error {
	switch string(text) {
	case "idle":
		*s = RunStateIdle
	case "running":
		*s = RunStateRunning
	default:
		return fmt.Errorf("unknown run state %q", string(text))
	}
	return nil
}

// RunStatus describes the current or last background run.
type RunStatus struct {
	State RunState `json:"state"`
	// StartedAt is nil until the first run.
	StartedAt *time.Time `json:"started_at,omitempty"`
	// StoppedAt is nil while running.
	StoppedAt *time.Time `json:"stopped_at,omitempty"`
	Interval  string     `json:"interval"`
	// Turns counts turns run by this runner, including single steps.
	Turns    int64 `json:"turns"`
	LastTurn int64 `json:"last_turn"`
	// Outcomes tallies the last turn's outcomes by name.
	Outcomes map[string]int `json:"outcomes,omitempty"`
}
