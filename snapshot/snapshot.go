// Package snapshot persists the state of a world: every actor's stats,
// inventory, current activity and backlog, so that a simulation can be
// restored.
package snapshot

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/nomis52/turnact/activity"
	"github.com/nomis52/turnact/actor"
)

// ErrNotFound is returned when no snapshot matches a lookup.
var ErrNotFound = errors.New("snapshot not found")

// ActorRecord is the saved state of one actor.
type ActorRecord struct {
	ID         string                            `json:"id"`
	Name       string                            `json:"name"`
	NPC        bool                              `json:"npc,omitempty"`
	Position   activity.Point                    `json:"position"`
	Speed      int                               `json:"speed"`
	Moves      int                               `json:"moves"`
	Stamina    int                               `json:"stamina"`
	MaxStamina int                               `json:"max_stamina"`
	RestRate   int                               `json:"rest_rate,omitempty"`
	CarryLimit int                               `json:"carry_limit,omitempty"`
	// Exertion is movement stamina charged when the next turn starts.
	Exertion   int                               `json:"exertion,omitempty"`
	Activity   activity.Record                   `json:"activity"`
	Backlog    []activity.Record                 `json:"backlog,omitempty"`
	Inventory  []actor.Item                      `json:"inventory,omitempty"`
	Skills     map[string]activity.SkillProgress `json:"skills,omitempty"`
	Identified []string                          `json:"identified,omitempty"`
}

// Snapshot is the state of a world at the end of a turn.
type Snapshot struct {
	ID      string        `json:"id"`
	Turn    int64         `json:"turn"`
	TakenAt time.Time     `json:"taken_at"`
	Actors  []ActorRecord `json:"actors"`
}

// Summary describes a snapshot without its actor records.
type Summary struct {
	ID      string    `json:"id"`
	Turn    int64     `json:"turn"`
	TakenAt time.Time `json:"taken_at"`
	Actors  int       `json:"actors"`
	// Active counts actors with an activity in progress.
	Active int `json:"active"`
}

// CalculateID derives a stable identifier from the snapshot contents.
func (s Snapshot) CalculateID() string {
	s.ID = ""
	data, err := json.Marshal(s)
	if err != nil {
		// Snapshot contains only plain data; marshalling cannot fail.
		panic(err)
	}
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:8])
}

// Summary returns the snapshot's summary.
func (s Snapshot) Summary() Summary {
	active := 0
	for _, a := range s.Actors {
		if a.Activity.Kind != "" {
			active++
		}
	}
	return Summary{
		ID:      s.ID,
		Turn:    s.Turn,
		TakenAt: s.TakenAt,
		Actors:  len(s.Actors),
		Active:  active,
	}
}

// Store persists snapshots. List returns the most recent first.
type Store interface {
	List() []Summary
	Get(id string) (Snapshot, error)
	Latest() (Snapshot, error)
	// Save stores s, computing its ID if empty, and returns its summary.
	Save(s Snapshot) (Summary, error)
}

func withID(s Snapshot) Snapshot {
	if s.ID == "" {
		s.ID = s.CalculateID()
	}
	return s
}
