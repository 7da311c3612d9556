package activity

import "fmt"

// Actor is what the scheduler needs from the character performing an activity.
type Actor interface {
	ID() string

	// Moves is the remaining move budget for this turn.
	Moves() int
	SetMoves(moves int)

	Stamina() int
	MaxStamina() int

	// IsNPC reports whether the actor is simulated remotely rather than
	// controlled by a player.
	IsNPC() bool
	// ActivityOutOfBounds reports whether the target of inst is outside
	// the loaded region.
	ActivityOutOfBounds(inst *Instance) bool

	RefuelFire(inst *Instance)
	Root()
	Pause()
	DropInvalidInventory()

	Activity() *Instance
	SetActivity(inst *Instance)
	// PushBacklog places inst at the front of the backlog.
	PushBacklog(inst *Instance)
	// ResumeBacklogActivity restores the backlog front if the engine paused
	// it, and reports whether it did.
	ResumeBacklogActivity() bool

	Message(msg string)
}

// Book describes a readable item.
type Book struct {
	TypeID    string `json:"type_id"`
	Skill     string `json:"skill"`
	SkillName string `json:"skill_name,omitempty"`
	// Level is the skill level the book teaches up to.
	Level int `json:"level"`
}

// SkillProgress is an actor's standing in one skill.
type SkillProgress struct {
	Level     int  `json:"level"`
	Exercise  int  `json:"exercise"`
	Trainable bool `json:"trainable"`
}

// ProgressReader supplies the world and inventory facts a progress message
// needs. Any method may report that the fact is unavailable.
type ProgressReader interface {
	ItemName(t Target) (string, bool)
	Book(t Target) (Book, bool)
	Skill(skill string) SkillProgress
	HasIdentified(typeID string) bool
	ConstructionCounter(at Point) (int, bool)
}

// Printer renders a message key with arguments, usually translating it.
type Printer interface {
	Sprintf(key string, args ...any) string
}

func sprintf(p Printer, key string, args ...any) string {
	if p == nil {
		return fmt.Sprintf(key, args...)
	}
	return p.Sprintf(key, args...)
}
