// Package actor provides Character, the actor aggregate that owns an
// active activity and the backlog of suspended ones.
package actor

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/nomis52/turnact/activity"
)

const (
	defaultSpeed      = 100
	defaultMaxStamina = 10000
	defaultRestRate   = 20
	maxMessages       = 50
)

// Messages sent to the character.
const (
	MsgResume = "You resume your task."
	MsgStop   = "You stop %s."
	MsgRooted = "You are rooted to the spot while %s."
)

// Environment is the part of the world a character interacts with.
type Environment interface {
	TargetOutOfBounds(inst *activity.Instance) bool
	RefuelFire(near activity.Point) bool
	ConstructionCounter(at activity.Point) (int, bool)
	DropItems(at activity.Point, items []Item)
}

// Item is something a character carries.
type Item struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Weight int            `json:"weight"`
	Book   *activity.Book `json:"book,omitempty"`
}

// Character is a player or non-player actor. It is not safe for concurrent
// use; the world serializes access.
type Character struct {
	logger  *slog.Logger
	env     Environment
	printer activity.Printer

	id       string
	name     string
	npc      bool
	position activity.Point

	speed      int
	moves      int
	stamina    int
	maxStamina int
	restRate   int
	rooted     bool
	// exertion is stamina spent by movement, charged when the next turn starts.
	exertion int

	act     *activity.Instance
	backlog []*activity.Instance

	skills     map[string]activity.SkillProgress
	identified map[string]bool
	inventory  []Item
	carryLimit int

	messages []string
}

// Option configures a Character.
type Option func(*Character)

// WithID overrides the generated identifier.
func WithID(id string) Option {
	return func(c *Character) {
		c.id = id
	}
}

// WithNPC marks the character as remotely simulated.
func WithNPC(npc bool) Option {
	return func(c *Character) {
		c.npc = npc
	}
}

// WithSpeed sets the moves gained each turn.
func WithSpeed(speed int) Option {
	return func(c *Character) {
		c.speed = speed
	}
}

// WithStamina sets current and maximum stamina.
func WithStamina(current, max int) Option {
	return func(c *Character) {
		c.stamina = current
		c.maxStamina = max
	}
}

// WithRestRate sets the stamina recovered by each pause.
func WithRestRate(rate int) Option {
	return func(c *Character) {
		c.restRate = rate
	}
}

// WithPosition places the character.
func WithPosition(p activity.Point) Option {
	return func(c *Character) {
		c.position = p
	}
}

// WithCarryLimit sets the weight above which items are dropped.
func WithCarryLimit(limit int) Option {
	return func(c *Character) {
		c.carryLimit = limit
	}
}

// WithExertion sets movement stamina still to be charged at the start of
// the next turn.
func WithExertion(exertion int) Option {
	return func(c *Character) {
		c.exertion = exertion
	}
}

// WithEnvironment connects the character to a world.
func WithEnvironment(env Environment) Option {
	return func(c *Character) {
		c.env = env
	}
}

// WithPrinter sets the printer used for messages.
func WithPrinter(p activity.Printer) Option {
	return func(c *Character) {
		c.printer = p
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Character) {
		c.logger = logger
	}
}

// New creates a character named name.
func New(name string, opts ...Option) *Character {
	c := &Character{
		logger:     slog.Default(),
		id:         uuid.NewString(),
		name:       name,
		speed:      defaultSpeed,
		stamina:    defaultMaxStamina,
		maxStamina: defaultMaxStamina,
		restRate:   defaultRestRate,
		skills:     make(map[string]activity.SkillProgress),
		identified: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "actor", "actor", c.id)
	return c
}

func (c *Character) ID() string { return c.id }
func (c *Character) Name() string { return c.name }
func (c *Character) IsNPC() bool { return c.npc }
func (c *Character) Position() activity.Point { return c.position }
func (c *Character) Speed() int { return c.speed }
func (c *Character) Moves() int { return c.moves }
func (c *Character) SetMoves(moves int) { c.moves = moves }
func (c *Character) Stamina() int { return c.stamina }
func (c *Character) MaxStamina() int { return c.maxStamina }
func (c *Character) IsRooted() bool { return c.rooted }
func (c *Character) RestRate() int { return c.restRate }
func (c *Character) CarryLimit() int { return c.carryLimit }

// Exertion is the stamina the next turn will charge for movement.
func (c *Character) Exertion() int { return c.exertion }

// SetPosition moves the character.
func (c *Character) SetPosition(p activity.Point) {
	c.position = p
}

// SetStamina sets stamina, clamped to [0, max].
func (c *Character) SetStamina(stamina int) {
	c.stamina = max(0, min(stamina, c.maxStamina))
}

// ModStamina adds delta to stamina, clamped to [0, max].
func (c *Character) ModStamina(delta int) {
	c.SetStamina(c.stamina + delta)
}

// StartTurn charges stamina for last turn's movement and grants the move
// budget for a new turn. Unspent moves do not carry over; a deficit does.
func (c *Character) StartTurn() {
	if c.exertion > 0 {
		c.ModStamina(-c.exertion)
		c.exertion = 0
	}
	c.moves = min(c.moves, 0) + c.speed
	c.rooted = false
}

// StepToward moves one tile toward dest and reports whether the character
// has arrived. The stamina cost is charged at the start of the next turn.
func (c *Character) StepToward(dest activity.Point, staminaCost int) bool {
	if c.position == dest {
		return true
	}
	c.position.X += sign(dest.X - c.position.X)
	c.position.Y += sign(dest.Y - c.position.Y)
	c.position.Z += sign(dest.Z - c.position.Z)
	c.exertion += staminaCost
	return c.position == dest
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// Root keeps the character in place for the rest of the turn.
func (c *Character) Root() {
	c.rooted = true
}

// Pause spends the rest of the turn resting.
func (c *Character) Pause() {
	c.moves = 0
	c.ModStamina(c.restRate)
}

// Message records a message for the character.
func (c *Character) Message(msg string) {
	c.messages = append(c.messages, msg)
	if len(c.messages) > maxMessages {
		c.messages = slices.Delete(c.messages, 0, len(c.messages)-maxMessages)
	}
	c.logger.Debug("message", "text", msg)
}

// Messages returns the most recent messages, oldest first.
func (c *Character) Messages() []string {
	return slices.Clone(c.messages)
}

func (c *Character) sprintf(key string, args ...any) string {
	if c.printer == nil {
		return fmt.Sprintf(key, args...)
	}
	return c.printer.Sprintf(key, args...)
}

var (
	_ activity.Actor          = (*Character)(nil)
	_ activity.ProgressReader = (*Character)(nil)
)
