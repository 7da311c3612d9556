// Package world runs the turn loop: it owns the actors, the parts of the map
// their activities touch, and the scheduler that advances them.
package world

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nomis52/turnact/activity"
	"github.com/nomis52/turnact/actor"
)

// ErrUnknownActor is returned for an actor ID the world doesn't hold.
var ErrUnknownActor = errors.New("unknown actor")

// BacklogObserver is told each actor's backlog depth after every turn.
type BacklogObserver interface {
	ObserveBacklog(actorID string, depth int)
}

// Region is the loaded part of the map. Coordinates are inclusive.
type Region struct {
	MinX int `yaml:"min_x" json:"min_x"`
	MinY int `yaml:"min_y" json:"min_y"`
	MaxX int `yaml:"max_x" json:"max_x"`
	MaxY int `yaml:"max_y" json:"max_y"`
	MinZ int `yaml:"min_z" json:"min_z"`
	MaxZ int `yaml:"max_z" json:"max_z"`
}

// Contains reports whether p lies inside the region.
func (r Region) Contains(p activity.Point) bool {
	return p.X >= r.MinX && p.X <= r.MaxX &&
		p.Y >= r.MinY && p.Y <= r.MaxY &&
		p.Z >= r.MinZ && p.Z <= r.MaxZ
}

// TurnReport summarizes one call to Step.
type TurnReport struct {
	Turn     int64                       `json:"turn"`
	Outcomes map[string]activity.Outcome `json:"outcomes"`
}

// World is safe for concurrent use. Steps are serialized; actors must only
// be touched through World methods once added.
type World struct {
	mu sync.Mutex

	logger    *slog.Logger
	base      *slog.Logger
	scheduler *activity.Scheduler
	registry  *activity.Registry
	printer   activity.Printer
	status    *activity.StatusHandler
	backlog   BacklogObserver
	clock     func() time.Time

	region   Region
	bounded  bool
	defaults []actor.Option

	turn   int64
	actors []*actor.Character
	byID   map[string]*actor.Character
	lines  map[string]*activity.StatusLine

	constructions map[activity.Point]int
	fires         map[activity.Point]int
	dropped       map[activity.Point][]actor.Item
}

// Option configures a World.
type Option func(*World)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *World) {
		w.base = logger
		w.logger = logger.With("component", "world")
	}
}

// WithPrinter sets the printer used for progress messages.
func WithPrinter(p activity.Printer) Option {
	return func(w *World) {
		w.printer = p
	}
}

// WithStatusHandler publishes progress messages to h.
func WithStatusHandler(h *activity.StatusHandler) Option {
	return func(w *World) {
		w.status = h
	}
}

// WithBacklogObserver reports backlog depths to o.
func WithBacklogObserver(o BacklogObserver) Option {
	return func(w *World) {
		w.backlog = o
	}
}

// WithRegion limits the loaded map. Without it everything is loaded.
func WithRegion(r Region) Option {
	return func(w *World) {
		w.region = r
		w.bounded = true
	}
}

// WithActorDefaults sets options applied to every actor created by NewActor
// or Restore, before the caller's own options.
func WithActorDefaults(opts ...actor.Option) Option {
	return func(w *World) {
		w.defaults = append(w.defaults, opts...)
	}
}

// WithClock overrides the time source used for snapshots.
func WithClock(clock func() time.Time) Option {
	return func(w *World) {
		w.clock = clock
	}
}

// New creates an empty world.
func New(reg *activity.Registry, sched *activity.Scheduler, opts ...Option) *World {
	w := &World{
		logger:        slog.Default().With("component", "world"),
		base:          slog.Default(),
		scheduler:     sched,
		registry:      reg,
		clock:         time.Now,
		byID:          make(map[string]*actor.Character),
		lines:         make(map[string]*activity.StatusLine),
		constructions: make(map[activity.Point]int),
		fires:         make(map[activity.Point]int),
		dropped:       make(map[activity.Point][]actor.Item),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Registry returns the registry kinds are looked up in.
func (w *World) Registry() *activity.Registry {
	return w.registry
}

// NewActor creates a character connected to this world and adds it.
func (w *World) NewActor(name string, opts ...actor.Option) *actor.Character {
	w.mu.Lock()
	defer w.mu.Unlock()
	c := w.newCharacter(name, opts...)
	w.add(c)
	return c
}

func (w *World) newCharacter(name string, opts ...actor.Option) *actor.Character {
	all := []actor.Option{
		actor.WithEnvironment(w),
		actor.WithLogger(w.base),
	}
	if w.printer != nil {
		all = append(all, actor.WithPrinter(w.printer))
	}
	all = append(all, w.defaults...)
	all = append(all, opts...)
	return actor.New(name, all...)
}

func (w *World) add(c *actor.Character) {
	w.actors = append(w.actors, c)
	w.byID[c.ID()] = c
	w.lines[c.ID()] = activity.NewStatusLine(c.ID(), w.logger, w.status)
}

// Turn returns the number of completed turns.
func (w *World) Turn() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.turn
}

// Len returns the number of actors.
func (w *World) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.actors)
}

// Do runs fn with exclusive access to the actor.
func (w *World) Do(actorID string, fn func(c *actor.Character) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	c, ok := w.byID[actorID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownActor, actorID)
	}
	return fn(c)
}

// Assign starts a new activity of kind for the actor.
func (w *World) Assign(actorID, kind string, moves int, allowResume bool, opts ...activity.InstanceOption) error {
	k, ok := w.registry.Lookup(kind)
	if !ok {
		return fmt.Errorf("%w: %q", activity.ErrUnknownKind, kind)
	}
	return w.Do(actorID, func(c *actor.Character) error {
		c.AssignActivity(activity.New(k, moves, opts...), allowResume)
		w.lines[c.ID()].Update(c.Activity(), c, w.printer)
		return nil
	})
}

// Cancel stops the actor's current activity.
func (w *World) Cancel(actorID string) error {
	return w.Do(actorID, func(c *actor.Character) error {
		c.CancelActivity()
		w.lines[c.ID()].Update(c.Activity(), c, w.printer)
		return nil
	})
}

// Step runs one turn for every actor, in the order they were added.
func (w *World) Step() TurnReport {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.turn++
	report := TurnReport{Turn: w.turn, Outcomes: make(map[string]activity.Outcome, len(w.actors))}
	for _, c := range w.actors {
		c.StartTurn()
		outcome := w.scheduler.DoTurn(c)
		report.Outcomes[c.ID()] = outcome
		w.lines[c.ID()].Update(c.Activity(), c, w.printer)
		if w.backlog != nil {
			w.backlog.ObserveBacklog(c.ID(), c.BacklogLen())
		}
	}
	w.burnFires()
	w.logger.Debug("turn complete", "turn", w.turn, "actors", len(w.actors))
	return report
}
