package activity

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
)

const (
	// MovesPerTurn is the effort one unit of elapsed game time is worth.
	MovesPerTurn = 100
	// MovesPerMinute is one in-game minute expressed in moves.
	MovesPerMinute = 60 * MovesPerTurn

	DefaultRecoveryKind      = "ACT_WAIT_STAMINA"
	DefaultRecoveryBonus     = 200
	DefaultExhaustionDivisor = 3
	DefaultBreathOdds        = 50

	MsgCatchBreath = "You pause for a moment to catch your breath."
)

// Observer is notified about every turn the scheduler runs.
type Observer interface {
	ObserveTurn(actorID, kindID string, outcome Outcome)
	ObserveResume(actorID, kindID string)
}

// Scheduler advances actors' activities one turn at a time. It holds no
// per-actor state; callers must not run DoTurn concurrently for one actor.
type Scheduler struct {
	logger   *slog.Logger
	printer  Printer
	observer Observer
	rng      *rand.Rand

	recoveryID        string
	recovery          *Kind
	recoveryMoves     int
	recoveryBonus     int
	exhaustionDivisor int
	breathOdds        int
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger.With("component", "scheduler")
	}
}

// WithPrinter sets the printer used for messages sent to actors.
func WithPrinter(p Printer) Option {
	return func(s *Scheduler) {
		s.printer = p
	}
}

// WithObserver registers an observer for turn outcomes.
func WithObserver(o Observer) Option {
	return func(s *Scheduler) {
		s.observer = o
	}
}

// WithSeed makes the catch-your-breath roll deterministic.
func WithSeed(seed uint64) Option {
	return func(s *Scheduler) {
		s.rng = rand.New(rand.NewPCG(seed, seed))
	}
}

// WithRecoveryKind sets the kind installed when an actor is exhausted.
func WithRecoveryKind(id string) Option {
	return func(s *Scheduler) {
		s.recoveryID = id
	}
}

// WithRecoveryMoves sets how long a recovery instance lasts.
func WithRecoveryMoves(moves int) Option {
	return func(s *Scheduler) {
		s.recoveryMoves = moves
	}
}

// WithExhaustion sets the recovery target bonus and the fraction of maximum
// stamina below which an actor counts as exhausted.
func WithExhaustion(bonus, divisor int) Option {
	return func(s *Scheduler) {
		s.recoveryBonus = bonus
		s.exhaustionDivisor = divisor
	}
}

// WithBreathOdds shows the catch-your-breath message one time in n.
func WithBreathOdds(n int) Option {
	return func(s *Scheduler) {
		s.breathOdds = n
	}
}

// NewScheduler creates a scheduler whose recovery kind is looked up in reg.
func NewScheduler(reg *Registry, opts ...Option) (*Scheduler, error) {
	s := &Scheduler{
		logger:            slog.Default().With("component", "scheduler"),
		rng:               rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		recoveryID:        DefaultRecoveryKind,
		recoveryMoves:     MovesPerMinute,
		recoveryBonus:     DefaultRecoveryBonus,
		exhaustionDivisor: DefaultExhaustionDivisor,
		breathOdds:        DefaultBreathOdds,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.exhaustionDivisor <= 0 {
		return nil, fmt.Errorf("exhaustion divisor must be positive, got %d", s.exhaustionDivisor)
	}
	kind, ok := reg.Lookup(s.recoveryID)
	if !ok {
		return nil, fmt.Errorf("recovery kind: %w: %q", ErrUnknownKind, s.recoveryID)
	}
	s.recovery = kind
	return s, nil
}

// DoTurn advances the actor's current activity by one turn.
func (s *Scheduler) DoTurn(a Actor) Outcome {
	act := a.Activity()
	if !act.Active() {
		return OutcomeIdle
	}
	kind := act.kind

	// Refuel first so that an actor without moves left still tends the fire.
	if kind.refuelsFires {
		a.RefuelFire(act)
	}
	spendMoves(act, a)

	previousStamina := a.Stamina()
	if a.IsNPC() && a.ActivityOutOfBounds(act) {
		s.logger.Debug("target outside loaded region, dropping activity", "actor", a.ID(), "kind", kind.id)
		act.Clear()
		a.DropInvalidInventory()
		return s.observe(a, kind, OutcomeAborted)
	}

	kind.hooks.Progress(act, a)

	adjustedStamina := a.Stamina()
	if kind.defersStaminaCost {
		adjustedStamina--
	}
	if adjustedStamina < previousStamina && a.Stamina() < a.MaxStamina()/s.exhaustionDivisor {
		s.interrupt(act, a)
		return s.observe(a, kind, OutcomeExhausted)
	}

	if act.Active() && kind.rooted {
		a.Root()
		a.Pause()
	}

	if act.Active() && act.MovesLeft <= 0 {
		if !kind.hooks.Finish(act, a) {
			act.Clear()
		}
	}

	if act.Active() {
		return s.observe(a, kind, OutcomeProgressed)
	}

	a.SetActivity(nil)
	if a.ResumeBacklogActivity() {
		resumed := a.Activity()
		s.logger.Debug("resumed backlog activity", "actor", a.ID(), "kind", resumed.ID())
		if s.observer != nil {
			s.observer.ObserveResume(a.ID(), resumed.ID())
		}
	}
	a.DropInvalidInventory()
	return s.observe(a, kind, OutcomeCompleted)
}

func spendMoves(act *Instance, a Actor) {
	switch act.kind.timeBasis {
	case BasedOnTime:
		if act.MovesLeft >= MovesPerTurn {
			act.MovesLeft -= MovesPerTurn
			a.SetMoves(0)
		} else {
			a.SetMoves(a.Moves() - a.Moves()*act.MovesLeft/MovesPerTurn)
			act.MovesLeft = 0
		}
	case BasedOnSpeed:
		spent := min(a.Moves(), act.MovesLeft)
		act.MovesLeft -= spent
		a.SetMoves(a.Moves() - spent)
	}
}

// interrupt parks act on the backlog for automatic resumption and puts the
// actor to rest until stamina recovers.
func (s *Scheduler) interrupt(act *Instance, a Actor) {
	if s.breathOdds > 0 && s.rng.IntN(s.breathOdds) == 0 {
		a.Message(sprintf(s.printer, MsgCatchBreath))
	}

	recovery := New(s.recovery, s.recoveryMoves)
	recovery.Values = []int{s.recoveryBonus + a.MaxStamina()/s.exhaustionDivisor}

	act.AutoResume = true
	if act.Active() {
		recovery.InheritDistractions(act)
		a.PushBacklog(act)
	}
	a.SetActivity(recovery)
	s.logger.Debug("actor exhausted, resting", "actor", a.ID(), "stamina", a.Stamina(), "target", recovery.Values[0])
}

func (s *Scheduler) observe(a Actor, kind *Kind, outcome Outcome) Outcome {
	if s.observer != nil {
		s.observer.ObserveTurn(a.ID(), kind.id, outcome)
	}
	return outcome
}
