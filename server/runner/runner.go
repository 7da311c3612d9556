// Package runner steps a world on a ticker in the background.
//
//	r := runner.New(logger, w, runner.WithInterval(time.Second))
//	if err := r.Start(ctx); errors.Is(err, runner.ErrRunInProgress) {
//	    // already stepping
//	}
//	defer r.Stop()
package runner

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/nomis52/turnact/world"
)

const defaultInterval = time.Second

var (
	// ErrRunInProgress is returned when starting or single-stepping while
	// the background loop runs.
	ErrRunInProgress = errors.New("simulation already running")
	// ErrNotRunning is returned when stopping an idle runner.
	ErrNotRunning = errors.New("simulation not running")
)

// Stepper advances the simulation by one turn.
type Stepper interface {
	Step() world.TurnReport
}

// Runner steps a Stepper on a fixed interval.
type Runner struct {
	logger   *slog.Logger
	stepper  Stepper
	interval time.Duration
	// maxTurns stops the loop after that many turns; zero runs forever.
	maxTurns int64

	mu     sync.Mutex
	status RunStatus
	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures a Runner.
type Option func(*Runner)

// WithInterval sets the time between turns.
func WithInterval(d time.Duration) Option {
	return func(r *Runner) {
		r.interval = d
	}
}

// WithMaxTurns stops each background run after n turns.
func WithMaxTurns(n int64) Option {
	return func(r *Runner) {
		r.maxTurns = n
	}
}

// New creates an idle runner.
func New(logger *slog.Logger, stepper Stepper, opts ...Option) *Runner {
	r := &Runner{
		logger:   logger.With("component", "runner"),
		stepper:  stepper,
		interval: defaultInterval,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.status = RunStatus{State: RunStateIdle, Interval: r.interval.String()}
	return r
}

// Start begins stepping in the background. The loop ends when ctx is done,
// Stop is called, or the turn limit is reached.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status.State == RunStateRunning {
		return ErrRunInProgress
	}

	now := time.Now()
	r.status.State = RunStateRunning
	r.status.StartedAt = &now
	r.status.StoppedAt = nil

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})
	go r.loop(ctx, r.done)

	r.logger.Info("simulation started", "interval", r.interval)
	return nil
}

// Stop ends the background loop and waits for it to exit.
func (r *Runner) Stop() error {
	r.mu.Lock()
	if r.status.State != RunStateRunning {
		r.mu.Unlock()
		return ErrNotRunning
	}
	cancel, done := r.cancel, r.done
	r.mu.Unlock()

	cancel()
	<-done
	return nil
}

// Step runs a single turn. It fails while the background loop runs.
func (r *Runner) Step() (world.TurnReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status.State == RunStateRunning {
		return world.TurnReport{}, ErrRunInProgress
	}
	report := r.stepper.Step()
	r.record(report)
	return report, nil
}

// Status returns a copy of the current status.
func (r *Runner) Status() RunStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	status := r.status
	status.Outcomes = maps.Clone(r.status.Outcomes)
	return status
}

// IsRunning reports whether the background loop is active.
func (r *Runner) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status.State == RunStateRunning
}

func (r *Runner) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer r.finish()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	var turns int64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		report := r.stepper.Step()
		r.mu.Lock()
		r.record(report)
		r.mu.Unlock()

		turns++
		if r.maxTurns > 0 && turns >= r.maxTurns {
			r.logger.Info("turn limit reached", "turns", turns)
			return
		}
	}
}

// record must be called with mu held.
func (r *Runner) record(report world.TurnReport) {
	r.status.Turns++
	r.status.LastTurn = report.Turn
	outcomes := make(map[string]int)
	for _, o := range report.Outcomes {
		outcomes[o.String()]++
	}
	r.status.Outcomes = outcomes
}

func (r *Runner) finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	r.status.State = RunStateIdle
	r.status.StoppedAt = &now
	r.cancel()
	r.logger.Info("simulation stopped", "turns", r.status.Turns, "last_turn", r.status.LastTurn)
}
