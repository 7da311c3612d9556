// Package simulation assembles an activity engine and world from a Config.
//
// Both binaries build through here so the server and the headless CLI run
// the same catalog, scheduler settings and actor defaults.
package simulation

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nomis52/turnact/activity"
	"github.com/nomis52/turnact/actor"
	"github.com/nomis52/turnact/catalog"
	"github.com/nomis52/turnact/config"
	"github.com/nomis52/turnact/i18n"
	"github.com/nomis52/turnact/logging"
	"github.com/nomis52/turnact/metrics"
	"github.com/nomis52/turnact/script"
	"github.com/nomis52/turnact/world"
)

// Option configures simulation creation.
type Option func(*options)

type options struct {
	logHook  logging.LoggerHook
	status   *activity.StatusHandler
	registry metrics.Registry
	engine   *metrics.EngineMetrics
	clock    func() time.Time
}

// WithLoggerHook wraps the logger handed to the engine, for example to
// capture per-actor records.
func WithLoggerHook(hook logging.LoggerHook) Option {
	return func(o *options) {
		o.logHook = hook
	}
}

// WithStatusCollection publishes progress messages to h.
// If not provided, status updates are only logged.
func WithStatusCollection(h *activity.StatusHandler) Option {
	return func(o *options) {
		o.status = h
	}
}

// WithMetricsRegistry reports engine metrics to registry.
func WithMetricsRegistry(registry metrics.Registry) Option {
	return func(o *options) {
		o.registry = registry
	}
}

// WithEngineMetrics reports to metrics already registered elsewhere, so a
// rebuilt simulation keeps feeding the same series.
func WithEngineMetrics(m *metrics.EngineMetrics) Option {
	return func(o *options) {
		o.engine = m
	}
}

// WithClock overrides the snapshot time source.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// Simulation is a ready-to-step world plus the pieces it was built from.
type Simulation struct {
	World    *world.World
	Registry *activity.Registry
	Printer  *i18n.Printer
	// Metrics is nil unless a registry or engine metrics were supplied.
	Metrics *metrics.EngineMetrics
}

// New builds the registry, scheduler and world described by cfg. The world
// starts empty; call Populate to spawn the configured actors.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Simulation, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logHook != nil {
		logger = o.logHook.Wrap(logger)
	}

	bundle, err := i18n.LoadEmbedded()
	if err != nil {
		return nil, fmt.Errorf("failed to load locales: %w", err)
	}
	printer := bundle.NewPrinter(cfg.Catalog.Locale)

	reg, err := buildRegistry(cfg, logger, printer)
	if err != nil {
		return nil, fmt.Errorf("failed to build activity registry: %w", err)
	}

	schedOpts := []activity.Option{
		activity.WithLogger(logger),
		activity.WithPrinter(printer),
		activity.WithRecoveryKind(cfg.Engine.RecoveryKind),
		activity.WithRecoveryMoves(cfg.Engine.RecoveryMoves),
		activity.WithExhaustion(cfg.Engine.RecoveryBonus, cfg.Engine.ExhaustionDivisor),
		activity.WithBreathOdds(cfg.Engine.BreathOdds),
	}
	if cfg.Engine.Seed != 0 {
		schedOpts = append(schedOpts, activity.WithSeed(cfg.Engine.Seed))
	}

	worldOpts := []world.Option{
		world.WithLogger(logger),
		world.WithPrinter(printer),
		world.WithActorDefaults(actorDefaults(cfg.Simulation)...),
	}
	if o.status != nil {
		worldOpts = append(worldOpts, world.WithStatusHandler(o.status))
	}
	if r := cfg.Simulation.Region; r != nil {
		worldOpts = append(worldOpts, world.WithRegion(*r))
	}
	if o.clock != nil {
		worldOpts = append(worldOpts, world.WithClock(o.clock))
	}

	sim := &Simulation{Registry: reg, Printer: printer, Metrics: o.engine}
	if sim.Metrics == nil && o.registry != nil {
		m, err := metrics.NewEngineMetrics(o.registry)
		if err != nil {
			return nil, fmt.Errorf("failed to register engine metrics: %w", err)
		}
		sim.Metrics = m
	}
	if m := sim.Metrics; m != nil {
		schedOpts = append(schedOpts, activity.WithObserver(m))
		worldOpts = append(worldOpts, world.WithBacklogObserver(m))
	}

	sched, err := activity.NewScheduler(reg, schedOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	sim.World = world.New(reg, sched, worldOpts...)
	return sim, nil
}

// Populate spawns actors and assigns their starting activities. Actors
// whose activity cannot be assigned are still added, idle.
func (s *Simulation) Populate(actors []config.ActorConfig) error {
	var errs []error
	for _, a := range actors {
		c := s.World.NewActor(a.Name, actor.WithNPC(a.NPC), actor.WithPosition(a.Position))
		if a.Activity == "" {
			continue
		}
		var instOpts []activity.InstanceOption
		if a.Placement != nil {
			instOpts = append(instOpts, activity.WithPlacement(*a.Placement))
		}
		if err := s.World.Assign(c.ID(), a.Activity, a.Moves, false, instOpts...); err != nil {
			errs = append(errs, fmt.Errorf("actor %q: %w", a.Name, err))
		}
	}
	return errors.Join(errs...)
}

func actorDefaults(cfg config.SimulationConfig) []actor.Option {
	opts := []actor.Option{
		actor.WithSpeed(cfg.ActorSpeed),
		actor.WithStamina(cfg.MaxStamina, cfg.MaxStamina),
		actor.WithRestRate(cfg.RestRate),
	}
	if cfg.CarryLimit > 0 {
		opts = append(opts, actor.WithCarryLimit(cfg.CarryLimit))
	}
	return opts
}

func buildRegistry(cfg *config.Config, logger *slog.Logger, printer activity.Printer) (*activity.Registry, error) {
	defs, err := catalog.Default()
	if err != nil {
		return nil, err
	}
	if cfg.Catalog.File != "" {
		overrides, err := catalog.LoadFile(cfg.Catalog.File)
		if err != nil {
			return nil, err
		}
		defs = catalog.Merge(defs, overrides)
	}

	resolverOpts := []catalog.ResolverOption{
		catalog.WithLogger(logger),
		catalog.WithPrinter(printer),
	}
	if cfg.Catalog.ScriptDir != "" {
		resolverOpts = append(resolverOpts, catalog.WithScripts(script.NewLoader(cfg.Catalog.ScriptDir, script.WithLogger(logger))))
	}
	return catalog.Build(defs, catalog.NewResolver(resolverOpts...))
}
