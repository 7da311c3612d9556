// Package server provides an HTTP server for the turnact simulation.
//
// The server exposes a REST API to inspect actors, assign and cancel their
// activities, step the world by hand or on a ticker, and take and restore
// snapshots.
//
// # Endpoints
//
//   - GET /health - Health check with build information
//   - GET /api/status - Consolidated status (turn, run state, progress, snapshots)
//   - GET /api/actors - Every actor's state
//   - GET /api/actors/{id} - One actor with its captured logs
//   - POST /api/actors/{id}/activity - Assigns an activity
//   - DELETE /api/actors/{id}/activity - Cancels the current activity
//   - POST /api/step - Runs a single turn
//   - POST /api/run, DELETE /api/run - Starts or stops background stepping
//   - POST /api/snapshot - Takes a snapshot
//   - GET /api/snapshots, GET /api/snapshots/{id} - Lists or fetches snapshots
//   - POST /api/snapshots/{id}/restore - Replaces the world with a snapshot
//   - GET /config - Returns current configuration as YAML
//   - POST /reload - Reloads configuration from disk
//   - GET /metrics - Prometheus metrics
//
// # Architecture
//
// Config-derived dependencies (the simulation, snapshot store, runner and
// cron triggers) are swapped atomically on reload. Reloading carries the
// current actors over into the rebuilt world, so engine settings change
// without losing state. It is refused while the simulation runs.
//
// With server.tls_cert and server.tls_key set the server speaks HTTPS and
// picks up renewed certificates without a restart.
//
// # Example
//
//	srv, err := server.New("/etc/turnact/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nomis52/turnact/activity"
	"github.com/nomis52/turnact/config"
	"github.com/nomis52/turnact/logging"
	"github.com/nomis52/turnact/metrics"
	"github.com/nomis52/turnact/server/cron"
	"github.com/nomis52/turnact/server/handlers"
	"github.com/nomis52/turnact/server/runner"
	"github.com/nomis52/turnact/server/types"
	"github.com/nomis52/turnact/simulation"
	"github.com/nomis52/turnact/snapshot"
	"github.com/nomis52/turnact/world"
)

const (
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 10 * time.Second
	defaultShutdownTimeout = 5 * time.Second
)

// Cron job names.
const (
	JobSnapshot = "snapshot"
	JobStep     = "step"
	JobStart    = "start"
	JobStop     = "stop"
)

// serverDeps holds config-derived dependencies that are swapped atomically on reload.
type serverDeps struct {
	config     *config.Config
	sim        *simulation.Simulation
	store      snapshot.Store
	closeStore func() error
	runner     *runner.Runner
	cron       *cron.CronTriggerManager
	stopCron   context.CancelFunc
}

func (d *serverDeps) startCron(ctx context.Context) {
	if d.cron == nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	d.stopCron = cancel
	d.cron.Start(ctx)
}

func (d *serverDeps) close() error {
	if d.stopCron != nil {
		d.stopCron()
	}
	return d.closeStore()
}

// Server is the HTTP server for the turnact API.
type Server struct {
	addr       string
	configPath string
	cronSpec   string
	logger     *logging.Logger
	collector  *logging.LogCollector
	status     *activity.StatusHandler
	metrics    *metrics.ScrapeRegistry
	engine     *metrics.EngineMetrics
	deps       atomic.Pointer[serverDeps]
	httpServer *http.Server
	props      types.ServerProperties

	// mu serializes reloads, restores and run starts. runCtx is set while
	// Run is serving.
	mu     sync.Mutex
	runCtx context.Context
}

// Option configures a Server.
type Option func(*Server) error

// WithCron replaces the configured snapshot schedule with a full trigger
// spec such as "snapshot:0 * * * *;start:0 8 * * *;stop:0 18 * * *".
// Available jobs are snapshot, step, start and stop.
func WithCron(spec string) Option {
	return func(s *Server) error {
		if _, err := cron.NewCronTriggerManager(spec, s.jobs(), s.logger.Logger); err != nil {
			return fmt.Errorf("invalid cron spec: %w", err)
		}
		s.cronSpec = spec
		return nil
	}
}

// WithListenAddr overrides the configured listen address.
func WithListenAddr(addr string) Option {
	return func(s *Server) error {
		s.addr = addr
		return nil
	}
}

// New creates a new Server with the given config path and options.
// It loads the configuration, builds the simulation and spawns the
// configured actors, or restores the latest snapshot when asked to.
func New(configPath string, opts ...Option) (*Server, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	registry, err := metrics.NewScrapeRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics registry: %w", err)
	}
	engine, err := metrics.NewEngineMetrics(registry)
	if err != nil {
		return nil, err
	}

	s := &Server{
		addr:       cfg.Server.Addr,
		configPath: configPath,
		logger:     logger,
		collector:  logging.NewLogCollector(logging.DefaultLogLimit),
		status:     activity.NewStatusHandler(),
		metrics:    registry,
		engine:     engine,
		props:      types.NewServerProperties(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	deps, err := s.buildDeps(&cfg)
	if err != nil {
		return nil, err
	}
	if err := s.seed(deps); err != nil {
		return nil, errors.Join(err, deps.close())
	}
	s.deps.Store(deps)

	logger.Info("server configured",
		"config_path", configPath,
		"actors", deps.sim.World.Len(),
		"snapshot_backend", cfg.Snapshot.Backend,
		"git_commit", s.props.Build.GitCommit,
		"hostname", s.props.Hostname,
	)
	return s, nil
}

func (s *Server) buildDeps(cfg *config.Config) (*serverDeps, error) {
	sim, err := simulation.New(cfg, s.logger.Logger,
		simulation.WithLoggerHook(logging.NewActorLogHook(s.collector)),
		simulation.WithStatusCollection(s.status),
		simulation.WithEngineMetrics(s.engine),
	)
	if err != nil {
		return nil, err
	}

	store, closeStore, err := simulation.OpenStore(cfg.Snapshot, s.logger.Logger)
	if err != nil {
		return nil, err
	}

	deps := &serverDeps{
		config:     cfg,
		sim:        sim,
		store:      store,
		closeStore: closeStore,
		runner:     runner.New(s.logger.Logger, sim.World, runner.WithInterval(cfg.Simulation.TickInterval)),
	}

	spec := s.cronSpec
	if spec == "" {
		spec = cfg.Server.Cron
	}
	if spec == "" && cfg.Snapshot.Schedule != "" {
		spec = JobSnapshot + ":" + cfg.Snapshot.Schedule
	}
	if spec != "" {
		manager, err := cron.NewCronTriggerManager(spec, s.jobs(), s.logger.Logger)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("creating cron triggers: %w", err), closeStore())
		}
		deps.cron = manager
	}
	return deps, nil
}

// seed fills a fresh world from the latest snapshot or the configured actors.
func (s *Server) seed(deps *serverDeps) error {
	if deps.config.Snapshot.RestoreOnStart {
		latest, err := deps.store.Latest()
		switch {
		case err == nil:
			if err := deps.sim.World.Restore(latest); err != nil {
				return fmt.Errorf("failed to restore snapshot %s: %w", latest.ID, err)
			}
			return nil
		case !errors.Is(err, snapshot.ErrNotFound):
			return fmt.Errorf("failed to read latest snapshot: %w", err)
		}
		s.logger.Info("no snapshot to restore, spawning configured actors")
	}
	if err := deps.sim.Populate(deps.config.Simulation.Actors); err != nil {
		return fmt.Errorf("failed to spawn actors: %w", err)
	}
	return nil
}

func (s *Server) jobs() map[string]cron.Job {
	return map[string]cron.Job{
		JobSnapshot: func(context.Context) error {
			_, err := s.TakeSnapshot()
			return err
		},
		JobStep: func(context.Context) error {
			_, err := s.Step()
			if errors.Is(err, runner.ErrRunInProgress) {
				return nil
			}
			return err
		},
		JobStart: func(ctx context.Context) error {
			err := s.Start(ctx)
			if errors.Is(err, runner.ErrRunInProgress) {
				return nil
			}
			return err
		},
		JobStop: func(context.Context) error {
			err := s.Stop()
			if errors.Is(err, runner.ErrNotRunning) {
				return nil
			}
			return err
		},
	}
}

// Logger returns the server's logger.
func (s *Server) Logger() *slog.Logger {
	return s.logger.Logger
}

// Reload reads the config from disk, rebuilds the simulation and carries
// the current actors over. It fails while the simulation runs.
func (s *Server) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.deps.Load()
	if old.runner.IsRunning() {
		return fmt.Errorf("cannot reload: %w", runner.ErrRunInProgress)
	}

	cfg, err := config.LoadConfig(s.configPath)
	if err != nil {
		return err
	}
	deps, err := s.buildDeps(&cfg)
	if err != nil {
		return err
	}
	if err := deps.sim.World.Restore(old.sim.World.Snapshot()); err != nil {
		return errors.Join(fmt.Errorf("failed to carry actors over: %w", err), deps.close())
	}
	if err := s.logger.SetLevel(cfg.Logging.Level); err != nil {
		return errors.Join(err, deps.close())
	}

	s.deps.Store(deps)
	if s.runCtx != nil {
		deps.startCron(s.runCtx)
	}
	if err := old.close(); err != nil {
		s.logger.Warn("failed to close previous snapshot store", "error", err)
	}

	s.logger.Info("configuration loaded", "config_path", s.configPath)
	return nil
}

// Config returns the current configuration.
func (s *Server) Config() *config.Config {
	return s.deps.Load().config
}

// Start begins stepping the world in the background until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deps.Load().runner.Start(ctx)
}

// Stop ends background stepping.
func (s *Server) Stop() error {
	return s.deps.Load().runner.Stop()
}

// Status returns the current run status by delegating to the runner.
func (s *Server) Status() runner.RunStatus {
	return s.deps.Load().runner.Status()
}

// Step runs a single turn. It fails while the simulation runs.
func (s *Server) Step() (world.TurnReport, error) {
	return s.deps.Load().runner.Step()
}

// Turn returns the number of turns the world has run.
func (s *Server) Turn() int64 {
	return s.deps.Load().sim.World.Turn()
}

// ActorCount returns the number of actors.
func (s *Server) ActorCount() int {
	return s.deps.Load().sim.World.Len()
}

// Progress returns the latest progress message of every busy actor.
func (s *Server) Progress() map[string]activity.Status {
	return s.status.All()
}

// ActorViews returns every actor.
func (s *Server) ActorViews() []world.ActorView {
	return s.deps.Load().sim.World.ActorViews()
}

// ActorView returns one actor.
func (s *Server) ActorView(id string) (world.ActorView, error) {
	return s.deps.Load().sim.World.ActorView(id)
}

// Assign starts an activity for an actor.
func (s *Server) Assign(actorID, kind string, moves int, allowResume bool, opts ...activity.InstanceOption) error {
	return s.deps.Load().sim.World.Assign(actorID, kind, moves, allowResume, opts...)
}

// Cancel stops an actor's current activity.
func (s *Server) Cancel(actorID string) error {
	return s.deps.Load().sim.World.Cancel(actorID)
}

// Logs returns the records captured for an actor.
func (s *Server) Logs(actorID string) []logging.LogEntry {
	return s.collector.Logs(actorID)
}

// TakeSnapshot captures the world and stores it.
func (s *Server) TakeSnapshot() (snapshot.Summary, error) {
	deps := s.deps.Load()
	summary, err := deps.store.Save(deps.sim.World.Snapshot())
	if err != nil {
		return snapshot.Summary{}, fmt.Errorf("failed to save snapshot: %w", err)
	}
	s.logger.Info("snapshot taken", "id", summary.ID, "turn", summary.Turn, "actors", summary.Actors)
	return summary, nil
}

// Snapshots lists stored snapshots, newest first.
func (s *Server) Snapshots() []snapshot.Summary {
	return s.deps.Load().store.List()
}

// GetSnapshot returns a stored snapshot.
func (s *Server) GetSnapshot(id string) (snapshot.Snapshot, error) {
	return s.deps.Load().store.Get(id)
}

// LatestSnapshot returns the summary of the newest stored snapshot.
func (s *Server) LatestSnapshot() (snapshot.Summary, error) {
	latest, err := s.deps.Load().store.Latest()
	if err != nil {
		return snapshot.Summary{}, err
	}
	return latest.Summary(), nil
}

// RestoreSnapshot replaces the world's actors with a stored snapshot. It
// fails while the simulation runs.
func (s *Server) RestoreSnapshot(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	deps := s.deps.Load()
	if deps.runner.IsRunning() {
		return fmt.Errorf("cannot restore: %w", runner.ErrRunInProgress)
	}
	snap, err := deps.store.Get(id)
	if err != nil {
		return err
	}
	if err := deps.sim.World.Restore(snap); err != nil {
		return err
	}
	s.collector.Clear()
	return nil
}

// NextSnapshot returns the next scheduled cron run, or nil if no cron is
// configured.
func (s *Server) NextSnapshot() *time.Time {
	deps := s.deps.Load()
	if deps.cron == nil {
		return nil
	}
	next := deps.cron.NextRun()
	return &next
}

// Properties describes the running server.
func (s *Server) Properties() types.ServerProperties {
	return s.props
}

// Handler returns the API routes.
func (s *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	s.registerRoutes(ctx, mux)
	return mux
}

// Run starts the HTTP server and blocks until the context is cancelled.
// It performs a graceful shutdown when the context is done, stopping the
// simulation and closing the snapshot store.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(ctx),
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
	}

	deps := s.deps.Load()
	tlsEnabled := deps.config.Server.TLS()
	if tlsEnabled {
		loader, err := NewCertLoader(deps.config.Server.TLSCert, deps.config.Server.TLSKey, s.logger.Logger)
		if err != nil {
			return fmt.Errorf("failed to set up tls: %w", err)
		}
		s.httpServer.TLSConfig = loader.TLSConfig()
	}

	s.mu.Lock()
	s.runCtx = ctx
	deps = s.deps.Load()
	if deps.cron != nil {
		s.logger.Info("starting cron triggers", "next_run", deps.cron.NextRun())
	}
	deps.startCron(ctx)
	s.mu.Unlock()

	if deps.config.Server.AutoStart {
		if err := s.Start(ctx); err != nil {
			return err
		}
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server",
			"addr", s.addr,
			"config_path", s.configPath,
			"tls", tlsEnabled,
		)
		var err error
		if tlsEnabled {
			err = s.httpServer.ListenAndServeTLS("", "")
		} else {
			err = s.httpServer.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		s.logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		defer cancel()
		err = s.httpServer.Shutdown(shutdownCtx)
	}
	return errors.Join(err, s.shutdown())
}

func (s *Server) shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runCtx = nil
	deps := s.deps.Load()
	if err := deps.runner.Stop(); err != nil && !errors.Is(err, runner.ErrNotRunning) {
		return err
	}
	return deps.close()
}

func (s *Server) registerRoutes(ctx context.Context, mux *http.ServeMux) {
	logger := s.logger.Logger
	activityHandler := handlers.NewActivityHandler(s, s)
	runHandler := handlers.NewRunHandler(ctx, s)

	mux.HandleFunc("GET /health", handlers.HandleHealth)
	mux.Handle("GET /api/status", handlers.NewAPIStatusHandler(logger, s))
	mux.Handle("GET /api/actors", handlers.NewActorsHandler(s))
	mux.Handle("GET /api/actors/{id}", handlers.NewActorHandler(s, s))
	mux.Handle("POST /api/actors/{id}/activity", activityHandler)
	mux.Handle("DELETE /api/actors/{id}/activity", activityHandler)
	mux.Handle("POST /api/step", handlers.NewStepHandler(logger, s))
	mux.Handle("POST /api/run", runHandler)
	mux.Handle("DELETE /api/run", runHandler)
	mux.Handle("POST /api/snapshot", handlers.NewSnapshotHandler(logger, s))
	mux.Handle("GET /api/snapshots", handlers.NewSnapshotListHandler(s))
	mux.Handle("GET /api/snapshots/{id}", handlers.NewSnapshotGetHandler(s))
	mux.Handle("POST /api/snapshots/{id}/restore", handlers.NewRestoreHandler(logger, s))
	mux.Handle("GET /config", handlers.NewConfigHandler(logger, s))
	mux.Handle("POST /reload", handlers.NewReloadHandler(logger, s))
	mux.Handle("GET /metrics", s.metrics.Handler())
}
