// Package handlers provides HTTP handlers for the turnact server.
//
// Each handler is in its own file and implements http.Handler.
// Handlers use interfaces to access server dependencies, avoiding
// circular imports.
package handlers

import (
	"context"
	"time"

	"github.com/nomis52/turnact/activity"
	"github.com/nomis52/turnact/config"
	"github.com/nomis52/turnact/logging"
	"github.com/nomis52/turnact/server/runner"
	"github.com/nomis52/turnact/snapshot"
	"github.com/nomis52/turnact/world"
)

// ConfigProvider provides access to the current configuration.
type ConfigProvider interface {
	Config() *config.Config
}

// Reloader can reload its configuration.
type Reloader interface {
	Reload() error
}

// RunController starts and stops background stepping.
type RunController interface {
	Start(ctx context.Context) error
	Stop() error
}

// RunStatusProvider provides access to run status.
type RunStatusProvider interface {
	Status() runner.RunStatus
}

// Stepper runs a single turn on demand.
type Stepper interface {
	Step() (world.TurnReport, error)
}

// ActorReader provides read access to actors.
type ActorReader interface {
	ActorViews() []world.ActorView
	ActorView(id string) (world.ActorView, error)
}

// ActivityController changes what actors are doing.
type ActivityController interface {
	Assign(actorID, kind string, moves int, allowResume bool, opts ...activity.InstanceOption) error
	Cancel(actorID string) error
}

// LogProvider provides the log records captured for an actor.
type LogProvider interface {
	Logs(actorID string) []logging.LogEntry
}

// SnapshotService takes, lists and restores world snapshots.
type SnapshotService interface {
	TakeSnapshot() (snapshot.Summary, error)
	Snapshots() []snapshot.Summary
	GetSnapshot(id string) (snapshot.Snapshot, error)
	RestoreSnapshot(id string) error
}

// NextSnapshotProvider reports when the next scheduled snapshot is due.
type NextSnapshotProvider interface {
	NextSnapshot() *time.Time
}
