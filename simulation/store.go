package simulation

import (
	"fmt"
	"log/slog"

	"github.com/nomis52/turnact/config"
	"github.com/nomis52/turnact/snapshot"
)

// OpenStore opens the snapshot backend selected by cfg. The returned close
// function is never nil.
func OpenStore(cfg config.SnapshotConfig, logger *slog.Logger) (snapshot.Store, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Backend {
	case config.BackendMemory:
		return snapshot.NewMemoryStore(cfg.MaxCount), noop, nil
	case config.BackendDisk:
		store, err := snapshot.NewDiskStore(cfg.Dir, cfg.MaxCount, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open snapshot dir: %w", err)
		}
		return store, noop, nil
	case config.BackendSQLite:
		store, err := snapshot.NewSQLiteStore(cfg.Path, cfg.MaxCount, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open snapshot database: %w", err)
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown snapshot backend %q", cfg.Backend)
	}
}
