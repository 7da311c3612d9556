package snapshot

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// DiskStore persists snapshots as JSON files in a directory.
type DiskStore struct {
	dir      string
	logger   *slog.Logger
	maxCount int

	mu        sync.Mutex
	summaries []Summary // most recent first
	files     map[string]string
}

// NewDiskStore creates a disk-backed store. The directory is created if it
// doesn't exist, and existing snapshots are indexed.
func NewDiskStore(dir string, maxCount int, logger *slog.Logger) (*DiskStore, error) {
	if maxCount <= 0 {
		maxCount = defaultMaxCount
	}
	s := &DiskStore{
		dir:      dir,
		logger:   logger,
		maxCount: maxCount,
		files:    make(map[string]string),
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	if err := s.Reload(); err != nil {
		logger.Warn("failed to load existing snapshots", "error", err)
	}
	return s, nil
}

func (s *DiskStore) List() []Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]Summary, len(s.summaries))
	copy(result, s.summaries)
	return result
}

func (s *DiskStore) Get(id string) (Snapshot, error) {
	s.mu.Lock()
	path, ok := s.files[id]
	s.mu.Unlock()
	if !ok {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return readSnapshot(path)
}

func (s *DiskStore) Latest() (Snapshot, error) {
	s.mu.Lock()
	if len(s.summaries) == 0 {
		s.mu.Unlock()
		return Snapshot{}, ErrNotFound
	}
	id := s.summaries[0].ID
	s.mu.Unlock()
	return s.Get(id)
}

// Save writes the snapshot to <dir>/<taken_at>-<id>.json and drops the
// oldest files beyond the limit.
func (s *DiskStore) Save(snap Snapshot) (Summary, error) {
	if snap.TakenAt.IsZero() {
		return Summary{}, fmt.Errorf("cannot save snapshot without a time")
	}
	snap = withID(snap)

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return Summary{}, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	filename := snap.TakenAt.UTC().Format("2006-01-02T15-04-05.000") + "-" + snap.ID + ".json"
	path := filepath.Join(s.dir, filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return Summary{}, fmt.Errorf("failed to write snapshot file: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	summary := snap.Summary()
	s.summaries = append([]Summary{summary}, s.summaries...)
	s.files[snap.ID] = path
	for len(s.summaries) > s.maxCount {
		oldest := s.summaries[len(s.summaries)-1]
		if err := os.Remove(s.files[oldest.ID]); err != nil {
			s.logger.Warn("failed to remove old snapshot", "id", oldest.ID, "error", err)
		}
		delete(s.files, oldest.ID)
		s.summaries = s.summaries[:len(s.summaries)-1]
	}
	s.logger.Debug("saved snapshot to disk", "path", path)
	return summary, nil
}

// Reload re-indexes the snapshot files on disk.
func (s *DiskStore) Reload() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("failed to read snapshot directory: %w", err)
	}

	type indexed struct {
		summary Summary
		path    string
	}
	var found []indexed
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		path := filepath.Join(s.dir, e.Name())
		snap, err := readSnapshot(path)
		if err != nil {
			s.logger.Warn("failed to load snapshot file", "file", path, "error", err)
			continue
		}
		snap = withID(snap)
		found = append(found, indexed{summary: snap.Summary(), path: path})
	}
	sort.Slice(found, func(i, j int) bool {
		return found[i].summary.TakenAt.After(found[j].summary.TakenAt)
	})
	if len(found) > s.maxCount {
		found = found[:s.maxCount]
	}

	summaries := make([]Summary, len(found))
	files := make(map[string]string, len(found))
	for i, f := range found {
		summaries[i] = f.summary
		files[f.summary.ID] = f.path
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries = summaries
	s.files = files
	s.logger.Info("loaded snapshots from disk", "count", len(summaries))
	return nil
}

func readSnapshot(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to read snapshot file: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("failed to parse snapshot file %s: %w", path, err)
	}
	return snap, nil
}
