package snapshot

import (
	"fmt"
	"slices"
	"sync"
)

const defaultMaxCount = 100

// MemoryStore keeps snapshots in memory.
type MemoryStore struct {
	mu        sync.Mutex
	snapshots []Snapshot // most recent first
	maxCount  int
}

// NewMemoryStore creates a store that keeps at most maxCount snapshots.
// A non-positive maxCount uses the default.
func NewMemoryStore(maxCount int) *MemoryStore {
	if maxCount <= 0 {
		maxCount = defaultMaxCount
	}
	return &MemoryStore{maxCount: maxCount}
}

func (s *MemoryStore) List() []Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Summary, len(s.snapshots))
	for i, snap := range s.snapshots {
		out[i] = snap.Summary()
	}
	return out
}

func (s *MemoryStore) Get(id string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, snap := range s.snapshots {
		if snap.ID == id {
			return snap, nil
		}
	}
	return Snapshot{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

func (s *MemoryStore) Latest() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.snapshots) == 0 {
		return Snapshot{}, ErrNotFound
	}
	return s.snapshots[0], nil
}

func (s *MemoryStore) Save(snap Snapshot) (Summary, error) {
	if snap.TakenAt.IsZero() {
		return Summary{}, fmt.Errorf("cannot save snapshot without a time")
	}
	snap = withID(snap)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots = slices.Insert(s.snapshots, 0, snap)
	if len(s.snapshots) > s.maxCount {
		s.snapshots = s.snapshots[:s.maxCount]
	}
	return snap.Summary(), nil
}
