package logging

import (
	"maps"
	"slices"
	"sync"
	"time"
)

// DefaultLogLimit is the number of entries kept per actor.
const DefaultLogLimit = 200

// LogEntry is one captured log record.
type LogEntry struct {
	Time       time.Time      `json:"time"`
	Level      string         `json:"level"`
	Message    string         `json:"message"`
	Attributes map[string]any `json:"attributes"`
}

// LogCollector keeps the most recent log entries of each actor.
type LogCollector struct {
	mu    sync.RWMutex
	limit int
	logs  map[string][]LogEntry
}

// NewLogCollector creates a collector keeping up to limit entries per
// actor. A non-positive limit uses DefaultLogLimit.
func NewLogCollector(limit int) *LogCollector {
	if limit <= 0 {
		limit = DefaultLogLimit
	}
	return &LogCollector{
		limit: limit,
		logs:  make(map[string][]LogEntry),
	}
}

// Add records an entry for the actor, dropping its oldest entries beyond
// the limit.
func (c *LogCollector) Add(actorID string, entry LogEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	logs := append(c.logs[actorID], entry)
	if over := len(logs) - c.limit; over > 0 {
		logs = slices.Delete(logs, 0, over)
	}
	c.logs[actorID] = logs
}

// Logs returns a copy of the actor's entries, oldest first.
func (c *LogCollector) Logs(actorID string) []LogEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.logs[actorID])
}

// Actors returns the IDs of actors with captured entries, sorted.
func (c *LogCollector) Actors() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Sorted(maps.Keys(c.logs))
}

// Forget drops the entries of one actor.
func (c *LogCollector) Forget(actorID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.logs, actorID)
}

// Clear drops every entry.
func (c *LogCollector) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logs = make(map[string][]LogEntry)
}
