package activity

import (
	"maps"
	"sync"
	"time"
)

// Status is the latest progress report of one actor.
type Status struct {
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StatusHandler stores the latest progress status per actor ID.
// All status lines of a world write to the same handler.
type StatusHandler struct {
	mu       sync.RWMutex
	statuses map[string]Status
	now      func() time.Time
}

// NewStatusHandler creates a new status handler.
func NewStatusHandler() *StatusHandler {
	return &StatusHandler{
		statuses: make(map[string]Status),
		now:      time.Now,
	}
}

// Set records the status of an actor.
func (sh *StatusHandler) Set(actorID, kind, message string) {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	sh.statuses[actorID] = Status{Kind: kind, Message: message, UpdatedAt: sh.now()}
}

// Remove forgets an actor's status, for example when it goes idle.
func (sh *StatusHandler) Remove(actorID string) {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	delete(sh.statuses, actorID)
}

// Get returns the status of an actor.
func (sh *StatusHandler) Get(actorID string) (Status, bool) {
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	s, ok := sh.statuses[actorID]
	return s, ok
}

// All returns a copy of every actor's status.
func (sh *StatusHandler) All() map[string]Status {
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	return maps.Clone(sh.statuses)
}
