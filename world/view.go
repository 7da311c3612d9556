package world

import (
	"errors"
	"fmt"

	"github.com/nomis52/turnact/activity"
	"github.com/nomis52/turnact/actor"
	"github.com/nomis52/turnact/snapshot"
)

// ActorView is a point-in-time copy of an actor's state.
type ActorView struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	NPC        bool              `json:"npc"`
	Position   activity.Point    `json:"position"`
	Moves      int               `json:"moves"`
	Stamina    int               `json:"stamina"`
	MaxStamina int               `json:"max_stamina"`
	Activity   activity.Record   `json:"activity"`
	Progress   string            `json:"progress,omitempty"`
	Prompt     string            `json:"prompt,omitempty"`
	Backlog    []activity.Record `json:"backlog"`
	Messages   []string          `json:"messages,omitempty"`
}

func (w *World) view(c *actor.Character) ActorView {
	v := ActorView{
		ID:         c.ID(),
		Name:       c.Name(),
		NPC:        c.IsNPC(),
		Position:   c.Position(),
		Moves:      c.Moves(),
		Stamina:    c.Stamina(),
		MaxStamina: c.MaxStamina(),
		Activity:   c.Activity().Record(),
		Prompt:     c.InterruptionPrompt(),
		Backlog:    records(c.Backlog()),
		Messages:   c.Messages(),
	}
	if msg, ok := c.Activity().ProgressMessage(c, w.printer); ok {
		v.Progress = msg
	}
	return v
}

func records(insts []*activity.Instance) []activity.Record {
	out := make([]activity.Record, 0, len(insts))
	for _, inst := range insts {
		out = append(out, inst.Record())
	}
	return out
}

// ActorViews returns every actor, in turn order.
func (w *World) ActorViews() []ActorView {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]ActorView, 0, len(w.actors))
	for _, c := range w.actors {
		out = append(out, w.view(c))
	}
	return out
}

// ActorView returns a single actor.
func (w *World) ActorView(id string) (ActorView, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	c, ok := w.byID[id]
	if !ok {
		return ActorView{}, fmt.Errorf("%w: %s", ErrUnknownActor, id)
	}
	return w.view(c), nil
}

// Snapshot captures every actor's activity state.
func (w *World) Snapshot() snapshot.Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	snap := snapshot.Snapshot{
		Turn:    w.turn,
		TakenAt: w.clock(),
		Actors:  make([]snapshot.ActorRecord, 0, len(w.actors)),
	}
	for _, c := range w.actors {
		snap.Actors = append(snap.Actors, snapshot.ActorRecord{
			ID:         c.ID(),
			Name:       c.Name(),
			NPC:        c.IsNPC(),
			Position:   c.Position(),
			Speed:      c.Speed(),
			Moves:      c.Moves(),
			Stamina:    c.Stamina(),
			MaxStamina: c.MaxStamina(),
			RestRate:   c.RestRate(),
			CarryLimit: c.CarryLimit(),
			Exertion:   c.Exertion(),
			Activity:   c.Activity().Record(),
			Backlog:    records(c.Backlog()),
			Inventory:  c.Inventory(),
			Skills:     c.Skills(),
			Identified: c.Identified(),
		})
	}
	return snap
}

// Restore replaces all actors with those in snap. Nothing changes if any
// record refers to an unknown kind.
func (w *World) Restore(snap snapshot.Snapshot) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var errs []error
	restored := make([]*actor.Character, 0, len(snap.Actors))
	for _, rec := range snap.Actors {
		c, err := w.restoreActor(rec)
		if err != nil {
			errs = append(errs, fmt.Errorf("actor %s: %w", rec.ID, err))
			continue
		}
		restored = append(restored, c)
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	w.actors = nil
	w.byID = make(map[string]*actor.Character, len(restored))
	w.lines = make(map[string]*activity.StatusLine, len(restored))
	if w.status != nil {
		for id := range w.status.All() {
			w.status.Remove(id)
		}
	}
	for _, c := range restored {
		w.add(c)
		w.lines[c.ID()].Update(c.Activity(), c, w.printer)
	}
	w.turn = snap.Turn
	w.logger.Info("restored snapshot", "id", snap.ID, "turn", snap.Turn, "actors", len(restored))
	return nil
}

func (w *World) restoreActor(rec snapshot.ActorRecord) (*actor.Character, error) {
	current, err := w.registry.Restore(rec.Activity)
	if err != nil {
		return nil, err
	}
	backlog := make([]*activity.Instance, 0, len(rec.Backlog))
	for _, r := range rec.Backlog {
		inst, err := w.registry.Restore(r)
		if err != nil {
			return nil, err
		}
		if inst != nil {
			backlog = append(backlog, inst)
		}
	}
	opts := []actor.Option{
		actor.WithID(rec.ID),
		actor.WithNPC(rec.NPC),
		actor.WithPosition(rec.Position),
		actor.WithSpeed(rec.Speed),
		actor.WithStamina(rec.Stamina, rec.MaxStamina),
		actor.WithExertion(rec.Exertion),
	}
	// Older snapshots lack these; keep the world's defaults.
	if rec.RestRate > 0 {
		opts = append(opts, actor.WithRestRate(rec.RestRate))
	}
	if rec.CarryLimit > 0 {
		opts = append(opts, actor.WithCarryLimit(rec.CarryLimit))
	}
	c := w.newCharacter(rec.Name, opts...)
	c.SetMoves(rec.Moves)
	for _, it := range rec.Inventory {
		c.AddItem(it)
	}
	for skill, p := range rec.Skills {
		c.SetSkill(skill, p)
	}
	for _, typeID := range rec.Identified {
		c.Identify(typeID)
	}
	c.RestoreActivities(current, backlog)
	return c, nil
}
