package actor

import (
	"slices"

	"github.com/nomis52/turnact/activity"
)

// Activity returns the current instance, possibly nil.
func (c *Character) Activity() *activity.Instance {
	return c.act
}

// SetActivity replaces the current instance without touching the backlog.
func (c *Character) SetActivity(inst *activity.Instance) {
	c.act = inst
}

// HasActivity reports whether an activity is in progress.
func (c *Character) HasActivity() bool {
	return c.act.Active()
}

// AssignActivity starts inst. With allowResume, a backlogged instance that
// describes the same task is adopted instead so earlier progress is kept.
// Otherwise the current activity, if any, is pushed to the backlog.
func (c *Character) AssignActivity(inst *activity.Instance, allowResume bool) {
	if allowResume && len(c.backlog) > 0 && inst.CanResumeWith(c.backlog[0]) {
		c.Message(c.sprintf(MsgResume))
		c.act = c.backlog[0]
		c.backlog = slices.Delete(c.backlog, 0, 1)
	} else {
		if c.act.Active() {
			inst.InheritDistractions(c.act)
			c.PushBacklog(c.act)
		}
		c.act = inst
	}

	if c.act.Rooted() && c.act.Verb() != "" {
		c.Message(c.sprintf(MsgRooted, c.sprintf(c.act.Verb())))
	}
	c.logger.Debug("assigned activity", "kind", c.act.ID(), "backlog", len(c.backlog))
}

// CancelActivity stops the current activity. Backlog entries the actor
// suspended by choice are forgotten; suspendable work is kept for later.
func (c *Character) CancelActivity() {
	c.backlog = slices.DeleteFunc(c.backlog, func(inst *activity.Instance) bool {
		return !inst.AutoResume
	})
	if c.act.Active() {
		if verb := c.act.Verb(); verb != "" {
			c.Message(c.sprintf(MsgStop, c.sprintf(verb)))
		}
		if c.act.IsSuspendable() {
			c.PushBacklog(c.act)
		}
	}
	c.act = nil
}

// InterruptionPrompt returns the question to ask before stopping the
// current activity, or "" when idle.
func (c *Character) InterruptionPrompt() string {
	kind := c.act.Kind()
	if kind == nil {
		return ""
	}
	if custom := kind.Spec().StopPhrase; custom != "" {
		return c.sprintf(custom)
	}
	if kind.Verb() == "" {
		return ""
	}
	return c.sprintf(activity.MsgStopPhrase, c.sprintf(kind.Verb()))
}

// PushBacklog puts inst at the front of the backlog.
func (c *Character) PushBacklog(inst *activity.Instance) {
	c.backlog = slices.Insert(c.backlog, 0, inst)
}

// ResumeBacklogActivity reinstalls the backlog front if the engine paused it
// for exhaustion.
func (c *Character) ResumeBacklogActivity() bool {
	if len(c.backlog) == 0 || !c.backlog[0].AutoResume {
		return false
	}
	c.act = c.backlog[0]
	c.act.AutoResume = false
	c.act.AllowDistractions()
	c.backlog = slices.Delete(c.backlog, 0, 1)
	c.logger.Debug("resumed backlog activity", "kind", c.act.ID())
	return true
}

// Backlog returns the suspended instances, front first.
func (c *Character) Backlog() []*activity.Instance {
	return slices.Clone(c.backlog)
}

// BacklogLen returns the number of suspended instances.
func (c *Character) BacklogLen() int {
	return len(c.backlog)
}

// RestoreActivities replaces the current activity and backlog, for
// example when loading a snapshot.
func (c *Character) RestoreActivities(current *activity.Instance, backlog []*activity.Instance) {
	c.act = current
	c.backlog = slices.Clone(backlog)
}
