package catalog

import (
	"fmt"
	"log/slog"

	"github.com/nomis52/turnact/activity"
)

const (
	schemeBuiltin = "builtin"
	schemeScript  = "script"
)

// MsgTooTired is sent when a rest without a target ends before stamina is full.
const MsgTooTired = "You are too tired to continue."

// ScriptLoader loads hooks implemented in script files.
type ScriptLoader interface {
	Load(name string) (activity.Hooks, error)
}

// BuiltinFactory creates the hooks of a builtin for one definition.
type BuiltinFactory func(d Definition) activity.Hooks

// Resolver turns hook references into hooks.
type Resolver struct {
	logger   *slog.Logger
	printer  activity.Printer
	scripts  ScriptLoader
	builtins map[string]BuiltinFactory
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = logger.With("component", "catalog")
	}
}

// WithPrinter sets the printer builtins use for actor messages.
func WithPrinter(p activity.Printer) ResolverOption {
	return func(r *Resolver) {
		r.printer = p
	}
}

// WithScripts enables "script:" hook references.
func WithScripts(loader ScriptLoader) ResolverOption {
	return func(r *Resolver) {
		r.scripts = loader
	}
}

// WithBuiltin adds or replaces a builtin.
func WithBuiltin(name string, f BuiltinFactory) ResolverOption {
	return func(r *Resolver) {
		r.builtins[name] = f
	}
}

// NewResolver creates a resolver that knows the standard builtins.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		logger: slog.Default().With("component", "catalog"),
	}
	r.builtins = map[string]BuiltinFactory{
		"wait_stamina": r.waitStamina,
		"wait":         func(Definition) activity.Hooks { return activity.HookFuncs{} },
		"work":         work,
		"travel":       travel,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the hooks d refers to. A definition without hooks gets nil.
func (r *Resolver) Resolve(d Definition) (activity.Hooks, error) {
	if d.Hooks == "" {
		return nil, nil
	}
	scheme, name, err := splitHookRef(d.Hooks)
	if err != nil {
		return nil, err
	}
	switch scheme {
	case schemeBuiltin:
		f, ok := r.builtins[name]
		if !ok {
			return nil, fmt.Errorf("unknown builtin hook %q", name)
		}
		return f(d), nil
	default:
		if r.scripts == nil {
			return nil, fmt.Errorf("script hook %q requested but scripting is disabled", name)
		}
		return r.scripts.Load(name)
	}
}

type staminaUser interface {
	ModStamina(delta int)
}

type traveller interface {
	StepToward(dest activity.Point, staminaCost int) bool
}

// waitStamina rests until stamina reaches Values[0], or the maximum when no
// target was given.
func (r *Resolver) waitStamina(Definition) activity.Hooks {
	finish := func(inst *activity.Instance, a activity.Actor) bool {
		if len(inst.Values) > 0 {
			threshold := inst.Values[0]
			initial := inst.Value(1, a.Stamina())
			if a.Stamina() < threshold && a.Stamina() <= initial {
				r.logger.Warn("stamina did not recover while resting",
					"actor", a.ID(), "threshold", threshold, "stamina", a.Stamina())
			}
		} else if a.Stamina() < a.MaxStamina() {
			a.Message(sprintf(r.printer, MsgTooTired))
		}
		inst.Clear()
		return true
	}
	return activity.HookFuncs{
		OnProgress: func(inst *activity.Instance, a activity.Actor) {
			threshold := a.MaxStamina()
			if len(inst.Values) > 0 {
				threshold = inst.Values[0]
				// Remember where the rest started.
				if len(inst.Values) == 1 {
					inst.Values = append(inst.Values, a.Stamina())
				}
			}
			if a.Stamina() >= threshold {
				finish(inst, a)
			}
		},
		OnFinish: finish,
	}
}

// work spends the definition's stamina cost every turn.
func work(d Definition) activity.Hooks {
	cost := d.StaminaCost
	return activity.HookFuncs{
		OnProgress: func(_ *activity.Instance, a activity.Actor) {
			if s, ok := a.(staminaUser); ok && cost > 0 {
				s.ModStamina(-cost)
			}
		},
	}
}

// travel walks one step per turn toward the instance's placement and ends
// on arrival. Movement stamina is charged after the turn.
func travel(d Definition) activity.Hooks {
	cost := d.StaminaCost
	return activity.HookFuncs{
		OnProgress: func(inst *activity.Instance, a activity.Actor) {
			t, ok := a.(traveller)
			if !ok || !inst.Placement.IsSet() {
				inst.Clear()
				return
			}
			if t.StepToward(inst.Placement, cost) {
				inst.Clear()
			}
		},
	}
}

func sprintf(p activity.Printer, key string, args ...any) string {
	if p == nil {
		return fmt.Sprintf(key, args...)
	}
	return p.Sprintf(key, args...)
}
