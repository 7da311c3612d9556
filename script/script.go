// Package script runs activity hooks written in Lua.
//
// A script defines optional global functions:
//
//	function progress(act)   -- once per turn
//	  act.values[1] = act.values[1] + 1
//	  if stamina() < 100 then act.clear = true end
//	end
//
//	function finish(act)     -- when moves_left reaches zero
//	  message("done")
//	  return false           -- let the engine clear the activity
//	end
//
// The act table carries kind, moves_left, moves_total, index, position,
// name, auto_resume, values, str_values and placement. After a successful
// call moves_left, values and str_values are written back and act.clear
// clears the instance. Host functions stamina(), max_stamina(),
// spend_stamina(n) and message(text) act on the current actor.
package script

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Shopify/go-lua"

	"github.com/nomis52/turnact/activity"
)

// Loader compiles script files from a directory.
type Loader struct {
	dir    string
	logger *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader creates a loader for scripts in dir.
func NewLoader(dir string, opts ...Option) *Loader {
	l := &Loader{
		dir:    dir,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.With("component", "script")
	return l
}

// Load compiles the named script. Names may not leave the script directory.
func (l *Loader) Load(name string) (activity.Hooks, error) {
	clean := filepath.Clean(name)
	if filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return nil, fmt.Errorf("script %q is outside the script directory", name)
	}
	src, err := os.ReadFile(filepath.Join(l.dir, clean))
	if err != nil {
		return nil, fmt.Errorf("failed to read script %s: %w", name, err)
	}
	return Compile(name, string(src), l.logger)
}

// Hooks runs the progress and finish functions of one script. Calls are
// serialized because a Lua state is single threaded.
type Hooks struct {
	name   string
	logger *slog.Logger

	mu    sync.Mutex
	state *lua.State
	actor activity.Actor
}

// Compile runs src once to define its functions and returns hooks bound to them.
func Compile(name, src string, logger *slog.Logger) (*Hooks, error) {
	h := &Hooks{
		name:   name,
		logger: logger.With("script", name),
		state:  lua.NewState(),
	}
	lua.OpenLibraries(h.state)
	h.registerHostFunctions()

	if err := lua.LoadBuffer(h.state, src, name, ""); err != nil {
		return nil, fmt.Errorf("load script %s: %w", name, err)
	}
	if err := h.state.ProtectedCall(0, 0, 0); err != nil {
		return nil, fmt.Errorf("run script %s: %w", name, err)
	}
	return h, nil
}

func (h *Hooks) registerHostFunctions() {
	h.state.Register("stamina", h.withActor(func(l *lua.State, a activity.Actor) int {
		l.PushInteger(a.Stamina())
		return 1
	}))
	h.state.Register("max_stamina", h.withActor(func(l *lua.State, a activity.Actor) int {
		l.PushInteger(a.MaxStamina())
		return 1
	}))
	h.state.Register("spend_stamina", h.withActor(func(l *lua.State, a activity.Actor) int {
		n := lua.CheckInteger(l, 1)
		if s, ok := a.(interface{ ModStamina(int) }); ok {
			s.ModStamina(-n)
		}
		return 0
	}))
	h.state.Register("message", h.withActor(func(l *lua.State, a activity.Actor) int {
		a.Message(lua.CheckString(l, 1))
		return 0
	}))
}

// withActor guards host functions that are only meaningful inside a hook call.
func (h *Hooks) withActor(f func(*lua.State, activity.Actor) int) lua.Function {
	return func(l *lua.State) int {
		if h.actor == nil {
			lua.Errorf(l, "host function called outside an activity hook")
			return 0
		}
		return f(l, h.actor)
	}
}

// Progress calls the script's progress function, if any.
func (h *Hooks) Progress(inst *activity.Instance, a activity.Actor) {
	h.call("progress", inst, a)
}

// Finish calls the script's finish function. A missing function or a
// failing call counts as not handled.
func (h *Hooks) Finish(inst *activity.Instance, a activity.Actor) bool {
	return h.call("finish", inst, a)
}

func (h *Hooks) call(fn string, inst *activity.Instance, a activity.Actor) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	l := h.state
	top := l.Top()
	defer l.SetTop(top)

	pushInstance(l, inst)
	table := l.AbsIndex(-1)
	l.Global(fn)
	if !l.IsFunction(-1) {
		return false
	}
	l.PushValue(table)

	h.actor = a
	err := l.ProtectedCall(1, 1, 0)
	h.actor = nil
	if err != nil {
		h.logger.Warn("script hook failed", "hook", fn, "kind", inst.ID(), "error", err)
		return false
	}
	handled := l.ToBoolean(-1)

	if err := writeBack(l, table, inst); err != nil {
		h.logger.Warn("script returned invalid activity state", "hook", fn, "kind", inst.ID(), "error", err)
		return false
	}
	return handled
}

func pushInstance(l *lua.State, inst *activity.Instance) {
	l.NewTable()
	l.PushString(inst.ID())
	l.SetField(-2, "kind")
	setInt(l, "moves_left", inst.MovesLeft)
	setInt(l, "moves_total", inst.MovesTotal)
	setInt(l, "index", inst.Index)
	setInt(l, "position", inst.Position)
	l.PushString(inst.Name)
	l.SetField(-2, "name")
	l.PushBoolean(inst.AutoResume)
	l.SetField(-2, "auto_resume")

	l.NewTable()
	for i, v := range inst.Values {
		l.PushInteger(v)
		l.RawSetInt(-2, i+1)
	}
	l.SetField(-2, "values")

	l.NewTable()
	for i, v := range inst.StrValues {
		l.PushString(v)
		l.RawSetInt(-2, i+1)
	}
	l.SetField(-2, "str_values")

	if inst.Placement.IsSet() {
		l.NewTable()
		setInt(l, "x", inst.Placement.X)
		setInt(l, "y", inst.Placement.Y)
		setInt(l, "z", inst.Placement.Z)
		l.SetField(-2, "placement")
	}
}

func setInt(l *lua.State, key string, v int) {
	l.PushInteger(v)
	l.SetField(-2, key)
}

// writeBack copies the mutable fields of the act table at index t into inst.
// Nothing is written unless every field is valid.
func writeBack(l *lua.State, t int, inst *activity.Instance) error {
	l.Field(t, "moves_left")
	movesLeft, ok := l.ToInteger(-1)
	l.Pop(1)
	if !ok {
		return fmt.Errorf("moves_left is not a number")
	}

	l.Field(t, "values")
	values, err := intArray(l, -1)
	l.Pop(1)
	if err != nil {
		return fmt.Errorf("values: %w", err)
	}

	l.Field(t, "str_values")
	strValues, err := stringArray(l, -1)
	l.Pop(1)
	if err != nil {
		return fmt.Errorf("str_values: %w", err)
	}

	l.Field(t, "clear")
	clearIt := l.ToBoolean(-1)
	l.Pop(1)

	inst.MovesLeft = movesLeft
	inst.Values = values
	inst.StrValues = strValues
	if clearIt {
		inst.Clear()
	}
	return nil
}

func intArray(l *lua.State, index int) ([]int, error) {
	if l.IsNil(index) {
		return nil, nil
	}
	if !l.IsTable(index) {
		return nil, fmt.Errorf("not a table")
	}
	index = l.AbsIndex(index)
	n := l.RawLength(index)
	if n == 0 {
		return nil, nil
	}
	out := make([]int, 0, n)
	for i := 1; i <= n; i++ {
		l.RawGetInt(index, i)
		v, ok := l.ToInteger(-1)
		l.Pop(1)
		if !ok {
			return nil, fmt.Errorf("element %d is not a number", i)
		}
		out = append(out, v)
	}
	return out, nil
}

func stringArray(l *lua.State, index int) ([]string, error) {
	if l.IsNil(index) {
		return nil, nil
	}
	if !l.IsTable(index) {
		return nil, fmt.Errorf("not a table")
	}
	index = l.AbsIndex(index)
	n := l.RawLength(index)
	if n == 0 {
		return nil, nil
	}
	out := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		l.RawGetInt(index, i)
		v, ok := l.ToString(-1)
		l.Pop(1)
		if !ok {
			return nil, fmt.Errorf("element %d is not a string", i)
		}
		out = append(out, v)
	}
	return out, nil
}
