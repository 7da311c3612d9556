// Package catalog loads activity kind definitions from YAML and builds a
// registry with their hooks bound.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nomis52/turnact/activity"
)

//go:embed kinds.yaml
var defaultKinds []byte

// Definition describes one activity kind as written in a catalog file.
type Definition struct {
	ID                string              `yaml:"id"`
	BasedOn           *activity.TimeBasis `yaml:"based_on"`
	Category          activity.Category   `yaml:"category"`
	Suspendable       bool                `yaml:"suspendable"`
	NoResume          bool                `yaml:"no_resume"`
	MultiActivity     bool                `yaml:"multi_activity"`
	Rooted            bool                `yaml:"rooted"`
	RefuelFires       bool                `yaml:"refuel_fires"`
	DefersStaminaCost bool                `yaml:"defers_stamina_cost"`
	Verb              string              `yaml:"verb"`
	StopPhrase        string              `yaml:"stop_phrase"`
	// Hooks names the behavior: "builtin:<name>" or "script:<file>".
	// Empty means no progress or finish action.
	Hooks string `yaml:"hooks"`
	// StaminaCost is used by the builtin work and travel hooks.
	StaminaCost int `yaml:"stamina_cost"`
}

// Spec converts the definition to a registration spec.
func (d Definition) Spec() activity.KindSpec {
	spec := activity.KindSpec{
		ID:                d.ID,
		Category:          d.Category,
		Suspendable:       d.Suspendable,
		Resumable:         !d.NoResume,
		MultiActivity:     d.MultiActivity,
		Rooted:            d.Rooted,
		RefuelsFires:      d.RefuelFires,
		DefersStaminaCost: d.DefersStaminaCost,
		Verb:              d.Verb,
		StopPhrase:        d.StopPhrase,
	}
	if d.BasedOn != nil {
		spec.TimeBasis = *d.BasedOn
	}
	return spec
}

type file struct {
	Kinds []Definition `yaml:"kinds"`
}

// Default returns the definitions compiled into the binary.
func Default() ([]Definition, error) {
	return Load(defaultKinds)
}

// LoadFile reads definitions from a YAML file.
func LoadFile(path string) ([]Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	defs, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return defs, nil
}

// Load parses and validates definitions.
func Load(data []byte) ([]Definition, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if len(f.Kinds) == 0 {
		return nil, errors.New("catalog defines no kinds")
	}

	var errs []error
	seen := make(map[string]bool, len(f.Kinds))
	for i, d := range f.Kinds {
		switch {
		case d.ID == "":
			errs = append(errs, fmt.Errorf("kind %d: id is required", i))
		case seen[d.ID]:
			errs = append(errs, fmt.Errorf("kind %s: defined more than once", d.ID))
		case d.BasedOn == nil:
			errs = append(errs, fmt.Errorf("kind %s: based_on is required", d.ID))
		}
		if d.Hooks != "" {
			if _, _, err := splitHookRef(d.Hooks); err != nil {
				errs = append(errs, fmt.Errorf("kind %s: %w", d.ID, err))
			}
		}
		seen[d.ID] = true
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return f.Kinds, nil
}

// Merge returns base with every definition in overrides replacing the one
// with the same id, and new ids appended.
func Merge(base, overrides []Definition) []Definition {
	out := make([]Definition, 0, len(base)+len(overrides))
	index := make(map[string]int, len(base))
	for _, d := range base {
		index[d.ID] = len(out)
		out = append(out, d)
	}
	for _, d := range overrides {
		if i, ok := index[d.ID]; ok {
			out[i] = d
			continue
		}
		index[d.ID] = len(out)
		out = append(out, d)
	}
	return out
}

// Build registers every definition with the hooks resolver binds to it.
func Build(defs []Definition, resolver *Resolver) (*activity.Registry, error) {
	reg := activity.NewRegistry()
	var errs []error
	for _, d := range defs {
		hooks, err := resolver.Resolve(d)
		if err != nil {
			errs = append(errs, fmt.Errorf("kind %s: %w", d.ID, err))
			continue
		}
		if _, err := reg.Register(d.Spec(), hooks); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return reg, nil
}

func splitHookRef(ref string) (scheme, name string, err error) {
	scheme, name, ok := strings.Cut(ref, ":")
	if !ok || name == "" {
		return "", "", fmt.Errorf("invalid hook reference %q", ref)
	}
	switch scheme {
	case schemeBuiltin, schemeScript:
		return scheme, name, nil
	}
	return "", "", fmt.Errorf("unknown hook scheme %q in %q", scheme, ref)
}
