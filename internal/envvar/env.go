package envvar

import (
	"maps"
	"os"
	"sort"
)

// SourceEnvironment marks values read from the base process environment.
const SourceEnvironment = "environment"

// SourceDefault marks values that fell back to a key's default.
const SourceDefault = "default"

// LookupFunc reads a single variable, reporting whether it is set.
type LookupFunc func(key string) (string, bool)

type layer struct {
	source string
	vars   map[string]string
}

// Env is a read-only view of the process environment with ordered overlays
// on top. Later overlays win over earlier ones and over the base lookup,
// which matches loading an environment file with override enabled.
type Env struct {
	base   LookupFunc
	layers []layer
}

// OS returns an Env backed by the real process environment.
func OS() *Env {
	return &Env{base: os.LookupEnv}
}

// FromMap returns an Env backed by a fixed map. Used by tests and by callers
// that snapshot the environment up front.
func FromMap(vars map[string]string) *Env {
	snapshot := maps.Clone(vars)
	return &Env{base: func(key string) (string, bool) {
		v, ok := snapshot[key]
		return v, ok
	}}
}

// Overlay pushes a new layer of variables. The map is copied.
func (e *Env) Overlay(source string, vars map[string]string) {
	e.layers = append(e.layers, layer{source: source, vars: maps.Clone(vars)})
}

// Lookup returns the value of key and where it came from.
func (e *Env) Lookup(key string) (value, source string, ok bool) {
	for i := len(e.layers) - 1; i >= 0; i-- {
		if v, found := e.layers[i].vars[key]; found {
			return v, e.layers[i].source, true
		}
	}
	if e.base != nil {
		if v, found := e.base(key); found {
			return v, SourceEnvironment, true
		}
	}
	return "", "", false
}

// Sources lists overlay sources in the order they were applied.
func (e *Env) Sources() []string {
	out := make([]string, 0, len(e.layers))
	for _, l := range e.layers {
		out = append(out, l.source)
	}
	return out
}

// Overrides flattens all overlays into one map, later layers winning.
func (e *Env) Overrides() map[string]string {
	merged := make(map[string]string)
	for _, l := range e.layers {
		maps.Copy(merged, l.vars)
	}
	return merged
}

// OverrideKeys returns the flattened overlay keys in sorted order.
func (e *Env) OverrideKeys() []string {
	merged := e.Overrides()
	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
