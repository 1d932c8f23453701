package envvar

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Key declares a configuration key: its name, kind and optional default.
type Key struct {
	Name       string
	Kind       Kind
	Default    any
	HasDefault bool
}

// Required declares a key that must be present in the environment.
func Required(name string, kind Kind) Key {
	return Key{Name: name, Kind: kind}
}

// Optional declares a key with a default. The default is returned as given
// when the key is absent; it is never coerced.
func Optional(name string, kind Kind, def any) Key {
	return Key{Name: name, Kind: kind, Default: def, HasDefault: true}
}

// Resolution records how a single key was resolved.
type Resolution struct {
	Name   string
	Kind   Kind
	Source string
	Value  string
}

// Resolver resolves keys against an Env and keeps a trace of every key it
// resolved, in order.
type Resolver struct {
	env   *Env
	trace []Resolution
}

// New returns a Resolver reading from env. A nil env reads the process
// environment.
func New(env *Env) *Resolver {
	if env == nil {
		env = OS()
	}
	return &Resolver{env: env}
}

// Env returns the environment the resolver reads from.
func (r *Resolver) Env() *Env { return r.env }

// Trace returns the resolutions performed so far.
func (r *Resolver) Trace() []Resolution {
	out := make([]Resolution, len(r.trace))
	copy(out, r.trace)
	return out
}

// Resolve looks the key up and coerces the raw value to the key's kind.
func (r *Resolver) Resolve(key Key) (any, error) {
	raw, source, ok := r.env.Lookup(key.Name)
	if !ok {
		if key.HasDefault {
			r.record(key, SourceDefault, key.Default)
			return key.Default, nil
		}
		return nil, &MissingConfigurationError{Key: key.Name}
	}

	switch key.Kind {
	case String:
		r.record(key, source, raw)
		return raw, nil

	case Integer:
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, &InvalidConfigurationError{
				Key: key.Name, Value: raw, Kind: key.Kind,
				Reason: fmt.Sprintf("%q is not a base-10 integer", raw),
				Err:    err,
			}
		}
		r.record(key, source, n)
		return n, nil

	case Boolean:
		b := strings.EqualFold(raw, "TRUE")
		r.record(key, source, b)
		return b, nil

	case Path:
		abs, err := filepath.Abs(raw)
		if err != nil {
			return nil, &InvalidConfigurationError{
				Key: key.Name, Value: raw, Kind: key.Kind,
				Reason: "cannot make path absolute", Err: err,
			}
		}
		if _, err := os.Stat(abs); err != nil {
			if key.HasDefault {
				r.record(key, SourceDefault, key.Default)
				return key.Default, nil
			}
			return nil, &InvalidConfigurationError{
				Key: key.Name, Value: raw, Kind: key.Kind,
				Reason: fmt.Sprintf("path %s does not exist, change %s to an existing file", abs, key.Name),
			}
		}
		if resolved, err := filepath.EvalSymlinks(abs); err == nil {
			abs = resolved
		}
		r.record(key, source, abs)
		return abs, nil
	}

	return nil, &InvalidConfigurationError{
		Key: key.Name, Value: raw, Kind: key.Kind,
		Reason: fmt.Sprintf("kind %s does not exist", key.Kind),
	}
}

// String resolves a string key. Passing a default makes the key optional.
func (r *Resolver) String(name string, def ...string) (string, error) {
	v, err := r.Resolve(declare(name, String, def))
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Int resolves an integer key. Passing a default makes the key optional.
func (r *Resolver) Int(name string, def ...int) (int, error) {
	v, err := r.Resolve(declare(name, Integer, def))
	if err != nil {
		return 0, err
	}
	return v.(int), nil
}

// Bool resolves a boolean key. Passing a default makes the key optional.
func (r *Resolver) Bool(name string, def ...bool) (bool, error) {
	v, err := r.Resolve(declare(name, Boolean, def))
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

// Path resolves a path key. Passing a default makes the key optional and is
// also what a non-existent path falls back to.
func (r *Resolver) Path(name string, def ...string) (string, error) {
	v, err := r.Resolve(declare(name, Path, def))
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func declare[T any](name string, kind Kind, def []T) Key {
	if len(def) > 0 {
		return Optional(name, kind, def[0])
	}
	return Required(name, kind)
}

func (r *Resolver) record(key Key, source string, value any) {
	r.trace = append(r.trace, Resolution{
		Name:   key.Name,
		Kind:   key.Kind,
		Source: source,
		Value:  fmt.Sprint(value),
	})
}
