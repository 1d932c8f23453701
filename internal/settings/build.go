package settings

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rdmo-deploy/rdmoctl/internal/auth"
	"github.com/rdmo-deploy/rdmoctl/internal/envfile"
	"github.com/rdmo-deploy/rdmoctl/internal/envvar"
)

// KeyEnvFile names the main environment file in error messages.
const KeyEnvFile = "ENV_FILE"

// Options controls how settings are built.
type Options struct {
	// BaseDir is the deployment root holding .env, manage.py and config/.
	// Empty means the working directory.
	BaseDir string
	// Env is the environment to resolve against. Nil reads the process
	// environment. It receives the env-file overlays during Build.
	Env *envvar.Env
}

type fragment struct {
	name  string
	apply func(*builder)
}

// plan returns the fragments for env and p in application order.
func plan(env envfile.Environment, p auth.Provider) []fragment {
	return []fragment{
		{"components/base", applyBase},
		{"components/logging", applyLogging},
		{"components/" + auth.Module(p), applyAuth(p)},
		{"environments/" + string(env), applyEnvironment(env)},
	}
}

// Fragments lists the fragment names Build applies for env and p.
func Fragments(env envfile.Environment, p auth.Provider) []string {
	frags := plan(env, p)
	names := make([]string, len(frags))
	for i, f := range frags {
		names[i] = f.name
	}
	return names
}

// Build selects the environment, loads its env file, selects the auth
// provider from its flags and applies every fragment in order. Provider keys
// are resolved by the auth fragment, after the multisite env file is loaded.
// It stops at the first configuration error.
func Build(opts Options) (*Settings, error) {
	base, err := baseDir(opts.BaseDir)
	if err != nil {
		return nil, err
	}

	r := envvar.New(opts.Env)
	name, err := envfile.SelectEnvironment(r)
	if err != nil {
		return nil, err
	}
	envFile := envfile.Path(base, name)
	if err := envfile.Load(r.Env(), KeyEnvFile, envFile); err != nil {
		return nil, err
	}

	provider, err := auth.Select(r)
	if err != nil {
		return nil, fmt.Errorf("selecting auth provider: %w", err)
	}

	s := newDefaults(base)
	s.Environment = Environment{
		Name:    name,
		EnvFile: envFile,
		Module:  SettingsModule(name),
	}
	s.Auth.Provider = provider

	b := &builder{r: r, s: s}
	for _, f := range plan(name, provider) {
		f.apply(b)
		if b.err != nil {
			return nil, fmt.Errorf("%s: %w", f.name, b.err)
		}
		s.Fragments = append(s.Fragments, f.name)
	}

	s.Trace = r.Trace()
	s.Overrides = r.Env().Overrides()
	return s, nil
}

func baseDir(dir string) (string, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting working directory: %w", err)
		}
		dir = wd
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving base directory %s: %w", dir, err)
	}
	return abs, nil
}

// builder resolves keys for the fragments. The first error sticks and every
// later lookup returns the zero value.
type builder struct {
	r   *envvar.Resolver
	s   *Settings
	err error
}

func (b *builder) ok() bool { return b.err == nil }

func (b *builder) check(fn func() error) {
	if b.err == nil {
		b.err = fn()
	}
}

func (b *builder) str(name string, def ...string) string {
	if b.err != nil {
		return ""
	}
	v, err := b.r.String(name, def...)
	b.err = err
	return v
}

func (b *builder) integer(name string, def ...int) int {
	if b.err != nil {
		return 0
	}
	v, err := b.r.Int(name, def...)
	b.err = err
	return v
}

func (b *builder) boolean(name string, def ...bool) bool {
	if b.err != nil {
		return false
	}
	v, err := b.r.Bool(name, def...)
	b.err = err
	return v
}

func (b *builder) path(name string, def ...string) string {
	if b.err != nil {
		return ""
	}
	v, err := b.r.Path(name, def...)
	b.err = err
	return v
}
