package manage

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rdmo-deploy/rdmoctl/internal/settings"
)

// KeySettingsModule is the variable Django reads to locate its settings.
const KeySettingsModule = "DJANGO_SETTINGS_MODULE"

// DefaultPython is used when Runner.Python is empty.
const DefaultPython = "python3"

// Runner executes `<python> <base>/manage.py <args>`.
type Runner struct {
	Python string

	// Stdin, Stdout and Stderr default to the process streams.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Script returns the manage.py path for s.
func Script(s *settings.Settings) string {
	return filepath.Join(s.Paths.BaseDir, "manage.py")
}

// Run executes manage.py in the base directory and returns its exit code.
// A non-zero exit is not an error; the error return is for failures to
// start the process.
func (r *Runner) Run(ctx context.Context, s *settings.Settings, args []string) (int, error) {
	python := r.Python
	if python == "" {
		python = DefaultPython
	}
	pythonBin, err := exec.LookPath(python)
	if err != nil {
		return -1, fmt.Errorf("manage requires a Python interpreter: %w", err)
	}

	script := Script(s)
	if _, err := os.Stat(script); err != nil {
		return -1, fmt.Errorf("manage.py not found at %s: %w", script, err)
	}

	cmd := exec.CommandContext(ctx, pythonBin, append([]string{script}, args...)...)
	cmd.Dir = s.Paths.BaseDir
	cmd.Env = BuildEnv(os.Environ(), s)
	cmd.Stdin = r.Stdin
	if cmd.Stdin == nil {
		cmd.Stdin = os.Stdin
	}
	cmd.Stdout = r.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = r.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return exitErr.ExitCode(), nil
		}
		return -1, fmt.Errorf("executing manage.py: %w", err)
	}
	return 0, nil
}

// BuildEnv returns base with the env-file overrides of s applied and
// DJANGO_SETTINGS_MODULE set when it is not already present.
func BuildEnv(base []string, s *settings.Settings) []string {
	env := append([]string(nil), base...)

	keys := make([]string, 0, len(s.Overrides))
	for k := range s.Overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = setEnv(env, k, s.Overrides[k])
	}

	if _, ok := lookupEnv(env, KeySettingsModule); !ok {
		env = setEnv(env, KeySettingsModule, s.Environment.Module)
	}
	return env
}

// setEnv sets or replaces an environment variable in the env slice.
func setEnv(env []string, key, value string) []string {
	prefix := key + "="
	for i, e := range env {
		if strings.HasPrefix(e, prefix) {
			env[i] = prefix + value
			return env
		}
	}
	return append(env, prefix+value)
}

func lookupEnv(env []string, key string) (string, bool) {
	prefix := key + "="
	for _, e := range env {
		if strings.HasPrefix(e, prefix) {
			return strings.TrimPrefix(e, prefix), true
		}
	}
	return "", false
}
