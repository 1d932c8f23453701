package envfile

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/subosito/gotenv"

	"github.com/rdmo-deploy/rdmoctl/internal/envvar"
)

// Environment names a settings environment.
type Environment string

const (
	Production  Environment = "production"
	Development Environment = "development"
)

// File names of the environment files under the deployment base directory.
const (
	ProductionFile  = ".env"
	DevelopmentFile = ".DEBUG.env"
)

// Keys that control which environment is selected.
const (
	KeyEnvName      = "DJANGO_ENV"
	KeyLoadDebugEnv = "LOAD_DEBUG_ENV"
)

// SourcePrefix prefixes the source name of overlays created by Load.
const SourcePrefix = "env-file:"

// ParseEnvironment maps a name to an Environment. "debug" is accepted as an
// alias of development.
func ParseEnvironment(name string) (Environment, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case string(Production):
		return Production, nil
	case string(Development), "debug":
		return Development, nil
	}
	return "", envvar.Invalid(KeyEnvName, "unknown environment %q (expected production or development)", name)
}

// SelectEnvironment decides which environment to load. An explicit
// DJANGO_ENV wins; otherwise LOAD_DEBUG_ENV selects development when it is
// TRUE, and production in every other case.
func SelectEnvironment(r *envvar.Resolver) (Environment, error) {
	name, err := r.String(KeyEnvName, "")
	if err != nil {
		return "", err
	}
	if name != "" {
		return ParseEnvironment(name)
	}
	debug, err := r.Bool(KeyLoadDebugEnv, false)
	if err != nil {
		return "", err
	}
	if debug {
		return Development, nil
	}
	return Production, nil
}

// FileName returns the environment file name for env.
func (e Environment) FileName() string {
	if e == Development {
		return DevelopmentFile
	}
	return ProductionFile
}

// Path returns the environment file path for env under base.
func Path(base string, env Environment) string {
	return filepath.Join(base, env.FileName())
}

// CheckExists fails with an InvalidConfigurationError when the file required
// by key is missing or is a directory.
func CheckExists(key, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return &envvar.InvalidConfigurationError{
			Key:    key,
			Value:  path,
			Reason: fmt.Sprintf("environment file %s does not exist", path),
			Err:    err,
		}
	}
	if info.IsDir() {
		return envvar.Invalid(key, "environment file %s is a directory", path)
	}
	return nil
}

// Read parses an environment file into a map without touching the process
// environment.
func Read(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening env file %s: %w", path, err)
	}
	defer f.Close()

	vars, err := gotenv.StrictParse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing env file %s: %w", path, err)
	}
	return map[string]string(vars), nil
}

// Load checks that path exists, reads it and applies it to env as an
// override layer. key names the setting that required the file and is used
// in error messages.
func Load(env *envvar.Env, key, path string) error {
	if err := CheckExists(key, path); err != nil {
		return err
	}
	vars, err := Read(path)
	if err != nil {
		return err
	}
	env.Overlay(SourcePrefix+path, vars)
	return nil
}

// Entry represents a single key-value pair from a .env file.
type Entry struct {
	Key   string
	Value string
}

// ParseEntries reads an environment file and returns its entries in file
// order. Values are taken from gotenv so quoting and escapes match what Load
// applies.
func ParseEntries(path string) ([]Entry, error) {
	vars, err := Read(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening env file %s: %w", path, err)
	}
	defer f.Close()

	var entries []Entry
	seen := make(map[string]bool, len(vars))
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		// gotenv accepts both KEY=value and KEY: value.
		i := strings.IndexAny(line, "=:")
		if i < 0 {
			continue
		}
		key := strings.TrimSpace(line[:i])
		value, ok := vars[key]
		if !ok || seen[key] {
			continue
		}
		seen[key] = true
		entries = append(entries, Entry{Key: key, Value: value})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading env file %s: %w", path, err)
	}
	return entries, nil
}

// Discover lists the environment files in base: the production and
// development files first when present, then any other *.env file sorted by
// name.
func Discover(base string) ([]string, error) {
	entries, err := os.ReadDir(base)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", base, err)
	}

	var known, other []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		switch {
		case name == ProductionFile || name == DevelopmentFile:
			known = append(known, filepath.Join(base, name))
		case strings.HasSuffix(name, ".env"):
			other = append(other, filepath.Join(base, name))
		}
	}
	sort.Strings(known)
	sort.Strings(other)
	return append(known, other...), nil
}

// sensitivePatterns are substrings that indicate a value should be redacted.
var sensitivePatterns = []string{"TOKEN", "SECRET", "PASSWORD", "CREDENTIAL"}

// IsSensitive reports whether key names a secret. KEY only counts as the
// last word (SECRET_KEY, API_KEY) so KEY_PREFIX and KEYCLOAK_REALM stay
// visible.
func IsSensitive(key string) bool {
	upper := strings.ToUpper(key)
	for _, pattern := range sensitivePatterns {
		if strings.Contains(upper, pattern) {
			return true
		}
	}
	return upper == "KEY" || strings.HasSuffix(upper, "_KEY")
}

// RedactValue returns a redacted version of value if the key name contains
// a sensitive pattern (case-insensitive substring match).
// Values with 4+ chars show the first 4 chars + "***".
// Values with fewer than 4 chars are fully redacted as "***".
func RedactValue(key, value string) string {
	if !IsSensitive(key) {
		return value
	}
	if len(value) >= 4 {
		return value[:4] + "***"
	}
	return "***"
}
