// Package envvar resolves typed configuration keys from a layered view of the
// process environment. A key either resolves to a coerced value, falls back
// to its declared default, or fails with a MissingConfigurationError or an
// InvalidConfigurationError naming the key.
//
// Boolean keys are true only for a case-insensitive "TRUE"; "1", "yes" and
// the empty string are false.
package envvar
