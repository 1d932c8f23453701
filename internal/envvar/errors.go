package envvar

import (
	"errors"
	"fmt"
)

// Sentinel errors matched by errors.Is against the typed errors below.
var (
	ErrMissingConfiguration = errors.New("missing configuration")
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// MissingConfigurationError reports a key with neither an environment value
// nor a default.
type MissingConfigurationError struct {
	Key string
}

func (e *MissingConfigurationError) Error() string {
	return fmt.Sprintf("missing configuration: set the %s environment variable", e.Key)
}

func (e *MissingConfigurationError) Is(target error) bool {
	return target == ErrMissingConfiguration
}

// InvalidConfigurationError reports a value that cannot be coerced to its
// declared kind, or a configuration that is inconsistent as a whole.
type InvalidConfigurationError struct {
	Key    string
	Value  string
	Kind   Kind
	Reason string
	Err    error
}

func (e *InvalidConfigurationError) Error() string {
	msg := "invalid configuration"
	if e.Key != "" {
		msg += ": " + e.Key
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InvalidConfigurationError) Unwrap() error { return e.Err }

func (e *InvalidConfigurationError) Is(target error) bool {
	return target == ErrInvalidConfiguration
}

// Invalid builds an InvalidConfigurationError for checks that span several
// keys, such as mutually exclusive flags.
func Invalid(key, format string, args ...any) error {
	return &InvalidConfigurationError{Key: key, Reason: fmt.Sprintf(format, args...)}
}
