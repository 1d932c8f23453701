package envvar

import (
	"fmt"
	"strings"
)

// Kind is the declared type of a configuration key.
type Kind int

const (
	String Kind = iota
	Integer
	Boolean
	Path
)

var kindNames = map[Kind]string{
	String:  "str",
	Integer: "int",
	Boolean: "bool",
	Path:    "path",
}

// String returns the short kind name used in settings files (e.g., "bool").
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind converts a kind name to a Kind. Both the short names ("str",
// "int", "bool", "path") and the long forms ("string", "integer", "boolean")
// are accepted.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "str", "string":
		return String, nil
	case "int", "integer":
		return Integer, nil
	case "bool", "boolean":
		return Boolean, nil
	case "path":
		return Path, nil
	}
	return String, &InvalidConfigurationError{
		Value:  name,
		Reason: fmt.Sprintf("kind %q does not exist (expected str, int, bool or path)", name),
	}
}
