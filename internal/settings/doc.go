// Package settings composes the settings of an RDMO deployment from typed
// sections. Fragments run in a fixed order (base, logging, the auth
// provider, then the environment) and the result is a single value that is
// not changed once Build returns.
package settings
