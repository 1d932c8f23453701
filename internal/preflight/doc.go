// Package preflight verifies that a built configuration can actually run:
// directories are writable, env files are private, and the database, cache,
// identity provider and pandoc are reachable.
package preflight
