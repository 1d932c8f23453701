// Package platform wraps the filesystem permission operations that differ
// between Unix and Windows: chmod, permission inspection and access checks.
package platform
