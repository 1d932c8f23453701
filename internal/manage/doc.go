// Package manage runs the framework's manage.py with the environment the
// settings were built from. Command-line parsing and exit codes belong to
// manage.py; the child's exit code is passed through unchanged.
package manage
