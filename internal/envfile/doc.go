// Package envfile selects, reads and lists the KEY=VALUE environment files of
// an RDMO deployment. Files are parsed with gotenv and applied to an
// envvar.Env as override layers, so values from a file take precedence over
// the process environment without the process environment being modified.
package envfile
