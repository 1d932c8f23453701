// Package logging configures the logrus logger used by rdmoctl and mirrors
// the Django file handlers (error.log, rdmo.log) under LOGGING_DIR.
package logging
