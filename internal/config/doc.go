// Package config manages the tool's own settings stored at
// ~/.rdmoctl/config.yaml: the default deployment base directory, the Python
// interpreter used for manage.py and the log level. Every key can be
// overridden with an RDMOCTL_ environment variable.
package config
