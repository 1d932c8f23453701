package settings

import "path/filepath"

// Logging holds LOGGING_DIR and the Django logging dictionary built from it.
type Logging struct {
	Dir        string
	Filters    map[string]string
	Formatters map[string]string
	Handlers   map[string]LogHandler
	Loggers    map[string]Logger
}

// LogHandler is one entry of the "handlers" table.
type LogHandler struct {
	Level     string
	Class     string
	Filters   []string
	Filename  string
	Formatter string
}

// Logger is one entry of the "loggers" table.
type Logger struct {
	Handlers  []string
	Level     string
	Propagate *bool
}

// ErrorLog and RDMOLog are the file names written under LOGGING_DIR.
const (
	ErrorLog = "error.log"
	RDMOLog  = "rdmo.log"
)

func newLogging(dir string) Logging {
	yes, no := true, false
	return Logging{
		Dir: dir,
		Filters: map[string]string{
			"require_debug_false": "django.utils.log.RequireDebugFalse",
			"require_debug_true":  "django.utils.log.RequireDebugTrue",
		},
		Formatters: map[string]string{
			"default": "[%(asctime)s] %(levelname)s: %(message)s",
			"name":    "[%(asctime)s] %(levelname)s %(name)s: %(message)s",
			"console": "[%(asctime)s] %(message)s",
		},
		Handlers: map[string]LogHandler{
			"mail_admins": {
				Level:   "ERROR",
				Class:   "django.utils.log.AdminEmailHandler",
				Filters: []string{"require_debug_false"},
			},
			"error_log": {
				Level:     "ERROR",
				Class:     "logging.handlers.WatchedFileHandler",
				Filename:  filepath.Join(dir, ErrorLog),
				Formatter: "default",
			},
			"rdmo_log": {
				Level:     "DEBUG",
				Class:     "logging.handlers.WatchedFileHandler",
				Filename:  filepath.Join(dir, RDMOLog),
				Formatter: "name",
			},
			"console": {
				Level:     "DEBUG",
				Class:     "logging.StreamHandler",
				Filters:   []string{"require_debug_true"},
				Formatter: "console",
			},
		},
		Loggers: map[string]Logger{
			"django": {
				Handlers: []string{"console"},
				Level:    "INFO",
			},
			"django.request": {
				Handlers:  []string{"mail_admins", "error_log"},
				Level:     "DEBUG",
				Propagate: &yes,
			},
			"rdmo": {
				Handlers:  []string{"rdmo_log", "console"},
				Level:     "DEBUG",
				Propagate: &no,
			},
		},
	}
}

// Dict renders the logging configuration in Django's dictConfig shape.
func (l Logging) Dict() map[string]any {
	filters := make(map[string]any, len(l.Filters))
	for name, factory := range l.Filters {
		filters[name] = map[string]any{"()": factory}
	}
	formatters := make(map[string]any, len(l.Formatters))
	for name, format := range l.Formatters {
		formatters[name] = map[string]any{"format": format}
	}
	handlers := make(map[string]any, len(l.Handlers))
	for name, h := range l.Handlers {
		m := map[string]any{"level": h.Level, "class": h.Class}
		if len(h.Filters) > 0 {
			m["filters"] = h.Filters
		}
		if h.Filename != "" {
			m["filename"] = h.Filename
		}
		if h.Formatter != "" {
			m["formatter"] = h.Formatter
		}
		handlers[name] = m
	}
	loggers := make(map[string]any, len(l.Loggers))
	for name, lg := range l.Loggers {
		m := map[string]any{"handlers": lg.Handlers, "level": lg.Level}
		if lg.Propagate != nil {
			m["propagate"] = *lg.Propagate
		}
		loggers[name] = m
	}
	return map[string]any{
		"version":                  1,
		"disable_existing_loggers": true,
		"filters":                  filters,
		"formatters":               formatters,
		"handlers":                 handlers,
		"loggers":                  loggers,
	}
}
