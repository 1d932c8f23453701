package logging

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/rdmo-deploy/rdmoctl/internal/settings"
)

// FieldLogger is the entry field holding a logger name, rendered by the
// "name" format.
const FieldLogger = "logger"

const timestampFormat = "2006-01-02 15:04:05"

// Formatter renders entries the way the Django formatters do:
// "[time] LEVEL: message", or "[time] LEVEL name: message" with WithName.
// Remaining fields follow as sorted key=value pairs.
type Formatter struct {
	WithName bool
}

func (f *Formatter) Format(e *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer
	fmt.Fprintf(&b, "[%s] %s", e.Time.Format(timestampFormat), strings.ToUpper(e.Level.String()))
	if name, ok := e.Data[FieldLogger]; ok && f.WithName {
		fmt.Fprintf(&b, " %v", name)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)

	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		if k == FieldLogger && f.WithName {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.Data[k])
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

// New returns a logger writing to out at level. An unknown level falls back
// to info.
func New(level string, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetFormatter(&Formatter{})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}

// fileHook writes entries of the given levels to a file.
type fileHook struct {
	mu        sync.Mutex
	levels    []logrus.Level
	out       io.Writer
	formatter logrus.Formatter
}

func (h *fileHook) Levels() []logrus.Level { return h.levels }

func (h *fileHook) Fire(e *logrus.Entry) error {
	line, err := h.formatter.Format(e)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.out.Write(line)
	return err
}

// Files holds the log files opened by AttachFiles.
type Files struct {
	ErrorLog string
	RDMOLog  string
	files    []*os.File
}

// Close closes both log files.
func (f *Files) Close() error {
	var errs []error
	for _, file := range f.files {
		errs = append(errs, file.Close())
	}
	return errors.Join(errs...)
}

// AttachFiles creates dir when needed and adds two hooks to logger:
// ERROR and above go to error.log, every entry goes to rdmo.log with the
// logger name.
func AttachFiles(logger *logrus.Logger, dir string) (*Files, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory %s: %w", dir, err)
	}

	f := &Files{
		ErrorLog: filepath.Join(dir, settings.ErrorLog),
		RDMOLog:  filepath.Join(dir, settings.RDMOLog),
	}
	errorFile, err := openLog(f.ErrorLog)
	if err != nil {
		return nil, err
	}
	rdmoFile, err := openLog(f.RDMOLog)
	if err != nil {
		errorFile.Close()
		return nil, err
	}
	f.files = []*os.File{errorFile, rdmoFile}

	logger.AddHook(&fileHook{
		levels:    logrus.AllLevels[:logrus.ErrorLevel+1],
		out:       errorFile,
		formatter: &Formatter{},
	})
	logger.AddHook(&fileHook{
		levels:    logrus.AllLevels,
		out:       rdmoFile,
		formatter: &Formatter{WithName: true},
	})
	return f, nil
}

func openLog(path string) (*os.File, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file %s: %w", path, err)
	}
	return file, nil
}
