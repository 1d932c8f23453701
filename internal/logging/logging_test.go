package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatter(t *testing.T) {
	e := &logrus.Entry{
		Time:    time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC),
		Level:   logrus.WarnLevel,
		Message: "env file is world readable",
		Data:    logrus.Fields{FieldLogger: "rdmo", "path": "/srv/rdmo/.env"},
	}

	plain, err := (&Formatter{}).Format(e)
	require.NoError(t, err)
	assert.Equal(t, "[2024-03-01 12:30:00] WARNING: env file is world readable logger=rdmo path=/srv/rdmo/.env\n", string(plain))

	named, err := (&Formatter{WithName: true}).Format(e)
	require.NoError(t, err)
	assert.Equal(t, "[2024-03-01 12:30:00] WARNING rdmo: env file is world readable path=/srv/rdmo/.env\n", string(named))
}

func TestNew_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := New("debug", &buf)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())

	logger.Debug("resolving settings")
	assert.Contains(t, buf.String(), "DEBUG: resolving settings")

	assert.Equal(t, logrus.InfoLevel, New("verbose", &buf).GetLevel())
}

func TestAttachFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "log")
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	files, err := AttachFiles(logger, dir)
	require.NoError(t, err)

	logger.WithField(FieldLogger, "rdmoctl").Info("settings built")
	logger.Error("database unreachable")
	require.NoError(t, files.Close())

	assert.Len(t, hook.AllEntries(), 2)
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)

	errorLog, err := os.ReadFile(files.ErrorLog)
	require.NoError(t, err)
	assert.Contains(t, string(errorLog), "ERROR: database unreachable")
	assert.NotContains(t, string(errorLog), "settings built")

	rdmoLog, err := os.ReadFile(files.RDMOLog)
	require.NoError(t, err)
	assert.Contains(t, string(rdmoLog), "INFO rdmoctl: settings built")
	assert.Contains(t, string(rdmoLog), "ERROR: database unreachable")
}

func TestAttachFiles_Appends(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 2; i++ {
		logger, _ := test.NewNullLogger()
		files, err := AttachFiles(logger, dir)
		require.NoError(t, err)
		logger.Errorf("run %d", i)
		require.NoError(t, files.Close())
	}

	data, err := os.ReadFile(filepath.Join(dir, "error.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "run 0")
	assert.Contains(t, string(data), "run 1")
}
