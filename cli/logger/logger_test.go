package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := newWithStderr(&Options{LogLevel: "warn", LogFormat: "text"}, &buf)

	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newWithStderr(&Options{LogLevel: "debug", LogFormat: "JSON"}, &buf)

	logger.Debug("loaded", "count", 2)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "loaded", record["msg"])
	assert.EqualValues(t, 2, record["count"])
}

func TestNewFallbacks(t *testing.T) {
	var buf bytes.Buffer
	options := &Options{LogLevel: "loud", LogFormat: "xml"}
	logger := newWithStderr(options, &buf)
	require.NotNil(t, logger)

	assert.Empty(t, options.LogLevel)
	assert.Equal(t, "text", options.LogFormat)
	assert.Contains(t, buf.String(), "could not parse logger level")
	assert.Contains(t, buf.String(), "could not parse logger format")
}

func TestNewLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contacts.log")
	logger := New(&Options{LogLevel: "info", LogFile: path, LogFormat: "text"})

	logger.Info("to file")

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "msg=\"to file\"")
}

func TestNewDevNull(t *testing.T) {
	logger := New(&Options{LogFile: os.DevNull})
	assert.False(t, logger.Enabled(t.Context(), 12))
}
