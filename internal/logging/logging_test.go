package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_WritesJSONToFile(t *testing.T) {
	// Given: logging configured with a file and no stderr
	logPath := filepath.Join(t.TempDir(), "faqdesk.log")
	logger, cleanup, err := Setup(Config{
		Level:         "debug",
		FilePath:      logPath,
		WriteToStderr: false,
	})
	require.NoError(t, err)

	// When: an event is logged
	logger.Info("search_completed", "strategy", "semantic", "results", 3)
	cleanup()

	// Then: the file contains a JSON record with the attributes
	data, err := os.ReadFile(logPath)
	require.NoError(t, err)

	var record map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.SplitN(string(data), "\n", 2)[0]), &record))
	assert.Equal(t, "search_completed", record["msg"])
	assert.Equal(t, "semantic", record["strategy"])
	assert.EqualValues(t, 3, record["results"])
}

func TestSetup_LevelFiltering(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "faqdesk.log")
	logger, cleanup, err := Setup(Config{
		Level:         "warn",
		FilePath:      logPath,
		WriteToStderr: false,
	})
	require.NoError(t, err)

	logger.Debug("dropped")
	logger.Info("dropped too")
	logger.Warn("kept")
	cleanup()

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dropped")
	assert.Contains(t, string(data), "kept")
}

func TestParseLevel_UnknownDefaultsToInfo(t *testing.T) {
	assert.Equal(t, parseLevel("info"), parseLevel("bogus"))
}

func TestRotatingWriter_RotatesAtMaxSize(t *testing.T) {
	// Given: a writer with a 1MB limit
	dir := t.TempDir()
	logPath := filepath.Join(dir, "faqdesk.log")
	w, err := NewRotatingWriter(logPath, 1, 3)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	// When: more than 1MB is written
	line := []byte(strings.Repeat("x", 1024) + "\n")
	for i := 0; i < 1100; i++ {
		_, err := w.Write(line)
		require.NoError(t, err)
	}

	// Then: a rotated file exists alongside the active one
	_, err = os.Stat(logPath)
	require.NoError(t, err)
	_, err = os.Stat(logPath + ".1")
	require.NoError(t, err)
}

func TestRotatingWriter_KeepsAtMostMaxFiles(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "faqdesk.log")
	w, err := NewRotatingWriter(logPath, 1, 2)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	line := []byte(strings.Repeat("y", 1024) + "\n")
	for i := 0; i < 5000; i++ {
		_, err := w.Write(line)
		require.NoError(t, err)
	}

	for n := 1; n <= 2; n++ {
		_, err := os.Stat(fmt.Sprintf("%s.%d", logPath, n))
		assert.NoError(t, err, "rotated file .%d should exist", n)
	}
	_, err = os.Stat(logPath + ".3")
	assert.True(t, os.IsNotExist(err), "rotation should not keep more than maxFiles")
}
