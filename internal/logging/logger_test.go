package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected logrus.Level
		wantErr  bool
	}{
		{"", logrus.WarnLevel, false},
		{"debug", logrus.DebugLevel, false},
		{"INFO", logrus.InfoLevel, false},
		{"warning", logrus.WarnLevel, false},
		{"error", logrus.ErrorLevel, false},
		{"verbose", logrus.WarnLevel, true},
	}

	for _, tt := range tests {
		level, err := ParseLevel(tt.input)
		if tt.wantErr {
			assert.Error(t, err, tt.input)
			continue
		}
		assert.NoError(t, err, tt.input)
		assert.Equal(t, tt.expected, level, tt.input)
	}
}

func TestNewJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "info", Format: "json", Output: &buf})
	require.NoError(t, err)

	logger.WithField(FieldPage, 3).Info("page written")
	logger.Debug("hidden")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "page written", entry["msg"])
	assert.Equal(t, float64(3), entry[FieldPage])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestNewTextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Output: &buf})
	require.NoError(t, err)
	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())

	logger.Info("not shown")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "not shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewFileLogger(t *testing.T) {
	file := filepath.Join(t.TempDir(), "logs", "pdfsplit.log")
	logger, err := New(Config{Level: "debug", File: file})
	require.NoError(t, err)

	logger.Debug("to file")

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
}

func TestNewInvalid(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	assert.Error(t, err)

	_, err = New(Config{Format: "xml"})
	assert.Error(t, err)
}
