package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{JSON: true, Level: "debug", Output: &buf})
	require.NoError(t, err)

	logger.Debug("rate resolved", zap.String("quantity", "bms"), zap.Int("stage", 6))
	require.NoError(t, logger.Sync())

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "rate resolved", record["msg"])
	assert.Equal(t, "bms", record["quantity"])
	assert.EqualValues(t, 6, record["stage"])
}

func TestConsoleLoggerFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "warn", Output: &buf})
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", zap.String("path", "cxs.H.C.6"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.True(t, strings.Contains(out, "shown"), out)
	assert.Contains(t, out, "cxs.H.C.6")
}

func TestInvalidLevel(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	assert.Error(t, err)
}
