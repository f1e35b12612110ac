package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amlstack/advisor/pkg/logger"
)

func TestLogger_ShouldRespectLevel(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewLogger(&logger.Config{Level: logger.WarnLevel, Output: &buf})
	log.Info("hidden")
	log.Warn("visible")
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible")
}

func TestLogger_ShouldEmitJSONWhenConfigured(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewLogger(&logger.Config{Level: logger.InfoLevel, Output: &buf, JSON: true})
	log.Info("structured", "run_id", "abc")
	line := strings.TrimSpace(buf.String())
	var record map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &record))
	assert.Equal(t, "structured", record["msg"])
	assert.Equal(t, "abc", record["run_id"])
}

func TestLogger_ShouldCarryWithFields(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewLogger(&logger.Config{Level: logger.InfoLevel, Output: &buf})
	log.With("component", "router").Info("ready")
	assert.Contains(t, buf.String(), "component")
	assert.Contains(t, buf.String(), "router")
}

func TestFromContext_ShouldReturnAttachedLogger(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewLogger(&logger.Config{Level: logger.InfoLevel, Output: &buf})
	ctx := logger.ContextWithLogger(context.Background(), log)
	logger.FromContext(ctx).Info("from context")
	assert.Contains(t, buf.String(), "from context")
}

func TestFromContext_ShouldFallBackToDefault(t *testing.T) {
	assert.NotNil(t, logger.FromContext(context.Background()))
}

func TestLogLevel_ShouldMapToCharmLevels(t *testing.T) {
	assert.Equal(t, "debug", logger.DebugLevel.String())
	assert.Equal(t,
		logger.InfoLevel.ToCharmlogLevel(),
		logger.LogLevel("unknown").ToCharmlogLevel(),
	)
}
