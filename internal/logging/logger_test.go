package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/air_monitor/internal/config"
)

func TestProdLoggerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, &config.Config{AppEnv: "prod", LogLevel: slog.LevelInfo}, "station")

	log.Debug("hidden")
	log.Info("cycle complete", "pm25", 4.2)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "cycle complete", rec["msg"])
	assert.Equal(t, "station", rec["app"])
	assert.Equal(t, "prod", rec["env"])
	assert.Equal(t, 4.2, rec["pm25"])
}

func TestDevLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, &config.Config{AppEnv: "dev", LogLevel: slog.LevelWarn}, "probe")

	log.Info("quiet")
	assert.Zero(t, buf.Len())

	log.Warn("loud")
	assert.Contains(t, buf.String(), "loud")
	assert.Contains(t, buf.String(), "probe")
}
