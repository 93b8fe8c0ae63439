package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.txt")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, uint16(0x69), cfg.SEN5XI2CAddr)
	assert.False(t, cfg.SensorMock)
	assert.Equal(t, 300*time.Second, cfg.AcquisitionPeriod)
	assert.Equal(t, 3*time.Second, cfg.SettleDelay)
	assert.Equal(t, 100*time.Millisecond, cfg.DataReadyPollInterval)
	assert.Equal(t, 50, cfg.DataReadyMaxPolls)
	assert.Equal(t, 3, cfg.ReadsPerCycle)
	assert.False(t, cfg.AcquireOnStart)
	assert.Equal(t, 8080, cfg.WebServerPort)
	assert.Empty(t, cfg.MQTTBroker)
	assert.Equal(t, "airmon/reading", cfg.TopicReading)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `# station settings
APP_ENV=prod
LOG_LEVEL=debug
SEN5X_I2C_ADDR=0x6A
SENSOR_MOCK=true
ACQUISITION_PERIOD=10s
SETTLE_DELAY=0s
READS_PER_CYCLE=1
ACQUIRE_ON_START=true
WEB_SERVER_PORT=9000
MQTT_BROKER=tcp://localhost:1883
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.AppEnv)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, uint16(0x6A), cfg.SEN5XI2CAddr)
	assert.True(t, cfg.SensorMock)
	assert.Equal(t, 10*time.Second, cfg.AcquisitionPeriod)
	assert.Zero(t, cfg.SettleDelay)
	assert.Equal(t, 1, cfg.ReadsPerCycle)
	assert.True(t, cfg.AcquireOnStart)
	assert.Equal(t, 9000, cfg.WebServerPort)
	assert.Equal(t, "tcp://localhost:1883", cfg.MQTTBroker)
	assert.Equal(t, "air-monitor-station", cfg.MQTTClientIDStation)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "WEB_SERVER_PORT=9000\n")
	t.Setenv("AIRMON_WEB_SERVER_PORT", "9100")
	t.Setenv("AIRMON_SEN5X_I2C_ADDR", "105")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.WebServerPort)
	assert.Equal(t, uint16(0x69), cfg.SEN5XI2CAddr)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"unknown key", "BMP_SPI_BUS=0\n", `unknown config key: "BMP_SPI_BUS"`},
		{"bad duration", "ACQUISITION_PERIOD=300\n", "invalid ACQUISITION_PERIOD"},
		{"zero period", "ACQUISITION_PERIOD=0s\n", "ACQUISITION_PERIOD must be positive"},
		{"bad int", "READS_PER_CYCLE=three\n", "invalid READS_PER_CYCLE"},
		{"zero reads", "READS_PER_CYCLE=0\n", "READS_PER_CYCLE must be at least 1"},
		{"fast polling", "DATA_READY_POLL_INTERVAL=5ms\n", "at least 20ms"},
		{"bad bool", "SENSOR_MOCK=maybe\n", "invalid SENSOR_MOCK"},
		{"bad addr", "SEN5X_I2C_ADDR=0xZZ\n", "invalid SEN5X_I2C_ADDR"},
		{"wide addr", "SEN5X_I2C_ADDR=0x80\n", "7-bit address"},
		{"bad env", "APP_ENV=staging\n", "invalid APP_ENV"},
		{"bad level", "LOG_LEVEL=loud\n", "invalid LOG_LEVEL"},
		{"bad port", "WEB_SERVER_PORT=70000\n", "WEB_SERVER_PORT must be 1-65535"},
		{"mqtt without client id", "MQTT_BROKER=tcp://b:1883\nMQTT_CLIENT_ID_STATION=\n", "MQTT_CLIENT_ID_STATION is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}
