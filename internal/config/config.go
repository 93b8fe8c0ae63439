package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment variables that override file values,
// e.g. AIRMON_MQTT_BROKER.
const EnvPrefix = "AIRMON"

// Config holds all application configuration values.
type Config struct {
	AppEnv   string // "dev" or "prod"
	LogLevel slog.Level

	// Sensor hardware
	I2CBus       string // periph bus name, "" for the first bus
	SEN5XI2CAddr uint16
	SensorMock   bool // use the simulated SEN5x instead of the bus

	// Acquisition timing
	AcquisitionPeriod     time.Duration
	SettleDelay           time.Duration
	DataReadyPollInterval time.Duration
	DataReadyMaxPolls     int
	ReadsPerCycle         int
	AcquireOnStart        bool // first cycle at startup instead of one period later

	// Service loop
	LoopInterval time.Duration // how often the loop checks whether a cycle is due
	ErrorBackoff time.Duration // pause after an iteration fails

	// Web Server
	WebServerPort int
	WebStaticDir  string

	// MQTT, disabled when MQTTBroker is empty
	MQTTBroker          string
	MQTTClientIDStation string
	MQTTClientIDConsole string
	TopicReading        string
	TopicStatus         string

	// Display
	DisplayEnabled bool
	DisplayI2CBus  string
}

// Config file keys.
const (
	keyAppEnv                = "APP_ENV"
	keyLogLevel              = "LOG_LEVEL"
	keyI2CBus                = "I2C_BUS"
	keySEN5XI2CAddr          = "SEN5X_I2C_ADDR"
	keySensorMock            = "SENSOR_MOCK"
	keyAcquisitionPeriod     = "ACQUISITION_PERIOD"
	keySettleDelay           = "SETTLE_DELAY"
	keyDataReadyPollInterval = "DATA_READY_POLL_INTERVAL"
	keyDataReadyMaxPolls     = "DATA_READY_MAX_POLLS"
	keyReadsPerCycle         = "READS_PER_CYCLE"
	keyAcquireOnStart        = "ACQUIRE_ON_START"
	keyLoopInterval          = "LOOP_INTERVAL"
	keyErrorBackoff          = "ERROR_BACKOFF"
	keyWebServerPort         = "WEB_SERVER_PORT"
	keyWebStaticDir          = "WEB_STATIC_DIR"
	keyMQTTBroker            = "MQTT_BROKER"
	keyMQTTClientIDStation   = "MQTT_CLIENT_ID_STATION"
	keyMQTTClientIDConsole   = "MQTT_CLIENT_ID_CONSOLE"
	keyTopicReading          = "TOPIC_READING"
	keyTopicStatus           = "TOPIC_STATUS"
	keyDisplayEnabled        = "DISPLAY_ENABLED"
	keyDisplayI2CBus         = "DISPLAY_I2C_BUS"
)

var defaults = map[string]string{
	keyAppEnv:                "dev",
	keyLogLevel:              "info",
	keyI2CBus:                "",
	keySEN5XI2CAddr:          "0x69",
	keySensorMock:            "false",
	keyAcquisitionPeriod:     "300s",
	keySettleDelay:           "3s",
	keyDataReadyPollInterval: "100ms",
	keyDataReadyMaxPolls:     "50",
	keyReadsPerCycle:         "3",
	keyAcquireOnStart:        "false",
	keyLoopInterval:          "1s",
	keyErrorBackoff:          "1s",
	keyWebServerPort:         "8080",
	keyWebStaticDir:          "web",
	keyMQTTBroker:            "",
	keyMQTTClientIDStation:   "air-monitor-station",
	keyMQTTClientIDConsole:   "air-monitor-console",
	keyTopicReading:          "airmon/reading",
	keyTopicStatus:           "airmon/status",
	keyDisplayEnabled:        "false",
	keyDisplayI2CBus:         "",
}

// Package-level singleton, set once by InitGlobal and read through Get.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Load reads the KEY=VALUE configuration file at configPath, applies
// AIRMON_* environment overrides and defaults, and validates the result.
// An empty configPath loads defaults and environment only.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		for _, key := range v.AllKeys() {
			if _, ok := defaults[strings.ToUpper(key)]; !ok {
				return nil, fmt.Errorf("unknown config key: %q", strings.ToUpper(key))
			}
		}
	}

	p := &parser{v: v}
	cfg := &Config{
		AppEnv:                p.str(keyAppEnv),
		LogLevel:              p.logLevel(keyLogLevel),
		I2CBus:                p.str(keyI2CBus),
		SEN5XI2CAddr:          p.addr(keySEN5XI2CAddr),
		SensorMock:            p.boolean(keySensorMock),
		AcquisitionPeriod:     p.duration(keyAcquisitionPeriod),
		SettleDelay:           p.duration(keySettleDelay),
		DataReadyPollInterval: p.duration(keyDataReadyPollInterval),
		DataReadyMaxPolls:     p.integer(keyDataReadyMaxPolls),
		ReadsPerCycle:         p.integer(keyReadsPerCycle),
		AcquireOnStart:        p.boolean(keyAcquireOnStart),
		LoopInterval:          p.duration(keyLoopInterval),
		ErrorBackoff:          p.duration(keyErrorBackoff),
		WebServerPort:         p.integer(keyWebServerPort),
		WebStaticDir:          p.str(keyWebStaticDir),
		MQTTBroker:            p.str(keyMQTTBroker),
		MQTTClientIDStation:   p.str(keyMQTTClientIDStation),
		MQTTClientIDConsole:   p.str(keyMQTTClientIDConsole),
		TopicReading:          p.str(keyTopicReading),
		TopicStatus:           p.str(keyTopicStatus),
		DisplayEnabled:        p.boolean(keyDisplayEnabled),
		DisplayI2CBus:         p.str(keyDisplayI2CBus),
	}
	if p.err != nil {
		return nil, p.err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks value ranges and cross-field requirements.
func (c *Config) validate() error {
	switch c.AppEnv {
	case "dev", "prod":
	default:
		return fmt.Errorf("invalid %s %q (allowed: dev, prod)", keyAppEnv, c.AppEnv)
	}
	if c.SEN5XI2CAddr > 0x7F {
		return fmt.Errorf("%s must be a 7-bit address, got 0x%X", keySEN5XI2CAddr, c.SEN5XI2CAddr)
	}
	if c.AcquisitionPeriod <= 0 {
		return fmt.Errorf("%s must be positive, got %v", keyAcquisitionPeriod, c.AcquisitionPeriod)
	}
	if c.SettleDelay < 0 {
		return fmt.Errorf("%s must not be negative, got %v", keySettleDelay, c.SettleDelay)
	}
	if c.DataReadyPollInterval < 20*time.Millisecond {
		return fmt.Errorf("%s must be at least 20ms, got %v", keyDataReadyPollInterval, c.DataReadyPollInterval)
	}
	if c.DataReadyMaxPolls < 1 {
		return fmt.Errorf("%s must be at least 1, got %d", keyDataReadyMaxPolls, c.DataReadyMaxPolls)
	}
	if c.ReadsPerCycle < 1 {
		return fmt.Errorf("%s must be at least 1, got %d", keyReadsPerCycle, c.ReadsPerCycle)
	}
	if c.LoopInterval <= 0 {
		return fmt.Errorf("%s must be positive, got %v", keyLoopInterval, c.LoopInterval)
	}
	if c.ErrorBackoff < 0 {
		return fmt.Errorf("%s must not be negative, got %v", keyErrorBackoff, c.ErrorBackoff)
	}
	if c.WebServerPort < 1 || c.WebServerPort > 65535 {
		return fmt.Errorf("%s must be 1-65535, got %d", keyWebServerPort, c.WebServerPort)
	}
	if c.MQTTBroker != "" {
		if c.MQTTClientIDStation == "" {
			return errors.New(keyMQTTClientIDStation + " is required when MQTT_BROKER is set")
		}
		if c.TopicReading == "" {
			return errors.New(keyTopicReading + " is required when MQTT_BROKER is set")
		}
	}
	return nil
}

// parser converts raw values, keeping the first error.
type parser struct {
	v   *viper.Viper
	err error
}

func (p *parser) fail(key, value string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
}

func (p *parser) str(key string) string {
	return strings.TrimSpace(p.v.GetString(key))
}

func (p *parser) integer(key string) int {
	s := p.str(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		p.fail(key, s, err)
	}
	return n
}

func (p *parser) boolean(key string) bool {
	s := p.str(key)
	b, err := strconv.ParseBool(s)
	if err != nil {
		p.fail(key, s, err)
	}
	return b
}

func (p *parser) duration(key string) time.Duration {
	s := p.str(key)
	d, err := time.ParseDuration(s)
	if err != nil {
		p.fail(key, s, err)
	}
	return d
}

func (p *parser) addr(key string) uint16 {
	s := p.str(key)
	a, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		p.fail(key, s, err)
	}
	return uint16(a)
}

func (p *parser) logLevel(key string) slog.Level {
	s := p.str(key)
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		p.fail(key, s, errors.New("allowed: debug, info, warn, error"))
		return slog.LevelInfo
	}
}

// InitGlobal loads the configuration once and stores it for Get.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration, or nil before InitGlobal.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
