package sensors

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/air_monitor/internal/config"
	"github.com/relabs-tech/air_monitor/internal/sen5x"
)

var (
	hostOnce    sync.Once
	hostInitErr error
)

// initHost loads the periph host drivers once per process.
func initHost() error {
	hostOnce.Do(func() {
		if _, err := host.Init(); err != nil {
			hostInitErr = fmt.Errorf("periph host init: %w", err)
		}
	})
	return hostInitErr
}

// BusCloser is an I2C bus that must be closed when done.
type BusCloser interface {
	i2c.Bus
	io.Closer
}

// OpenBus opens the I2C bus named by cfg.I2CBus, or a simulated SEN5x
// when cfg.SensorMock is set.
func OpenBus(cfg *config.Config, logger *slog.Logger) (BusCloser, error) {
	if cfg.SensorMock {
		logger.Info("using simulated SEN5x", "component", "sensors")
		return sen5x.NewSimulator(), nil
	}
	return openI2C(cfg.I2CBus, logger)
}

func openI2C(name string, logger *slog.Logger) (BusCloser, error) {
	if err := initHost(); err != nil {
		return nil, err
	}
	bus, err := i2creg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("i2c open %q: %w", name, err)
	}
	logger.Info("i2c bus opened", "component", "sensors", "bus", bus.String())
	return bus, nil
}

// OpenSEN5x opens the configured bus and returns an initialized driver.
// The returned bus must be closed by the caller. Init failures are returned
// together with the usable driver so the caller can report them and keep
// retrying acquisition.
func OpenSEN5x(cfg *config.Config, logger *slog.Logger) (*sen5x.Dev, BusCloser, error) {
	bus, err := OpenBus(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	dev := sen5x.New(sen5x.NewI2CTransport(bus, cfg.SEN5XI2CAddr))
	if err := dev.Init(); err != nil {
		return dev, bus, fmt.Errorf("sen5x init: %w", err)
	}
	logger.Info("sen5x initialized", "component", "sensors", "device", dev.String())
	return dev, bus, nil
}

// OpenDisplayBus opens the bus used by the status panel. It is always the
// real I2C bus, even when the sensor is simulated.
func OpenDisplayBus(cfg *config.Config, logger *slog.Logger) (BusCloser, error) {
	return openI2C(cfg.DisplayI2CBus, logger)
}
