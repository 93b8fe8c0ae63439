package app

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/relabs-tech/air_monitor/internal/acquisition"
	"github.com/relabs-tech/air_monitor/internal/config"
	"github.com/relabs-tech/air_monitor/internal/sensors"
	"github.com/relabs-tech/air_monitor/internal/telemetry"
)

// RunProbe initializes the sensor, runs a single acquisition cycle and
// prints the outcome to out.
func RunProbe(cfg *config.Config, out io.Writer, logger *slog.Logger) error {
	dev, bus, err := sensors.OpenSEN5x(cfg, logger)
	if dev == nil {
		return err
	}
	defer bus.Close()
	fmt.Fprintln(out, acquisition.InitStatus(err))
	if err != nil {
		return err
	}

	serial, err := dev.SerialNumber()
	if err != nil {
		return fmt.Errorf("read serial number: %w", err)
	}
	fmt.Fprintf(out, "Device: %s  serial %s\n", dev, serial)

	store := telemetry.NewStore()
	opts := SchedulerOptions(cfg)
	opts.AcquireOnStart = true
	sched := acquisition.New(dev, store, acquisition.SystemClock(), opts, logger)
	var last acquisition.Result
	sched.OnResult(func(res acquisition.Result) { last = res })
	if _, err := sched.Tick(); err != nil {
		return fmt.Errorf("acquisition (%s): %w", acquisition.ErrorKind(err), err)
	}

	fmt.Fprintln(out, sched.Status())
	fmt.Fprintf(out, "PM1.0: %.1f µg/m³\nPM4.0: %.1f µg/m³\n", last.Reading.PM1, last.Reading.PM4)
	fmt.Fprintf(out, "Device status: %s\n", last.Device)
	fmt.Fprintf(out, "Cycle took %s\n", last.Duration.Round(time.Millisecond))
	return nil
}
