package main

import (
	"log"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/relabs-tech/air_monitor/internal/app"
	"github.com/relabs-tech/air_monitor/internal/config"
	"github.com/relabs-tech/air_monitor/internal/logging"
)

func main() {
	configPath := flag.StringP("config", "c", "./air_monitor_config.txt", "path to configuration file")
	mock := flag.Bool("mock", false, "use the simulated SEN5x instead of the I2C bus")
	reads := flag.Int("reads", 0, "frames per cycle (0 keeps the configured value)")
	flag.Parse()

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Get()
	if *mock {
		cfg.SensorMock = true
	}
	if *reads > 0 {
		cfg.ReadsPerCycle = *reads
	}

	logger := logging.New(cfg, "air-monitor-probe")
	if err := app.RunProbe(cfg, os.Stdout, logger); err != nil {
		logger.Error("probe failed", "error", err)
		os.Exit(1)
	}
}
