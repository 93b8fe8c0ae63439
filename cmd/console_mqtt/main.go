package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"github.com/relabs-tech/air_monitor/internal/app"
	"github.com/relabs-tech/air_monitor/internal/config"
	"github.com/relabs-tech/air_monitor/internal/logging"
)

func main() {
	configPath := flag.StringP("config", "c", "./air_monitor_config.txt", "path to configuration file")
	flag.Parse()

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Get()
	logger := logging.New(cfg, "air-monitor-console")

	// Wait for Ctrl+C
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunConsoleMQTT(ctx, cfg, os.Stdout, logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}
