// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/relabs-tech/air_monitor/internal/acquisition"
	"github.com/relabs-tech/air_monitor/internal/config"
	"github.com/relabs-tech/air_monitor/internal/sensors"
	"github.com/relabs-tech/air_monitor/internal/telemetry"
)

// SchedulerOptions maps configuration onto acquisition options.
func SchedulerOptions(cfg *config.Config) acquisition.Options {
	return acquisition.Options{
		Period:         cfg.AcquisitionPeriod,
		SettleDelay:    cfg.SettleDelay,
		PollInterval:   cfg.DataReadyPollInterval,
		MaxPolls:       cfg.DataReadyMaxPolls,
		ReadsPerCycle:  cfg.ReadsPerCycle,
		AcquireOnStart: cfg.AcquireOnStart,
	}
}

// RunStation runs the air monitor until ctx is cancelled: it acquires
// readings on schedule and serves them over HTTP, and optionally over MQTT
// and on the status panel.
func RunStation(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting air monitor station")

	dev, bus, initErr := sensors.OpenSEN5x(cfg, logger)
	if dev == nil {
		return initErr
	}
	defer bus.Close()

	status := acquisition.InitStatus(initErr)
	if initErr != nil {
		// Acquisition keeps retrying; a later cycle may succeed.
		logger.Error("sensor init failed", "error", initErr)
	}

	store := telemetry.NewStore()
	sched := acquisition.New(dev, store, acquisition.SystemClock(), SchedulerOptions(cfg), logger)
	sched.SetStatus(status)
	board := NewStatusBoard(status)

	opts := sched.Options()
	logger.Info("acquisition scheduled",
		"period", opts.Period,
		"settle", opts.SettleDelay,
		"reads_per_cycle", opts.ReadsPerCycle,
		"acquire_on_start", opts.AcquireOnStart,
	)

	metrics := NewMetricsCollector()
	registry := prometheus.NewRegistry()
	registry.MustRegister(metrics, collectors.NewGoCollector())

	hub := NewLiveHub(func() any { return store.Snapshot() }, logger)
	defer hub.Close()

	sched.OnResult(func(res acquisition.Result) {
		board.Observe(sched.Status(), res)
	})
	sched.OnResult(metrics.Observe)
	sched.OnResult(func(res acquisition.Result) {
		if res.Err == nil {
			hub.Broadcast(store.Snapshot())
		}
	})

	if cfg.MQTTBroker != "" {
		pub, err := ConnectPublisher(cfg, board.Text, logger)
		if err != nil {
			return err
		}
		defer pub.Close()
		sched.OnResult(pub.Observe)
	}

	if cfg.DisplayEnabled {
		panel, closePanel, err := openPanel(cfg, logger)
		if err != nil {
			logger.Error("display unavailable", "error", err)
		} else {
			defer closePanel()
			panel.Show(status)
			sched.OnResult(func(res acquisition.Result) {
				if res.Err == nil {
					panel.ShowCurrent(store.Current())
				}
			})
		}
	}

	loopCtx, cancelLoop := context.WithCancel(ctx)
	defer cancelLoop()

	webCtx, stopWeb := context.WithCancel(context.Background())
	webDone := make(chan error, 1)
	go func() {
		err := ServeWeb(webCtx, ":"+strconv.Itoa(cfg.WebServerPort), NewWebMux(WebDeps{
			Store:     store,
			Board:     board,
			Hub:       hub,
			Registry:  registry,
			StaticDir: cfg.WebStaticDir,
			Logger:    logger,
		}), logger)
		if err != nil {
			cancelLoop()
		}
		webDone <- err
	}()

	loop := &Loop{
		Tick:     sched.Tick,
		Interval: cfg.LoopInterval,
		Backoff:  cfg.ErrorBackoff,
		Log:      logger,
	}
	loop.Run(loopCtx)

	stopWeb()
	if err := <-webDone; err != nil {
		return fmt.Errorf("web server: %w", err)
	}
	logger.Info("station stopped", "recorded", store.Recorded())
	return nil
}

func openPanel(cfg *config.Config, logger *slog.Logger) (*Panel, func(), error) {
	bus, err := sensors.OpenDisplayBus(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	panel, err := OpenPanel(bus, logger)
	if err != nil {
		bus.Close()
		return nil, nil, fmt.Errorf("display init: %w", err)
	}
	return panel, func() {
		panel.Halt()
		bus.Close()
	}, nil
}

// Loop drives a scheduler tick function forever. An iteration that fails or
// panics is logged and followed by Backoff; the loop itself never exits on
// a cycle failure.
type Loop struct {
	Tick     func() (bool, error)
	Interval time.Duration
	Backoff  time.Duration
	Log      *slog.Logger
}

// Run iterates until ctx is cancelled. Cancellation is observed between
// iterations only, so a cycle in progress always completes.
func (l *Loop) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		wait := l.Interval
		if err := l.iterate(); err != nil {
			l.Log.Warn("loop iteration failed", "component", "loop", "error", err)
			wait = l.Backoff
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (l *Loop) iterate() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	_, err = l.Tick()
	return err
}
