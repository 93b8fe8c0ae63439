// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package acquisition decides when to sample the sensor and runs one
// measurement cycle at a time.
package acquisition

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/relabs-tech/air_monitor/internal/env"
	"github.com/relabs-tech/air_monitor/internal/sen5x"
)

// Sensor is the part of the SEN5x driver a cycle needs.
type Sensor interface {
	Start() error
	IsDataReady() (bool, error)
	ReadFrame() (sen5x.Frame, error)
	ReadDeviceStatus() (sen5x.DeviceStatus, error)
	Stop() error
}

// Recorder receives every successfully acquired reading.
type Recorder interface {
	Record(r env.Reading)
}

// MinPollInterval is the shortest allowed wait between data-ready polls.
const MinPollInterval = 20 * time.Millisecond

// Options tune the acquisition cycle. Zero fields other than SettleDelay
// take their defaults.
type Options struct {
	Period        time.Duration // time between successful acquisitions
	SettleDelay   time.Duration // wait after starting measurement
	PollInterval  time.Duration // wait between data-ready polls
	MaxPolls      int           // data-ready polls per frame before giving up
	ReadsPerCycle int           // frames read per cycle; the last one is kept

	// AcquireOnStart makes the first check due immediately. Otherwise the
	// first cycle runs one Period after the scheduler was created.
	AcquireOnStart bool
}

// DefaultOptions match the station's stock timing.
var DefaultOptions = Options{
	Period:        300 * time.Second,
	SettleDelay:   3 * time.Second,
	PollInterval:  100 * time.Millisecond,
	MaxPolls:      50,
	ReadsPerCycle: 3,
}

func (o Options) withDefaults() Options {
	if o.Period <= 0 {
		o.Period = DefaultOptions.Period
	}
	if o.SettleDelay < 0 {
		o.SettleDelay = 0
	}
	if o.PollInterval == 0 {
		o.PollInterval = DefaultOptions.PollInterval
	}
	if o.PollInterval < MinPollInterval {
		o.PollInterval = MinPollInterval
	}
	if o.MaxPolls <= 0 {
		o.MaxPolls = DefaultOptions.MaxPolls
	}
	if o.ReadsPerCycle <= 0 {
		o.ReadsPerCycle = 1
	}
	return o
}

// Result describes one attempted cycle.
type Result struct {
	Started  time.Time
	Duration time.Duration
	Reading  env.Reading
	Device   sen5x.DeviceStatus
	Err      error
}

// Listener is called after every attempted cycle.
type Listener func(Result)

// Scheduler runs acquisition cycles on a fixed period. It is not safe for
// concurrent use; one loop owns it.
type Scheduler struct {
	sensor Sensor
	store  Recorder
	clock  Clock
	opts   Options
	log    *slog.Logger

	succeeded   bool
	lastSuccess time.Duration
	lastStamp   float64
	status      string
	listeners   []Listener
}

// New returns a scheduler that records into store. A nil logger uses
// slog.Default().
func New(sensor Sensor, store Recorder, clock Clock, opts Options, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		sensor:      sensor,
		store:       store,
		clock:       clock,
		opts:        opts.withDefaults(),
		log:         logger.With("component", "scheduler"),
		status:      StatusStarting,
		lastSuccess: clock.Since(),
	}
}

// Options returns the effective options.
func (s *Scheduler) Options() Options { return s.opts }

// OnResult registers l to be called after every attempted cycle.
func (s *Scheduler) OnResult(l Listener) {
	s.listeners = append(s.listeners, l)
}

// Status returns the current status text: an init line until the first
// successful cycle, the formatted readings afterwards.
func (s *Scheduler) Status() string { return s.status }

// SetStatus replaces the status text.
func (s *Scheduler) SetStatus(text string) { s.status = text }

// Due reports whether a cycle should be attempted now: one Period after the
// last success, counting from creation before the first one.
func (s *Scheduler) Due() bool {
	return s.due(s.clock.Since())
}

func (s *Scheduler) due(now time.Duration) bool {
	if !s.succeeded && s.opts.AcquireOnStart {
		return true
	}
	return now-s.lastSuccess >= s.opts.Period
}

// Tick runs one cycle if one is due. It reports whether a cycle was
// attempted. A failed cycle leaves the store untouched and does not move
// the schedule, so the next Tick retries.
func (s *Scheduler) Tick() (bool, error) {
	now := s.clock.Since()
	if !s.due(now) {
		return false, nil
	}

	started := s.clock.Now()
	r, dev, err := s.Acquire()
	res := Result{
		Started:  started,
		Duration: s.clock.Since() - now,
		Device:   dev,
		Err:      err,
	}
	if err != nil {
		s.log.Error("acquisition failed", "kind", ErrorKind(err), "error", err)
		s.notify(res)
		return true, err
	}

	r.Timestamp = s.stamp(started)
	s.store.Record(r)
	s.succeeded = true
	s.lastSuccess = now
	s.status = ReadingsText(r)

	res.Reading = r
	s.log.Info("reading recorded",
		"temperature", r.Temperature,
		"humidity", r.Humidity,
		"pm25", r.PM25,
		"pm10", r.PM10,
		"voc", r.VOC,
		"nox", r.NOx,
		"took", res.Duration,
	)
	s.notify(res)
	return true, nil
}

// Acquire runs one full measurement cycle without touching the schedule or
// the store. The returned reading has no timestamp.
func (s *Scheduler) Acquire() (env.Reading, sen5x.DeviceStatus, error) {
	var dev sen5x.DeviceStatus

	if err := s.sensor.Start(); err != nil {
		return env.Reading{}, dev, fmt.Errorf("start measurement: %w", err)
	}
	// Stop is best effort; a failure is logged and never fails the cycle.
	defer func() {
		if err := s.sensor.Stop(); err != nil {
			s.log.Warn("stop measurement failed", "error", err)
		}
	}()

	s.clock.Sleep(s.opts.SettleDelay)

	var frame sen5x.Frame
	for i := 0; i < s.opts.ReadsPerCycle; i++ {
		if err := s.waitDataReady(); err != nil {
			return env.Reading{}, dev, err
		}
		f, err := s.sensor.ReadFrame()
		if err != nil {
			return env.Reading{}, dev, fmt.Errorf("read measured values: %w", err)
		}
		frame = f

		st, err := s.sensor.ReadDeviceStatus()
		switch {
		case err != nil:
			s.log.Warn("read device status failed", "error", err)
		case st.HasError():
			s.log.Warn("device reports errors", "status", st.String())
		default:
			s.log.Debug("device status", "status", st.String())
		}
		if err == nil {
			dev = st
		}
	}

	r, err := sen5x.Decode(frame)
	if err != nil {
		return env.Reading{}, dev, err
	}
	if na := sen5x.Unavailable(frame); len(na) > 0 {
		s.log.Info("values not available yet, recorded as 0", "fields", na)
	}
	return r, dev, nil
}

func (s *Scheduler) waitDataReady() error {
	for i := 0; i < s.opts.MaxPolls; i++ {
		ready, err := s.sensor.IsDataReady()
		if err != nil {
			return fmt.Errorf("read data-ready flag: %w", err)
		}
		if ready {
			return nil
		}
		s.clock.Sleep(s.opts.PollInterval)
	}
	return fmt.Errorf("%w (%d polls every %s)", ErrDataNotReadyTimeout, s.opts.MaxPolls, s.opts.PollInterval)
}

// stamp converts t to epoch seconds, never going below the previous stamp.
func (s *Scheduler) stamp(t time.Time) float64 {
	ts := float64(t.UnixNano()) / 1e9
	if ts < s.lastStamp {
		ts = s.lastStamp
	}
	s.lastStamp = ts
	return ts
}

func (s *Scheduler) notify(res Result) {
	for _, l := range s.listeners {
		l(res)
	}
}
