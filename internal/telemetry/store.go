// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package telemetry keeps the latest reading and a short, volatile history
// of past readings.
package telemetry

import (
	"sync"

	"github.com/relabs-tech/air_monitor/internal/env"
)

// HistorySize is the number of readings retained: one hour at the default
// five minute acquisition period.
const HistorySize = 12

// Current holds the most recently recorded values.
type Current struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	PM25        float64 `json:"pm25"`
	PM10        float64 `json:"pm10"`
	VOC         float64 `json:"voc"`
	NOx         float64 `json:"nox"`
}

// History holds index-aligned channels, oldest first.
type History struct {
	Timestamps  []float64 `json:"timestamps"`
	Temperature []float64 `json:"temperature"`
	Humidity    []float64 `json:"humidity"`
	PM25        []float64 `json:"pm25"`
	PM10        []float64 `json:"pm10"`
	VOC         []float64 `json:"voc"`
	NOx         []float64 `json:"nox"`
}

// Snapshot is a copy of the store state. It shares no memory with the store.
type Snapshot struct {
	Current Current `json:"current"`
	History History `json:"history"`
}

// Store owns the current reading and its history.
//
// Record is called only by the acquisition loop; Snapshot may be called from
// any goroutine.
type Store struct {
	mu       sync.RWMutex
	current  Current
	recorded uint64

	timestamps  *Ring[float64]
	temperature *Ring[float64]
	humidity    *Ring[float64]
	pm25        *Ring[float64]
	pm10        *Ring[float64]
	voc         *Ring[float64]
	nox         *Ring[float64]
}

// NewStore returns an empty store. Current values are zero until the first
// Record.
func NewStore() *Store {
	return &Store{
		timestamps:  NewRing[float64](HistorySize),
		temperature: NewRing[float64](HistorySize),
		humidity:    NewRing[float64](HistorySize),
		pm25:        NewRing[float64](HistorySize),
		pm10:        NewRing[float64](HistorySize),
		voc:         NewRing[float64](HistorySize),
		nox:         NewRing[float64](HistorySize),
	}
}

// Record makes r the current reading and appends it to every channel.
func (s *Store) Record(r env.Reading) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = Current{
		Temperature: r.Temperature,
		Humidity:    r.Humidity,
		PM25:        r.PM25,
		PM10:        r.PM10,
		VOC:         r.VOC,
		NOx:         r.NOx,
	}
	s.timestamps.Push(r.Timestamp)
	s.temperature.Push(r.Temperature)
	s.humidity.Push(r.Humidity)
	s.pm25.Push(r.PM25)
	s.pm10.Push(r.PM10)
	s.voc.Push(r.VOC)
	s.nox.Push(r.NOx)
	s.recorded++
}

// Snapshot returns a copy of the current values and the retained history.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Snapshot{
		Current: s.current,
		History: History{
			Timestamps:  s.timestamps.Values(),
			Temperature: s.temperature.Values(),
			Humidity:    s.humidity.Values(),
			PM25:        s.pm25.Values(),
			PM10:        s.pm10.Values(),
			VOC:         s.voc.Values(),
			NOx:         s.nox.Values(),
		},
	}
}

// Current returns the most recently recorded values.
func (s *Store) Current() Current {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Len returns the number of readings in the history.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.timestamps.Len()
}

// Recorded returns the number of Record calls since the store was created.
func (s *Store) Recorded() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.recorded
}
