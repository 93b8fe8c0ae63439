package sen5x

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/relabs-tech/air_monitor/internal/env"
	"periph.io/x/conn/v3/physic"
)

// measurementInterval is how often the device produces a new frame.
const measurementInterval = time.Second

var errNACK = errors.New("sen5x-sim: NACK")

// Simulator is an i2c.Bus with a SEN5x-like device behind DefaultAddr. It
// generates smoothly changing values so the whole acquisition path can run
// without hardware.
type Simulator struct {
	mu sync.Mutex

	now   func() time.Time
	start time.Time

	measuring bool
	started   time.Time
	lastRead  time.Time
	pending   []byte
	status    DeviceStatus
}

// NewSimulator returns a simulated bus driven by the wall clock.
func NewSimulator() *Simulator {
	return newSimulator(time.Now)
}

func newSimulator(now func() time.Time) *Simulator {
	return &Simulator{now: now, start: now()}
}

func (s *Simulator) String() string { return "sen5x-sim" }

// SetSpeed implements i2c.Bus.
func (s *Simulator) SetSpeed(physic.Frequency) error { return nil }

// Close implements io.Closer.
func (s *Simulator) Close() error { return nil }

// SetStatus sets the value returned by the device status register.
func (s *Simulator) SetStatus(st DeviceStatus) {
	s.mu.Lock()
	s.status = st
	s.mu.Unlock()
}

// Tx implements i2c.Bus.
func (s *Simulator) Tx(addr uint16, w, r []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if addr != DefaultAddr {
		return fmt.Errorf("sen5x-sim: no device at 0x%02X", addr)
	}
	if len(w) == 2 {
		if err := s.handle(binary.BigEndian.Uint16(w)); err != nil {
			return err
		}
	} else if len(w) != 0 {
		return fmt.Errorf("sen5x-sim: unsupported write of %d bytes", len(w))
	}
	if len(r) == 0 {
		return nil
	}
	if s.pending == nil {
		return errNACK
	}
	if len(r) != len(s.pending) {
		return fmt.Errorf("sen5x-sim: read of %d bytes, response has %d", len(r), len(s.pending))
	}
	copy(r, s.pending)
	s.pending = nil
	return nil
}

func (s *Simulator) handle(cmd uint16) error {
	now := s.now()
	s.pending = nil
	switch cmd {
	case cmdDeviceReset:
		s.measuring = false
	case cmdStartMeasurement:
		if s.measuring {
			return errNACK
		}
		s.measuring = true
		s.started = now
		s.lastRead = now
	case cmdStopMeasurement:
		if !s.measuring {
			return errNACK
		}
		s.measuring = false
	case cmdReadDataReady:
		var ready uint16
		if s.measuring && now.Sub(s.lastRead) >= measurementInterval {
			ready = 1
		}
		s.pending = encodeWords([]uint16{ready})
	case cmdReadMeasuredValues:
		if !s.measuring {
			return errNACK
		}
		s.lastRead = now
		s.pending = Encode(s.sample(now))
	case cmdReadDeviceStatus:
		s.pending = encodeWords([]uint16{uint16(s.status >> 16), uint16(s.status)})
	case cmdReadProductName:
		s.pending = encodeString("SEN55")
	case cmdReadSerialNumber:
		s.pending = encodeString("SIM0000000000001")
	default:
		return errNACK
	}
	return nil
}

func (s *Simulator) sample(now time.Time) env.Reading {
	elapsed := now.Sub(s.start).Seconds()
	return env.Reading{
		Temperature: 21 + 2*math.Sin(elapsed/600),
		Humidity:    45 + 5*math.Cos(elapsed/900),
		PM1:         3 + math.Abs(2*math.Sin(elapsed/300)),
		PM25:        5 + math.Abs(4*math.Sin(elapsed/300)),
		PM4:         6 + math.Abs(5*math.Sin(elapsed/300)),
		PM10:        7 + math.Abs(6*math.Sin(elapsed/300)),
		VOC:         100 + 30*math.Sin(elapsed/1200),
		NOx:         1 + math.Abs(math.Sin(elapsed/1800)),
	}
}

// encodeString lays out s as a zero-padded 32-byte string response.
func encodeString(s string) []byte {
	var b [stringLen / 3 * 2]byte
	copy(b[:], s)
	words := make([]uint16, len(b)/2)
	for i := range words {
		words[i] = binary.BigEndian.Uint16(b[2*i:])
	}
	return encodeWords(words)
}
