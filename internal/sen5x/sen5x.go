// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package sen5x drives a Sensirion SEN5x particulate/VOC/NOx/RHT sensor
// over its I2C command protocol.
//
// The driver runs the sensor in one-shot fashion: Start puts it into
// measurement mode, the caller polls IsDataReady, reads one or more frames
// with ReadFrame and returns it to idle with Stop.
package sen5x

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/relabs-tech/air_monitor/internal/env"
)

// Dev is a handle to one SEN5x device.
type Dev struct {
	t         Transport
	measuring bool
	product   string
}

// New returns a driver talking through t. It does not touch the device.
func New(t Transport) *Dev {
	return &Dev{t: t}
}

func (d *Dev) String() string {
	if d.product != "" {
		return d.product
	}
	return "SEN5x"
}

// Measuring reports whether the device was last put into measurement mode.
func (d *Dev) Measuring() bool {
	return d.measuring
}

// Init resets the device and reads its product name. A successful Init
// leaves the device idle.
func (d *Dev) Init() error {
	if err := d.Reset(); err != nil {
		return fmt.Errorf("sen5x init: %w", err)
	}
	name, err := d.ProductName()
	if err != nil {
		return fmt.Errorf("sen5x init: %w", err)
	}
	d.product = name
	return nil
}

// Reset issues a soft reset, which also leaves measurement mode.
func (d *Dev) Reset() error {
	if err := d.command(cmdDeviceReset, delayDeviceReset); err != nil {
		return err
	}
	d.measuring = false
	return nil
}

// Start enters measurement mode. Calling it while already measuring is a
// no-op: the device rejects the command in that state.
func (d *Dev) Start() error {
	if d.measuring {
		return nil
	}
	if err := d.command(cmdStartMeasurement, delayStartMeasurement); err != nil {
		return err
	}
	d.measuring = true
	return nil
}

// Stop returns the device to idle. It is a no-op when idle.
func (d *Dev) Stop() error {
	if !d.measuring {
		return nil
	}
	if err := d.command(cmdStopMeasurement, delayStopMeasurement); err != nil {
		return err
	}
	d.measuring = false
	return nil
}

// IsDataReady reads the data-ready flag. False is not an error.
func (d *Dev) IsDataReady() (bool, error) {
	raw, err := d.read(cmdReadDataReady, dataReadySize)
	if err != nil {
		return false, err
	}
	if err := checkWords(cmdReadDataReady, raw); err != nil {
		return false, err
	}
	return raw[1]&0x01 != 0, nil
}

// ReadFrame reads one measured-values frame and checks its CRCs. Reading
// clears the data-ready flag.
func (d *Dev) ReadFrame() (Frame, error) {
	raw, err := d.read(cmdReadMeasuredValues, FrameSize)
	if err != nil {
		return nil, err
	}
	if err := checkWords(cmdReadMeasuredValues, raw); err != nil {
		return nil, err
	}
	return Frame(raw), nil
}

// ReadMeasurement is ReadFrame followed by Decode.
func (d *Dev) ReadMeasurement() (env.Reading, error) {
	f, err := d.ReadFrame()
	if err != nil {
		return env.Reading{}, err
	}
	return Decode(f)
}

// ReadDeviceStatus reads the device status register.
func (d *Dev) ReadDeviceStatus() (DeviceStatus, error) {
	raw, err := d.read(cmdReadDeviceStatus, deviceStatusLen)
	if err != nil {
		return 0, err
	}
	if err := checkWords(cmdReadDeviceStatus, raw); err != nil {
		return 0, err
	}
	return DeviceStatus(binary.BigEndian.Uint32(stripCRC(raw))), nil
}

// ProductName reads the product name, e.g. "SEN55".
func (d *Dev) ProductName() (string, error) {
	return d.readString(cmdReadProductName)
}

// SerialNumber reads the device serial number.
func (d *Dev) SerialNumber() (string, error) {
	return d.readString(cmdReadSerialNumber)
}

func (d *Dev) readString(cmd uint16) (string, error) {
	raw, err := d.read(cmd, stringLen)
	if err != nil {
		return "", err
	}
	if err := checkWords(cmd, raw); err != nil {
		return "", err
	}
	b := stripCRC(raw)
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b), nil
}

// command sends a write-only command and waits for its execution time.
func (d *Dev) command(cmd uint16, delay time.Duration) error {
	var w [2]byte
	binary.BigEndian.PutUint16(w[:], cmd)
	if _, err := d.t.Transact(w[:], delay, nil); err != nil {
		return &BusError{Cmd: cmd, Err: err}
	}
	return nil
}

// read sends cmd and reads an n-byte response.
func (d *Dev) read(cmd uint16, n int) ([]byte, error) {
	var w [2]byte
	binary.BigEndian.PutUint16(w[:], cmd)
	buf := make([]byte, n)
	got, err := d.t.Transact(w[:], delayRead, buf)
	if err != nil {
		return nil, &BusError{Cmd: cmd, Err: err}
	}
	if got < n {
		return nil, &FrameLengthError{Cmd: cmd, Got: got, Want: n}
	}
	return buf, nil
}
