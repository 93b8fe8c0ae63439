// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sen5x

import "time"

// DefaultAddr is the fixed 7-bit I2C address of every SEN5x variant.
const DefaultAddr uint16 = 0x69

// Command codes, sent as a big-endian 16-bit word.
const (
	cmdStartMeasurement   uint16 = 0x0021
	cmdStopMeasurement    uint16 = 0x0104
	cmdReadDataReady      uint16 = 0x0202
	cmdReadMeasuredValues uint16 = 0x03C4
	cmdReadProductName    uint16 = 0xD014
	cmdReadSerialNumber   uint16 = 0xD033
	cmdReadDeviceStatus   uint16 = 0xD206
	cmdDeviceReset        uint16 = 0xD304
)

// Execution times from the datasheet: how long the device needs after a
// command before it accepts the next transfer.
const (
	delayStartMeasurement = 50 * time.Millisecond
	delayStopMeasurement  = 200 * time.Millisecond
	delayRead             = 20 * time.Millisecond
	delayDeviceReset      = 100 * time.Millisecond
)

// Response sizes in bytes, CRC bytes included.
const (
	dataReadySize   = 3
	deviceStatusLen = 6
	stringLen       = 48
)

// FrameSize is the size of the measured-values response: 8 words, each
// followed by its CRC.
const FrameSize = 24
