package sen5x

import (
	"fmt"
	"strings"
)

// DeviceStatus is the 32-bit device status register.
type DeviceStatus uint32

// Status register bits.
const (
	StatusFanSpeedWarning DeviceStatus = 1 << 21
	StatusFanCleaning     DeviceStatus = 1 << 19
	StatusGasSensorError  DeviceStatus = 1 << 7
	StatusRHTError        DeviceStatus = 1 << 6
	StatusLaserFailure    DeviceStatus = 1 << 5
	StatusFanFailure      DeviceStatus = 1 << 4
)

var statusNames = []struct {
	bit  DeviceStatus
	name string
}{
	{StatusFanSpeedWarning, "fan speed out of range"},
	{StatusFanCleaning, "fan cleaning active"},
	{StatusGasSensorError, "gas sensor error"},
	{StatusRHTError, "RHT communication error"},
	{StatusLaserFailure, "laser failure"},
	{StatusFanFailure, "fan failure"},
}

// HasError reports whether any error bit (as opposed to a warning or
// informational bit) is set.
func (s DeviceStatus) HasError() bool {
	return s&(StatusGasSensorError|StatusRHTError|StatusLaserFailure|StatusFanFailure) != 0
}

// Flags returns a description of every known bit that is set.
func (s DeviceStatus) Flags() []string {
	var out []string
	for _, n := range statusNames {
		if s&n.bit != 0 {
			out = append(out, n.name)
		}
	}
	return out
}

func (s DeviceStatus) String() string {
	flags := s.Flags()
	if len(flags) == 0 {
		return fmt.Sprintf("0x%08X (ok)", uint32(s))
	}
	return fmt.Sprintf("0x%08X (%s)", uint32(s), strings.Join(flags, ", "))
}
