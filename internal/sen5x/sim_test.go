package sen5x

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulatorCycle(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	sim := newSimulator(func() time.Time { return now })
	tr := NewI2CTransport(sim, DefaultAddr)
	tr.sleep = func(time.Duration) {}
	dev := New(tr)

	require.NoError(t, dev.Init())
	assert.Equal(t, "SEN55", dev.String())

	serial, err := dev.SerialNumber()
	require.NoError(t, err)
	assert.Equal(t, "SIM0000000000001", serial)

	require.NoError(t, dev.Start())
	ready, err := dev.IsDataReady()
	require.NoError(t, err)
	assert.False(t, ready)

	now = now.Add(3 * time.Second)
	ready, err = dev.IsDataReady()
	require.NoError(t, err)
	assert.True(t, ready)

	r, err := dev.ReadMeasurement()
	require.NoError(t, err)
	assert.InDelta(t, 21.0, r.Temperature, 2.01)
	assert.InDelta(t, 45.0, r.Humidity, 5.01)
	assert.Greater(t, r.PM10, r.PM25)

	// Reading clears the flag until the next measurement interval.
	ready, err = dev.IsDataReady()
	require.NoError(t, err)
	assert.False(t, ready)

	sim.SetStatus(StatusLaserFailure)
	st, err := dev.ReadDeviceStatus()
	require.NoError(t, err)
	assert.Equal(t, StatusLaserFailure, st)

	require.NoError(t, dev.Stop())
	_, err = dev.ReadFrame()
	var busErr *BusError
	assert.ErrorAs(t, err, &busErr)
}

func TestSimulatorWrongAddress(t *testing.T) {
	sim := NewSimulator()
	assert.Error(t, sim.Tx(0x3C, []byte{0x00, 0x21}, nil))
}
