package sen5x

import (
	"encoding/binary"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

func cmdBytes(cmd uint16) []byte {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], cmd)
	return b[:]
}

// exchange is the pair of bus operations a read command produces.
func exchange(cmd uint16, resp []byte) []i2ctest.IO {
	return []i2ctest.IO{
		{Addr: DefaultAddr, W: cmdBytes(cmd)},
		{Addr: DefaultAddr, R: resp},
	}
}

func newPlaybackDev(ops ...[]i2ctest.IO) (*Dev, *i2ctest.Playback) {
	pb := &i2ctest.Playback{DontPanic: true}
	for _, o := range ops {
		pb.Ops = append(pb.Ops, o...)
	}
	tr := NewI2CTransport(pb, DefaultAddr)
	tr.sleep = func(time.Duration) {}
	return New(tr), pb
}

type fakeTransport struct {
	short int
	err   error
	calls int
}

func (f *fakeTransport) Transact(w []byte, _ time.Duration, r []byte) (int, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	if f.short > 0 && len(r) > f.short {
		return f.short, nil
	}
	return len(r), nil
}

func TestCRC8(t *testing.T) {
	assert.Equal(t, byte(0x92), crc8([]byte{0xBE, 0xEF}))
	assert.Equal(t, byte(0x81), crc8([]byte{0x00, 0x00}))
	assert.Equal(t, byte(0xB0), crc8([]byte{0x00, 0x01}))
}

func TestStartStop(t *testing.T) {
	dev, pb := newPlaybackDev(
		[]i2ctest.IO{{Addr: DefaultAddr, W: cmdBytes(cmdStartMeasurement)}},
		[]i2ctest.IO{{Addr: DefaultAddr, W: cmdBytes(cmdStopMeasurement)}},
	)

	require.NoError(t, dev.Start())
	assert.True(t, dev.Measuring())
	// Already measuring: no bus traffic.
	require.NoError(t, dev.Start())

	require.NoError(t, dev.Stop())
	assert.False(t, dev.Measuring())
	// Already idle: no bus traffic.
	require.NoError(t, dev.Stop())

	assert.NoError(t, pb.Close())
}

func TestStartBusError(t *testing.T) {
	dev := New(&fakeTransport{err: errors.New("nack")})

	err := dev.Start()
	var busErr *BusError
	require.ErrorAs(t, err, &busErr)
	assert.Equal(t, cmdStartMeasurement, busErr.Cmd)
	assert.False(t, dev.Measuring())
}

func TestIsDataReady(t *testing.T) {
	dev, pb := newPlaybackDev(
		exchange(cmdReadDataReady, []byte{0x00, 0x00, 0x81}),
		exchange(cmdReadDataReady, []byte{0x00, 0x01, 0xB0}),
	)

	ready, err := dev.IsDataReady()
	require.NoError(t, err)
	assert.False(t, ready)

	ready, err = dev.IsDataReady()
	require.NoError(t, err)
	assert.True(t, ready)

	assert.NoError(t, pb.Close())
}

func TestIsDataReadyCRCError(t *testing.T) {
	dev, _ := newPlaybackDev(exchange(cmdReadDataReady, []byte{0x00, 0x01, 0x00}))

	_, err := dev.IsDataReady()
	var crcErr *CRCError
	require.ErrorAs(t, err, &crcErr)
	assert.Equal(t, byte(0xB0), crcErr.Want)
}

func TestIsDataReadyBusError(t *testing.T) {
	// No recorded operations: the playback bus fails the transfer.
	dev, _ := newPlaybackDev()

	_, err := dev.IsDataReady()
	var busErr *BusError
	assert.ErrorAs(t, err, &busErr)
}

func TestReadFrame(t *testing.T) {
	frame := encodeWords([]uint16{12, 250, 300, 400, 4550, 5000, 1000, 15})
	dev, pb := newPlaybackDev(exchange(cmdReadMeasuredValues, frame))

	f, err := dev.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, Frame(frame), f)

	r, err := Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 25.0, r.PM25)
	assert.Equal(t, 40.0, r.PM10)
	assert.Equal(t, 45.5, r.Humidity)
	assert.Equal(t, 25.0, r.Temperature)
	assert.Equal(t, 100.0, r.VOC)
	assert.Equal(t, 1.5, r.NOx)

	assert.NoError(t, pb.Close())
}

func TestReadFrameShort(t *testing.T) {
	dev := New(&fakeTransport{short: 12})

	_, err := dev.ReadFrame()
	var lenErr *FrameLengthError
	require.ErrorAs(t, err, &lenErr)
	assert.Equal(t, 12, lenErr.Got)
	assert.Equal(t, FrameSize, lenErr.Want)
}

func TestReadFrameCRCError(t *testing.T) {
	frame := encodeWords([]uint16{0, 0, 0, 0, 0, 0, 0, 0})
	frame[10] ^= 0xFF
	dev, _ := newPlaybackDev(exchange(cmdReadMeasuredValues, frame))

	_, err := dev.ReadFrame()
	var crcErr *CRCError
	require.ErrorAs(t, err, &crcErr)
	assert.Equal(t, 3, crcErr.Word)
}

func TestReadDeviceStatus(t *testing.T) {
	resp := encodeWords([]uint16{0x0020, 0x0010})
	dev, pb := newPlaybackDev(exchange(cmdReadDeviceStatus, resp))

	st, err := dev.ReadDeviceStatus()
	require.NoError(t, err)
	assert.Equal(t, StatusFanSpeedWarning|StatusFanFailure, st)
	assert.True(t, st.HasError())

	assert.NoError(t, pb.Close())
}

func TestInit(t *testing.T) {
	dev, pb := newPlaybackDev(
		[]i2ctest.IO{{Addr: DefaultAddr, W: cmdBytes(cmdDeviceReset)}},
		exchange(cmdReadProductName, encodeString("SEN55")),
	)

	require.NoError(t, dev.Init())
	assert.Equal(t, "SEN55", dev.String())
	assert.False(t, dev.Measuring())

	assert.NoError(t, pb.Close())
}

func TestInitFailure(t *testing.T) {
	dev := New(&fakeTransport{err: errors.New("no ack")})

	err := dev.Init()
	require.Error(t, err)
	var busErr *BusError
	assert.ErrorAs(t, err, &busErr)
	assert.Equal(t, "SEN5x", dev.String())
}
