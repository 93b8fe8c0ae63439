package sen5x

import (
	"encoding/binary"
	"math"

	"github.com/relabs-tech/air_monitor/internal/env"
)

// Frame is a raw measured-values response, CRC bytes included.
type Frame []byte

// Byte offsets of each word in a Frame and the divisor that turns the raw
// integer into its physical value.
const (
	offPM1  = 0
	offPM25 = 3
	offPM4  = 6
	offPM10 = 9
	offRH   = 12
	offT    = 15
	offVOC  = 18
	offNOx  = 21

	scalePM  = 10.0
	scaleRH  = 100.0
	scaleT   = 200.0
	scaleVOC = 10.0
	scaleNOx = 10.0
)

// Raw words the device sends for a quantity it cannot report yet, such as
// NOx during the first seconds after Start.
const (
	unavailableUnsigned uint16 = 0xFFFF
	unavailableSigned   int16  = 0x7FFF
)

var frameFields = [...]struct {
	name   string
	off    int
	signed bool
}{
	{"pm1", offPM1, false},
	{"pm25", offPM25, false},
	{"pm4", offPM4, false},
	{"pm10", offPM10, false},
	{"humidity", offRH, true},
	{"temperature", offT, true},
	{"voc", offVOC, true},
	{"nox", offNOx, true},
}

func (f Frame) uint16At(off int) uint16 {
	return binary.BigEndian.Uint16(f[off : off+2])
}

func (f Frame) int16At(off int) int16 {
	return int16(binary.BigEndian.Uint16(f[off : off+2]))
}

func (f Frame) unsigned(off int, scale float64) float64 {
	raw := f.uint16At(off)
	if raw == unavailableUnsigned {
		return 0
	}
	return float64(raw) / scale
}

func (f Frame) signed(off int, scale float64) float64 {
	raw := f.int16At(off)
	if raw == unavailableSigned {
		return 0
	}
	return float64(raw) / scale
}

// Decode converts a measured-values frame into physical units. It does not
// touch the device and does not check CRCs; ReadFrame already did that.
// Quantities the device marks as not available decode as 0 (see
// Unavailable). The returned Reading has no timestamp.
func Decode(f Frame) (env.Reading, error) {
	if len(f) != FrameSize {
		return env.Reading{}, &DecodeError{Len: len(f)}
	}
	return env.Reading{
		PM1:         f.unsigned(offPM1, scalePM),
		PM25:        f.unsigned(offPM25, scalePM),
		PM4:         f.unsigned(offPM4, scalePM),
		PM10:        f.unsigned(offPM10, scalePM),
		Humidity:    f.signed(offRH, scaleRH),
		Temperature: f.signed(offT, scaleT),
		VOC:         f.signed(offVOC, scaleVOC),
		NOx:         f.signed(offNOx, scaleNOx),
	}, nil
}

// Unavailable returns the names of the quantities f marks as not available,
// in frame order. It returns nil for a frame of the wrong length.
func Unavailable(f Frame) []string {
	if len(f) != FrameSize {
		return nil
	}
	var out []string
	for _, fld := range frameFields {
		if fld.signed && f.int16At(fld.off) == unavailableSigned ||
			!fld.signed && f.uint16At(fld.off) == unavailableUnsigned {
			out = append(out, fld.name)
		}
	}
	return out
}

// Encode builds a valid frame, CRCs included, from physical values. It is
// the inverse of Decode up to the fixed-point resolution and is used by the
// simulated bus.
func Encode(r env.Reading) Frame {
	words := [8]uint16{
		uint16(math.Round(r.PM1 * scalePM)),
		uint16(math.Round(r.PM25 * scalePM)),
		uint16(math.Round(r.PM4 * scalePM)),
		uint16(math.Round(r.PM10 * scalePM)),
		uint16(int16(math.Round(r.Humidity * scaleRH))),
		uint16(int16(math.Round(r.Temperature * scaleT))),
		uint16(int16(math.Round(r.VOC * scaleVOC))),
		uint16(int16(math.Round(r.NOx * scaleNOx))),
	}
	return Frame(encodeWords(words[:]))
}

// encodeWords lays out words big-endian, each followed by its CRC.
func encodeWords(words []uint16) []byte {
	out := make([]byte, 0, len(words)*3)
	for _, w := range words {
		var b [2]byte
		binary.BigEndian.PutUint16(b[:], w)
		out = append(out, b[0], b[1], crc8(b[:]))
	}
	return out
}
