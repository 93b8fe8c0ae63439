package acquisition

import (
	"errors"

	"github.com/relabs-tech/air_monitor/internal/sen5x"
)

// ErrDataNotReadyTimeout is returned when the data-ready flag did not come
// up within the poll budget.
var ErrDataNotReadyTimeout = errors.New("data not ready within poll budget")

// Error kinds reported by ErrorKind.
const (
	KindBus          = "bus"
	KindFrameLength  = "frame_length"
	KindCRC          = "crc"
	KindDecode       = "decode"
	KindDataNotReady = "data_not_ready_timeout"
	KindOther        = "other"
)

// ErrorKind classifies an acquisition error for logs and metrics. It returns
// "" for a nil error.
func ErrorKind(err error) string {
	var (
		busErr    *sen5x.BusError
		lenErr    *sen5x.FrameLengthError
		crcErr    *sen5x.CRCError
		decodeErr *sen5x.DecodeError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrDataNotReadyTimeout):
		return KindDataNotReady
	case errors.As(err, &busErr):
		return KindBus
	case errors.As(err, &lenErr):
		return KindFrameLength
	case errors.As(err, &crcErr):
		return KindCRC
	case errors.As(err, &decodeErr):
		return KindDecode
	default:
		return KindOther
	}
}
