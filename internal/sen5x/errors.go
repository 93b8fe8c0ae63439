package sen5x

import "fmt"

// BusError reports a failed write or read on the transport.
type BusError struct {
	Cmd uint16
	Err error
}

func (e *BusError) Error() string {
	return fmt.Sprintf("sen5x: bus error on command 0x%04X: %v", e.Cmd, e.Err)
}

func (e *BusError) Unwrap() error { return e.Err }

// FrameLengthError reports a response shorter than the command requires.
type FrameLengthError struct {
	Cmd  uint16
	Got  int
	Want int
}

func (e *FrameLengthError) Error() string {
	return fmt.Sprintf("sen5x: short response to command 0x%04X: got %d bytes, want %d", e.Cmd, e.Got, e.Want)
}

// CRCError reports a response word whose checksum does not match.
type CRCError struct {
	Cmd  uint16
	Word int
	Got  byte
	Want byte
}

func (e *CRCError) Error() string {
	return fmt.Sprintf("sen5x: crc mismatch in response to command 0x%04X word %d: got 0x%02X, want 0x%02X",
		e.Cmd, e.Word, e.Got, e.Want)
}

// DecodeError reports a measured-values frame of the wrong size.
type DecodeError struct {
	Len int
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("sen5x: cannot decode frame of %d bytes, want %d", e.Len, FrameSize)
}
