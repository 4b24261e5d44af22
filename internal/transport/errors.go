package transport

import "errors"

// Exchange outcomes are classified into one of four kinds so callers can
// distinguish garbled traffic from a dead channel. Match with errors.Is.
var (
	// ErrLengthMismatch means a read returned other than the exact number
	// of bytes the protocol requires for that segment.
	ErrLengthMismatch = errors.New("response length mismatch")

	// ErrFrameMisalignment means a marker byte or echoed command byte was
	// wrong: out-of-order or unsolicited traffic on the channel.
	ErrFrameMisalignment = errors.New("response out of order")

	// ErrIO means the channel itself failed (write error, read error,
	// disconnect).
	ErrIO = errors.New("serial channel i/o failure")

	// ErrValidation means caller-supplied arguments were rejected before
	// any channel i/o took place.
	ErrValidation = errors.New("invalid arguments")
)
