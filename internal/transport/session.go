package transport

import (
	"errors"
	"fmt"

	"github.com/dverge/insteonplm/internal/logging"
	"github.com/dverge/insteonplm/internal/protocol"
)

// Session executes one write/read exchange at a time against a Port. It
// holds no per-exchange state and never retries.
type Session struct {
	port Port
}

// NewSession wraps a Port in a Session.
func NewSession(port Port) *Session {
	return &Session{port: port}
}

// ExchangeStd sends an 8-byte standard command and reads nResponses
// standard-message segments. It returns the concatenated segments
// (11 bytes each).
func (s *Session) ExchangeStd(frame []byte, nResponses int) ([]byte, error) {
	if len(frame) != protocol.StdFrameLen {
		return nil, fmt.Errorf("%w: standard frame is %d bytes, want %d",
			ErrValidation, len(frame), protocol.StdFrameLen)
	}
	stdAck, _, err := s.exchange(frame, nResponses, false, false)
	return stdAck, err
}

// ExchangeExtCrc sends a 22-byte extended CRC command. When readExtended
// is set it reads and returns the 25-byte extended-message segment;
// otherwise the device's extended ack is not expected and nil is returned.
// The standard-message segment must echo the command pair sent.
func (s *Session) ExchangeExtCrc(frame []byte, readExtended bool) ([]byte, error) {
	if len(frame) != protocol.ExtFrameLen {
		return nil, fmt.Errorf("%w: extended frame is %d bytes, want %d",
			ErrValidation, len(frame), protocol.ExtFrameLen)
	}
	_, extAck, err := s.exchange(frame, 1, readExtended, true)
	return extAck, err
}

// ExchangeExtChecksum sends a 22-byte extended checksum command and reads
// the 25-byte extended-message segment. The standard-message segment must
// echo the command pair sent.
func (s *Session) ExchangeExtChecksum(frame []byte) ([]byte, error) {
	if len(frame) != protocol.ExtFrameLen {
		return nil, fmt.Errorf("%w: extended frame is %d bytes, want %d",
			ErrValidation, len(frame), protocol.ExtFrameLen)
	}
	_, extAck, err := s.exchange(frame, 1, true, true)
	return extAck, err
}

// exchange is the strict write-then-read-three-segments sequence shared by
// all command classes. Any failure flushes both buffers so the next
// exchange starts from a clean channel.
func (s *Session) exchange(frame []byte, nStd int, readExt, checkCmdEcho bool) (stdAck, extAck []byte, err error) {
	if err := s.flush(); err != nil {
		return nil, nil, errors.Join(ErrIO, err)
	}
	if err := s.port.Write(frame); err != nil {
		s.flush()
		return nil, nil, errors.Join(fmt.Errorf("%w: write", ErrIO), err)
	}

	echo, err := s.readExact(len(frame)+1, "echo")
	if err != nil {
		return nil, nil, err
	}
	stdAck, err = s.readExact(protocol.StdAckLen*nStd, "standard ack")
	if err != nil {
		return nil, nil, err
	}
	if readExt {
		extAck, err = s.readExact(protocol.ExtAckLen, "extended ack")
		if err != nil {
			return nil, nil, err
		}
	}

	// All segments are length-correct; now make sure they line up with the
	// command sent, i.e. no out-of-order or unsolicited traffic.
	if echo[len(echo)-1] != protocol.Ack {
		s.flush()
		return nil, nil, fmt.Errorf("%w: echo not acked (trailing byte 0x%02x)",
			ErrFrameMisalignment, echo[len(echo)-1])
	}
	for i := 0; i < nStd; i++ {
		seg := stdAck[protocol.StdAckLen*i : protocol.StdAckLen*(i+1)]
		if seg[1] != protocol.MarkerStdMsg {
			s.flush()
			return nil, nil, fmt.Errorf("%w: standard ack %d marker 0x%02x, want 0x%02x",
				ErrFrameMisalignment, i, seg[1], protocol.MarkerStdMsg)
		}
		if checkCmdEcho &&
			(seg[protocol.StdAckCmd1Offset] != frame[6] || seg[protocol.StdAckCmd2Offset] != frame[7]) {
			s.flush()
			return nil, nil, fmt.Errorf("%w: standard ack echoes commands %02x/%02x, sent %02x/%02x",
				ErrFrameMisalignment, seg[protocol.StdAckCmd1Offset], seg[protocol.StdAckCmd2Offset],
				frame[6], frame[7])
		}
	}
	if readExt && extAck[1] != protocol.MarkerExtMsg {
		s.flush()
		return nil, nil, fmt.Errorf("%w: extended ack marker 0x%02x, want 0x%02x",
			ErrFrameMisalignment, extAck[1], protocol.MarkerExtMsg)
	}

	logging.LogExchange("plm exchange", frame, echo, stdAck, extAck)
	return stdAck, extAck, nil
}

// readExact reads exactly n bytes or fails the exchange. A short read is a
// length error, not a partial frame to keep; an i/o error aborts without
// attempting further reads.
func (s *Session) readExact(n int, segment string) ([]byte, error) {
	buf, err := s.port.Read(n)
	if err != nil {
		s.flush()
		return nil, errors.Join(fmt.Errorf("%w: reading %s", ErrIO, segment), err)
	}
	if len(buf) != n {
		s.flush()
		return nil, fmt.Errorf("%w: %s is %d bytes, want %d", ErrLengthMismatch, segment, len(buf), n)
	}
	return buf, nil
}

// flush clears both channel buffers. The initial flush makes an exchange
// start from an empty channel; error-path flushes resynchronize it.
func (s *Session) flush() error {
	return errors.Join(s.port.FlushInput(), s.port.FlushOutput())
}
