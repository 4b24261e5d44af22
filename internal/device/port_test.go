package device

import (
	"github.com/dverge/insteonplm/internal/protocol"
	"github.com/dverge/insteonplm/internal/transport"
)

// scriptPort feeds one queued chunk per Read call, in order. Tests script
// whole exchanges as echo, standard ack(s) and optionally an extended ack.
type scriptPort struct {
	reads     [][]byte
	written   [][]byte
	readCalls int
}

var _ transport.Port = (*scriptPort)(nil)

func (p *scriptPort) Write(b []byte) error {
	p.written = append(p.written, append([]byte(nil), b...))
	return nil
}

func (p *scriptPort) Read(n int) ([]byte, error) {
	p.readCalls++
	if len(p.reads) == 0 {
		return nil, nil
	}
	buf := p.reads[0]
	p.reads = p.reads[1:]
	if len(buf) > n {
		buf = buf[:n]
	}
	return buf, nil
}

func (p *scriptPort) FlushInput() error  { return nil }
func (p *scriptPort) FlushOutput() error { return nil }

// script appends one exchange's worth of response segments.
func (p *scriptPort) script(segments ...[]byte) {
	p.reads = append(p.reads, segments...)
}

func echoFor(frame []byte) []byte {
	return append(append([]byte(nil), frame...), protocol.Ack)
}

// stdAck builds one standard-message segment echoing cmd1/cmd2 with the
// given payload byte in the last position.
func stdAck(cmd1, cmd2, last byte) []byte {
	seg := make([]byte, protocol.StdAckLen)
	seg[1] = protocol.MarkerStdMsg
	seg[protocol.StdAckCmd1Offset] = cmd1
	seg[protocol.StdAckCmd2Offset] = cmd2
	seg[protocol.StdAckLen-1] = last
	return seg
}

// extAck builds an extended-message segment, letting the caller fill the
// data bytes.
func extAck(fill func(seg []byte)) []byte {
	seg := make([]byte, protocol.ExtAckLen)
	seg[1] = protocol.MarkerExtMsg
	if fill != nil {
		fill(seg)
	}
	return seg
}
