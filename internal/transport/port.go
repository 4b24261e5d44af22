package transport

// Port is the serial channel the PLM is attached to. Read blocks until n
// bytes arrive or the channel's configured read timeout elapses, in which
// case it returns however many bytes it got; the Session treats a short
// read as a protocol error. Flushes discard any pending bytes so an
// exchange starts from an empty channel.
type Port interface {
	Write(p []byte) error
	Read(n int) ([]byte, error)
	FlushInput() error
	FlushOutput() error
}
