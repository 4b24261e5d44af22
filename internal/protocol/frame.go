package protocol

// Byte values shared by every PLM command frame.
const (
	// FrameStart opens every host-to-PLM frame (ASCII STX).
	FrameStart = 0x02

	// CmdSendMsg is the PLM "send Insteon message" function code.
	CmdSendMsg = 0x62

	// FlagsStd and FlagsExt are the message flag bytes: high nibble 0 for
	// standard or 1 for extended, low nibble 0b1111 for 3 hops left, 3 max.
	FlagsStd = 0x0F
	FlagsExt = 0x1F

	// Ack is the byte the PLM appends to a successful command echo.
	Ack = 0x06

	// MarkerStdMsg and MarkerExtMsg identify the received-message segments
	// the PLM relays back: 0x50 for a standard message, 0x51 for extended.
	MarkerStdMsg = 0x50
	MarkerExtMsg = 0x51
)

// Response segment lengths, fixed by the PLM serial protocol.
const (
	// StdFrameLen and ExtFrameLen are the sent frame sizes including the
	// integrity trailer for the extended variants.
	StdFrameLen = 8
	ExtFrameLen = 22

	// StdAckLen is the size of one standard-message segment (0x50).
	StdAckLen = 11

	// ExtAckLen is the size of the extended-message segment (0x51).
	ExtAckLen = 25

	// trailerStart is the offset of command 1 in a sent frame; the
	// integrity trailer covers everything from here to the trailer itself.
	trailerStart = 6
)

// Offsets of the echoed command bytes inside a standard-message segment.
// Extended exchanges require the segment to echo the command pair sent.
const (
	StdAckCmd1Offset = 9
	StdAckCmd2Offset = 10
)

// BuildStdCommand assembles an 8-byte standard command frame:
//
//	[0]    0x02        frame start
//	[1]    0x62        send Insteon message
//	[2..4] address     high, mid, low
//	[5]    0x0F        standard flags
//	[6]    cmd1
//	[7]    cmd2
func BuildStdCommand(addr Address, cmd1, cmd2 byte) []byte {
	return []byte{FrameStart, CmdSendMsg, addr[0], addr[1], addr[2], FlagsStd, cmd1, cmd2}
}

// BuildExtCrcCommand assembles a 22-byte extended command frame carrying a
// 12-byte payload and the 2-byte CRC trailer:
//
//	[0..5]   header as BuildStdCommand but with extended flags 0x1F
//	[6]      cmd1
//	[7]      cmd2
//	[8..19]  data 1..12
//	[20..21] CRC over bytes 6..19, high byte first
func BuildExtCrcCommand(addr Address, cmd1, cmd2 byte, data [12]byte) []byte {
	frame := make([]byte, 0, ExtFrameLen)
	frame = append(frame, FrameStart, CmdSendMsg, addr[0], addr[1], addr[2], FlagsExt, cmd1, cmd2)
	frame = append(frame, data[:]...)
	crc := CRC(frame[trailerStart:])
	return append(frame, crc[0], crc[1])
}

// BuildExtChecksumCommand assembles a 22-byte extended command frame
// carrying a 13-byte payload and the 1-byte checksum trailer:
//
//	[0..5]  header as BuildStdCommand but with extended flags 0x1F
//	[6]     cmd1
//	[7]     cmd2
//	[8..20] data 1..13
//	[21]    checksum over bytes 6..20
func BuildExtChecksumCommand(addr Address, cmd1, cmd2 byte, data [13]byte) []byte {
	frame := make([]byte, 0, ExtFrameLen)
	frame = append(frame, FrameStart, CmdSendMsg, addr[0], addr[1], addr[2], FlagsExt, cmd1, cmd2)
	frame = append(frame, data[:]...)
	return append(frame, Checksum(frame[trailerStart:]))
}
