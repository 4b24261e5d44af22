// Package protocol implements the Insteon PLM serial frame codec.
//
// The host talks to remote devices through a power-line modem (PLM)
// attached over a serial channel. Every outgoing command is a fixed-layout
// byte frame addressed to a 3-byte device address:
//
//   - Standard command (8 bytes): start byte, send-message code, address,
//     flags, command 1, command 2.
//   - Extended command (22 bytes): same header with the extended flag, a
//     12- or 13-byte data payload, and an integrity trailer.
//
// Extended commands carry one of two integrity trailers, depending on the
// device function being addressed:
//
//   - CRC variant: 12 data bytes followed by a 2-byte bit-serial CRC over
//     command 1 through data 12.
//   - Checksum variant: 13 data bytes followed by a 1-byte two's-complement
//     checksum over command 1 through data 13.
//
// Neither trailer is the CRC used on the power-line/RF wire itself; both
// only cover the host-to-PLM serial hop.
//
// The PLM answers every command with up to three segments: an echo of the
// sent frame plus an ack byte (0x06), one or more 11-byte standard-message
// segments marked 0x50, and, for extended commands, a 25-byte
// extended-message segment marked 0x51. This package defines the segment
// lengths and marker constants; driving the exchange lives in the
// transport package.
//
// All functions are pure and safe for concurrent use.
package protocol
