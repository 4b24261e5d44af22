package protocol

// CRC computes the 2-byte integrity trailer of an extended CRC command.
// The input is the 14 bytes from command 1 through data 12; the result is
// returned high byte first, as it appears on the wire.
//
// The algorithm is the bit-serial CRC described in the 2441ZTH developer
// notes: a 16-bit accumulator starting at zero consumes each input byte
// LSB first. Per bit, the feedback is the input bit XORed with the
// accumulator's bits 15, 14, 12 and 3 (each applied only when set), and
// the accumulator shifts left one with the feedback inserted at bit 0.
func CRC(data []byte) [2]byte {
	var crc uint16
	for _, b := range data {
		for i := 0; i < 8; i++ {
			fb := uint16(b & 1)
			if crc&0x8000 != 0 {
				fb ^= 1
			}
			if crc&0x4000 != 0 {
				fb ^= 1
			}
			if crc&0x1000 != 0 {
				fb ^= 1
			}
			if crc&0x0008 != 0 {
				fb ^= 1
			}
			crc = crc<<1 | fb
			b >>= 1
		}
	}
	return [2]byte{byte(crc >> 8), byte(crc)}
}

// Checksum computes the 1-byte integrity trailer of an extended checksum
// command: the sum of the input bytes modulo 256, complemented, plus one.
// Adding the result back to the sum of the input always yields 0 mod 256.
func Checksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum += b
	}
	return ^sum + 1
}
