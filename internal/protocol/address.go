package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// Address is the 3-byte Insteon device address, ordered high, mid, low so
// it reads the same way as the label printed on the device. A label of
// 00.2B.8E is Address{0x00, 0x2B, 0x8E}.
type Address [3]byte

// Unconfigured is the sentinel address of a device slot that has not been
// assigned a real device. Every operation on it is a no-op.
var Unconfigured = Address{}

// IsUnconfigured reports whether the address is the all-zero sentinel.
func (a Address) IsUnconfigured() bool {
	return a == Unconfigured
}

// String formats the address as the dotted hex label on the device.
func (a Address) String() string {
	return fmt.Sprintf("%02x.%02x.%02x", a[0], a[1], a[2])
}

// ParseAddress parses a dotted hex label such as "00.2b.8e".
func ParseAddress(s string) (Address, error) {
	var a Address
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return Unconfigured, fmt.Errorf("invalid device address %q: want 3 dotted hex bytes", s)
	}
	for i, p := range parts {
		b, err := strconv.ParseUint(p, 16, 8)
		if err != nil {
			return Unconfigured, fmt.Errorf("invalid device address %q: byte %d: %w", s, i, err)
		}
		a[i] = byte(b)
	}
	return a, nil
}
