package mapfile

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseNumber parses a map file integer literal. A 0x or 0X prefix selects
// hexadecimal, anything else is decimal.
//
// Maps produced for 64-bit MIPS targets print 32-bit addresses sign extended
// to 64 bits (0xffffffff80000400), and 64-bit hosts pad them with zeros
// (0x0000000080000400). Both forms are accepted and narrowed to 32 bits;
// any other value above 32 bits is out of range.
func ParseNumber(s string) (uint32, error) {
	digits, base := s, 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		digits, base = s[2:], 16
	}
	if digits == "" {
		return 0, fmt.Errorf("invalid number %q", s)
	}

	v, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", s, err)
	}

	switch hi := v >> 32; {
	case hi == 0:
		return uint32(v), nil
	case base == 16 && hi == 0xffffffff && v&0x80000000 != 0:
		return uint32(v), nil
	default:
		return 0, fmt.Errorf("number %q does not fit in 32 bits", s)
	}
}
