package transport

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

// FrameCodec encodes and decodes the fixed-size length header of a frame.
type FrameCodec interface {
	// Name identifies the codec in configuration.
	Name() string
	// HeaderSize is the exact header length in bytes.
	HeaderSize() int
	// EncodeHeader renders the header for an n-byte payload.
	EncodeHeader(n int) ([]byte, error)
	// DecodeHeader returns the payload length declared by h.
	DecodeHeader(h []byte) (int, error)
}

const (
	// LengthPrefixName selects the 4-byte little-endian length header.
	LengthPrefixName = "length-prefix"
	// HexHeaderName selects the 10-character ASCII hex length header.
	HexHeaderName = "hex"

	lengthPrefixSize = 4
	hexHeaderSize    = 10
)

// LengthPrefix is the canonical codec: a 4-byte little-endian unsigned length.
type LengthPrefix struct{}

func (LengthPrefix) Name() string    { return LengthPrefixName }
func (LengthPrefix) HeaderSize() int { return lengthPrefixSize }

func (LengthPrefix) EncodeHeader(n int) ([]byte, error) {
	if n < 0 || uint64(n) > 0xffffffff {
		return nil, fmt.Errorf("length %d does not fit a 4-byte header", n)
	}
	h := make([]byte, lengthPrefixSize)
	binary.LittleEndian.PutUint32(h, uint32(n))
	return h, nil
}

func (LengthPrefix) DecodeHeader(h []byte) (int, error) {
	if len(h) != lengthPrefixSize {
		return 0, fmt.Errorf("header is %d bytes, want %d", len(h), lengthPrefixSize)
	}
	return int(binary.LittleEndian.Uint32(h)), nil
}

// HexHeader is the earlier protocol revision: the length as ten ASCII
// characters, written as 0x%08x. Decoding also accepts space-padded and
// plain decimal headers.
type HexHeader struct{}

func (HexHeader) Name() string    { return HexHeaderName }
func (HexHeader) HeaderSize() int { return hexHeaderSize }

func (HexHeader) EncodeHeader(n int) ([]byte, error) {
	if n < 0 || uint64(n) > 0xffffffff {
		return nil, fmt.Errorf("length %d does not fit a 10-character header", n)
	}
	return []byte(fmt.Sprintf("0x%08x", n)), nil
}

func (HexHeader) DecodeHeader(h []byte) (int, error) {
	if len(h) != hexHeaderSize {
		return 0, fmt.Errorf("header is %d bytes, want %d", len(h), hexHeaderSize)
	}
	s := strings.TrimSpace(string(h))
	digits, base := s, 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		digits, base = s[2:], 16
	}
	n, err := strconv.ParseUint(digits, base, 32)
	if err != nil {
		return 0, fmt.Errorf("bad length header %q: %w", h, err)
	}
	return int(n), nil
}

// CodecByName returns the codec for a configuration name. An empty name
// selects LengthPrefix.
func CodecByName(name string) (FrameCodec, error) {
	switch name {
	case "", LengthPrefixName:
		return LengthPrefix{}, nil
	case HexHeaderName:
		return HexHeader{}, nil
	default:
		return nil, fmt.Errorf("unknown framing %q (valid: %s, %s)", name, LengthPrefixName, HexHeaderName)
	}
}

// Encode returns header and payload as one buffer.
func Encode(codec FrameCodec, payload []byte) ([]byte, error) {
	h, err := codec.EncodeHeader(len(payload))
	if err != nil {
		return nil, err
	}
	frame := make([]byte, 0, len(h)+len(payload))
	frame = append(frame, h...)
	return append(frame, payload...), nil
}
