package transport

import (
	"bytes"
	"testing"
)

func TestCodecRoundTrip(t *testing.T) {
	payloads := [][]byte{
		{},
		[]byte("info"),
		[]byte("break func_a ovl en_test 80"),
		{0x00, 0x0a, 0x0d, 0xff, 0x00},
		[]byte("0x0000000a"),
		{0x0a, 0x00, 0x00, 0x00},
		[]byte("0x00000004\x04\x00\x00\x00"),
		bytes.Repeat([]byte{'x'}, 70000),
	}

	for _, codec := range []FrameCodec{LengthPrefix{}, HexHeader{}} {
		for _, p := range payloads {
			frame, err := Encode(codec, p)
			if err != nil {
				t.Fatalf("%s: Encode(%d bytes) error = %v", codec.Name(), len(p), err)
			}
			if len(frame) != codec.HeaderSize()+len(p) {
				t.Errorf("%s: frame length = %d, want %d", codec.Name(), len(frame), codec.HeaderSize()+len(p))
			}
			n, err := codec.DecodeHeader(frame[:codec.HeaderSize()])
			if err != nil {
				t.Fatalf("%s: DecodeHeader error = %v", codec.Name(), err)
			}
			if n != len(p) {
				t.Errorf("%s: decoded length = %d, want %d", codec.Name(), n, len(p))
			}
			if !bytes.Equal(frame[codec.HeaderSize():], p) {
				t.Errorf("%s: payload bytes changed by encoding", codec.Name())
			}
		}
	}
}

func TestLengthPrefixIsLittleEndian(t *testing.T) {
	h, err := LengthPrefix{}.EncodeHeader(0x0102)
	if err != nil {
		t.Fatalf("EncodeHeader error = %v", err)
	}
	want := []byte{0x02, 0x01, 0x00, 0x00}
	if !bytes.Equal(h, want) {
		t.Errorf("EncodeHeader(0x0102) = % x, want % x", h, want)
	}
}

func TestHexHeaderEncode(t *testing.T) {
	h, err := HexHeader{}.EncodeHeader(7)
	if err != nil {
		t.Fatalf("EncodeHeader error = %v", err)
	}
	if string(h) != "0x00000007" {
		t.Errorf("EncodeHeader(7) = %q, want %q", h, "0x00000007")
	}
}

func TestHexHeaderDecode(t *testing.T) {
	tests := []struct {
		header  string
		want    int
		wantErr bool
	}{
		{"0x00000007", 7, false},
		{"0X0000001f", 31, false},
		{"0x1f      ", 31, false},
		{"        42", 42, false},
		{"0000000042", 42, false},
		{"0xzzzzzzzz", 0, true},
		{"          ", 0, true},
		{"0x0000007", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got, err := HexHeader{}.DecodeHeader([]byte(tt.header))
			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodeHeader(%q) error = %v, wantErr %v", tt.header, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("DecodeHeader(%q) = %d, want %d", tt.header, got, tt.want)
			}
		})
	}
}

func TestCodecByName(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"", LengthPrefixName, false},
		{"length-prefix", LengthPrefixName, false},
		{"hex", HexHeaderName, false},
		{"base64", "", true},
	}

	for _, tt := range tests {
		codec, err := CodecByName(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("CodecByName(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if err == nil && codec.Name() != tt.want {
			t.Errorf("CodecByName(%q) = %s, want %s", tt.name, codec.Name(), tt.want)
		}
	}
}
