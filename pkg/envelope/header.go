// Package envelope implements the compressed envelope the client expects
// when an asset URL's extension carries a ".z" suffix: an 8-byte header
// followed by a zlib stream of the original bytes.
package envelope

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Magic identifies a compressed envelope.
const Magic uint32 = 0xA1B2C3D4

// HeaderSize is the on-the-wire size of Header in bytes.
const HeaderSize = 8

// Header is the fixed-size prefix of a compressed envelope.
type Header struct {
	Magic            uint32
	UncompressedSize uint32
}

// Validate checks the header for structural validity.
func (h *Header) Validate() error {
	if h.Magic != Magic {
		return fmt.Errorf("invalid magic: expected %08x, got %08x", Magic, h.Magic)
	}
	return nil
}

// MarshalBinary encodes the header to its 8-byte big-endian form.
func (h *Header) MarshalBinary() ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.BigEndian, h); err != nil {
		return nil, fmt.Errorf("marshal envelope header: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes the header from its 8-byte big-endian form.
func (h *Header) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderSize {
		return fmt.Errorf("unmarshal envelope header: short header: %d bytes", len(data))
	}
	buf := bytes.NewReader(data[:HeaderSize])
	if err := binary.Read(buf, binary.BigEndian, h); err != nil {
		return fmt.Errorf("unmarshal envelope header: %w", err)
	}
	return h.Validate()
}

// NewHeader builds a header for the given uncompressed payload length.
func NewHeader(uncompressedSize uint32) *Header {
	return &Header{Magic: Magic, UncompressedSize: uncompressedSize}
}
