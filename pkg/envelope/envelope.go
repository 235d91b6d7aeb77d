package envelope

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
)

// Level is the zlib compression level the wire format specifies.
const Level = 6

// Encode wraps data in a compressed envelope: an 8-byte header (magic,
// uncompressed length) followed by a zlib stream of data at Level.
func Encode(data []byte) ([]byte, error) {
	header := NewHeader(uint32(len(data)))
	headerBytes, err := header.MarshalBinary()
	if err != nil {
		return nil, err
	}

	buf := bytes.NewBuffer(make([]byte, 0, len(headerBytes)+len(data)/2))
	buf.Write(headerBytes)

	zw, err := zlib.NewWriterLevel(buf, Level)
	if err != nil {
		return nil, fmt.Errorf("create zlib writer: %w", err)
	}
	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("write compressed body: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close zlib writer: %w", err)
	}

	return buf.Bytes(), nil
}

// Decode strips the envelope header and zlib-inflates the remainder,
// returning the original bytes. It does not require the decompressed
// length to match the declared UncompressedSize; callers that care can
// check that themselves via Header.
func Decode(data []byte) ([]byte, error) {
	header := &Header{}
	if err := header.UnmarshalBinary(data); err != nil {
		return nil, err
	}

	zr, err := zlib.NewReader(bytes.NewReader(data[HeaderSize:]))
	if err != nil {
		return nil, fmt.Errorf("open zlib stream: %w", err)
	}
	defer zr.Close()

	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("inflate envelope body: %w", err)
	}
	return out, nil
}
