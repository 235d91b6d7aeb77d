// Package pack parses the directory of a pack archive: a chain of groups,
// each holding a count of (name, offset, size, crc) entries. It never reads
// asset bodies, only the directory records that locate them.
package pack

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// ErrInvalidData reports a structurally invalid directory record, such as
// a non-UTF-8 entry name.
var ErrInvalidData = errors.New("pack: invalid data")

// Entry is one directory record: the name of an asset and the absolute
// byte range within the pack file that holds its body.
type Entry struct {
	Name       string
	DataOffset uint32
	Size       uint32
	CRC        uint32
}

// ReadDirectory walks the group chain starting at offset 0 of r and
// returns every directory entry in encounter order. r must support
// seeking because group offsets are absolute, not relative to the
// previous group's end.
func ReadDirectory(r io.ReadSeeker) ([]Entry, error) {
	var entries []Entry
	offset := int64(0)

	for {
		if _, err := r.Seek(offset, io.SeekStart); err != nil {
			return nil, fmt.Errorf("pack: seek to group at %d: %w", offset, err)
		}

		nextGroupOffset, err := readUint32(r)
		if err != nil {
			return nil, fmt.Errorf("pack: read next group offset: %w", err)
		}

		count, err := readUint32(r)
		if err != nil {
			return nil, fmt.Errorf("pack: read group entry count: %w", err)
		}

		for i := uint32(0); i < count; i++ {
			entry, err := readEntry(r)
			if err != nil {
				return nil, fmt.Errorf("pack: read entry %d: %w", i, err)
			}
			entries = append(entries, entry)
		}

		if nextGroupOffset == 0 {
			return entries, nil
		}
		offset = int64(nextGroupOffset)
	}
}

func readEntry(r io.Reader) (Entry, error) {
	nameLen, err := readUint32(r)
	if err != nil {
		return Entry{}, fmt.Errorf("read name length: %w", err)
	}

	nameBytes := make([]byte, nameLen)
	if _, err := io.ReadFull(r, nameBytes); err != nil {
		return Entry{}, fmt.Errorf("read name: %w", unexpectedEOF(err))
	}
	if !utf8.Valid(nameBytes) {
		return Entry{}, fmt.Errorf("%w: entry name is not valid utf-8", ErrInvalidData)
	}

	dataOffset, err := readUint32(r)
	if err != nil {
		return Entry{}, fmt.Errorf("read data offset: %w", err)
	}
	size, err := readUint32(r)
	if err != nil {
		return Entry{}, fmt.Errorf("read size: %w", err)
	}
	crc, err := readUint32(r)
	if err != nil {
		return Entry{}, fmt.Errorf("read crc: %w", err)
	}

	return Entry{
		Name:       string(nameBytes),
		DataOffset: dataOffset,
		Size:       size,
		CRC:        crc,
	}, nil
}

func readUint32(r io.Reader) (uint32, error) {
	var v uint32
	if err := binary.Read(r, binary.BigEndian, &v); err != nil {
		return 0, unexpectedEOF(err)
	}
	return v, nil
}

// unexpectedEOF normalizes a clean io.EOF encountered mid-record to
// io.ErrUnexpectedEOF, per §4.1's fail mode for a file ending mid-record.
func unexpectedEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
