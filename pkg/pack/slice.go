package pack

import (
	"fmt"
	"io"
	"os"
)

// ReadSlice opens path, seeks to offset, and reads exactly size bytes.
// It reopens the file on every call rather than pooling descriptors,
// matching the one-handle-per-request resource bound of the response
// builder that calls it.
func ReadSlice(path string, offset int64, size int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("pack: open %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("pack: seek %s to %d: %w", path, offset, err)
	}

	data := make([]byte, size)
	if _, err := io.ReadFull(f, data); err != nil {
		return nil, fmt.Errorf("pack: read %d bytes from %s at %d: %w", size, path, offset, err)
	}
	return data, nil
}
