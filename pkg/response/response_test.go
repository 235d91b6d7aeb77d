package response

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/echotools/assetproxy/pkg/envelope"
	"github.com/echotools/assetproxy/pkg/locator"
)

func TestBuildMemoryUncompressed(t *testing.T) {
	loc := locator.Memory([]byte("hello"), 0)
	got, err := Build(loc, false)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !bytes.Equal(got, []byte("hello")) {
		t.Errorf("got %v, want %v", got, []byte("hello"))
	}
}

func TestBuildMemoryCompressed(t *testing.T) {
	loc := locator.Memory(bytes.Repeat([]byte("A"), 11), 0)
	got, err := Build(loc, true)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	wantHeader := []byte{0xA1, 0xB2, 0xC3, 0xD4, 0x00, 0x00, 0x00, 0x0B}
	if !bytes.Equal(got[:8], wantHeader) {
		t.Errorf("got header % x, want % x", got[:8], wantHeader)
	}

	decoded, err := envelope.Decode(got)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(decoded, bytes.Repeat([]byte("A"), 11)) {
		t.Errorf("round trip mismatch: got %v", decoded)
	}
}

func TestBuildSlice(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "world.pack")
	body := append(make([]byte, 20), []byte{0xDE, 0xAD, 0xBE, 0xEF}...)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	loc := locator.Slice(path, 20, 4, 0)
	got, err := Build(loc, false)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !bytes.Equal(got, []byte{0xDE, 0xAD, 0xBE, 0xEF}) {
		t.Errorf("got %v, want DEADBEEF", got)
	}
}

func TestBuildLooseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logo.dds")
	data := bytes.Repeat([]byte("A"), 11)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	loc := locator.LooseFile(path, int64(len(data)), 0)
	got, err := Build(loc, false)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("got %v, want %v", got, data)
	}
}
