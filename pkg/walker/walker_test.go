package walker

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func TestWalk(t *testing.T) {
	root := t.TempDir()

	mustWrite := func(rel string, data []byte) {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}

	mustWrite("ui/logo.dds", []byte("A"))
	mustWrite("data/foo_manifest.txt", []byte("L"))
	mustWrite("world.pack", []byte{1, 2, 3})
	mustWrite("nested/deeper/leaf.bin", []byte{9})

	files, err := Walk(root)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}

	var relPaths []string
	for _, f := range files {
		relPaths = append(relPaths, f.RelPath)
	}
	sort.Strings(relPaths)

	want := []string{
		"data/foo_manifest.txt",
		"nested/deeper/leaf.bin",
		"ui/logo.dds",
		"world.pack",
	}
	if len(relPaths) != len(want) {
		t.Fatalf("got %v, want %v", relPaths, want)
	}
	for i := range want {
		if relPaths[i] != want[i] {
			t.Errorf("got %v, want %v", relPaths, want)
			break
		}
	}
}

func TestWalkMissingRoot(t *testing.T) {
	_, err := Walk(filepath.Join(t.TempDir(), "does-not-exist"))
	if err == nil {
		t.Fatal("expected error for missing root")
	}
}

func TestWalkFollowsSymlinkedDirectory(t *testing.T) {
	root := t.TempDir()

	realDir := filepath.Join(root, "real")
	if err := os.MkdirAll(realDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(realDir, "asset.bin"), []byte{1}, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	linkPath := filepath.Join(root, "linked")
	if err := os.Symlink(realDir, linkPath); err != nil {
		t.Skipf("symlinks unsupported on this platform: %v", err)
	}

	files, err := Walk(root)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}

	var relPaths []string
	for _, f := range files {
		relPaths = append(relPaths, f.RelPath)
	}
	sort.Strings(relPaths)

	want := []string{"linked/asset.bin", "real/asset.bin"}
	if len(relPaths) != len(want) {
		t.Fatalf("got %v, want %v", relPaths, want)
	}
	for i := range want {
		if relPaths[i] != want[i] {
			t.Errorf("got %v, want %v", relPaths, want)
			break
		}
	}
}
