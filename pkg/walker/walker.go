// Package walker provides a breadth-first traversal of a root directory,
// emitting every non-directory entry once.
package walker

import (
	"fmt"
	"os"
	"path/filepath"
)

// File is one discovered file: its absolute path, its path relative to the
// walked root (slash-separated, matching the convention an asset key is
// built from), and its size in bytes.
type File struct {
	AbsPath string
	RelPath string
	Size    int64
}

// Walk breadth-first traverses root and returns every regular (or at
// least non-directory) file found. Symlinks are followed per the host
// platform's default os.ReadDir/os.Stat behavior. Any error reading a
// directory along the way aborts the whole walk.
func Walk(root string) ([]File, error) {
	var files []File
	queue := []string{root}

	for len(queue) > 0 {
		dir := queue[0]
		queue = queue[1:]

		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("walker: read dir %s: %w", dir, err)
		}

		for _, entry := range entries {
			absPath := filepath.Join(dir, entry.Name())

			// os.Stat, not entry.Info(): the latter reflects the entry's
			// own Lstat-style type bits, so a symlink to a directory
			// would report IsDir() == false and never be recursed into.
			info, err := os.Stat(absPath)
			if err != nil {
				return nil, fmt.Errorf("walker: stat %s: %w", absPath, err)
			}

			if info.IsDir() {
				queue = append(queue, absPath)
				continue
			}

			relPath, err := filepath.Rel(root, absPath)
			if err != nil {
				return nil, fmt.Errorf("walker: relativize %s: %w", absPath, err)
			}

			files = append(files, File{
				AbsPath: absPath,
				RelPath: filepath.ToSlash(relPath),
				Size:    info.Size(),
			})
		}
	}

	return files, nil
}
