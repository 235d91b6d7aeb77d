// Package assetindex drives the directory walker and pack readers to
// build the read-only asset map a proxy instance serves from, applying
// the precedence rules between loose files and pack entries.
package assetindex

import (
	"context"
	"fmt"
	"hash/crc32"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/emirpasic/gods/maps/treemap"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/echotools/assetproxy/pkg/locator"
	"github.com/echotools/assetproxy/pkg/manifestmerge"
	"github.com/echotools/assetproxy/pkg/pack"
	"github.com/echotools/assetproxy/pkg/walker"
)

// DefaultConcurrency bounds fan-out during indexing when Options.Concurrency
// is unset.
const DefaultConcurrency = 8

// Options configures a Build call.
type Options struct {
	// ClientFolder is the root of the mirrored client installation.
	ClientFolder string
	// HTTPClient issues the manifest merger's remote GETs.
	HTTPClient *http.Client
	// Origin is the upstream server that owns the remote manifest
	// extensions this builder merges in.
	Origin *url.URL
	// Concurrency bounds concurrent pack reads and manifest fetches.
	// DefaultConcurrency is used when <= 0.
	Concurrency int
}

type looseEntry struct {
	key     string
	locator locator.Locator
}

type manifestEntry struct {
	dir  string
	pair manifestmerge.Pair
}

// Build walks opts.ClientFolder, reads every pack archive and merges every
// manifest pair concurrently, then folds everything into an Index per the
// precedence invariants in spec.md §3/§4.4: the loose-file pass (including
// synthesized manifest pairs) completes in full before pack entries fold
// in, and pack entries only fill keys the loose pass left absent.
func Build(ctx context.Context, opts Options) (*Index, error) {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}

	log := logrus.WithField("component", "assetindex")

	files, err := walker.Walk(opts.ClientFolder)
	if err != nil {
		return nil, fmt.Errorf("assetindex: walk %s: %w", opts.ClientFolder, err)
	}

	var packPaths []string
	var regularFiles []walker.File
	var manifestFiles []walker.File

	for _, f := range files {
		base := path.Base(f.RelPath)
		switch {
		case path.Ext(f.RelPath) == ".pack":
			packPaths = append(packPaths, f.AbsPath)
		case base == "manifest.txt":
			// Synthesized only; any literal copy on disk is ignored.
		case strings.HasSuffix(base, "_manifest.txt"):
			manifestFiles = append(manifestFiles, f)
		case strings.HasSuffix(base, "manifest.crc"):
			// The merger produces this; ignore any file already on disk.
		default:
			regularFiles = append(regularFiles, f)
		}
	}

	looseResults := make([]looseEntry, len(regularFiles))
	{
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(opts.Concurrency)
		for i, f := range regularFiles {
			i, f := i, f
			g.Go(func() error {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				crc, err := crc32File(f.AbsPath)
				if err != nil {
					return fmt.Errorf("assetindex: crc %s: %w", f.AbsPath, err)
				}
				looseResults[i] = looseEntry{
					key:     f.RelPath,
					locator: locator.LooseFile(f.AbsPath, f.Size, crc),
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	manifestResults := make([]manifestEntry, len(manifestFiles))
	if len(manifestFiles) > 0 {
		merger := manifestmerge.New(opts.HTTPClient, opts.Origin)
		g, _ := errgroup.WithContext(ctx)
		g.SetLimit(opts.Concurrency)
		for i, f := range manifestFiles {
			i, f := i, f
			g.Go(func() error {
				localBytes, err := os.ReadFile(f.AbsPath)
				if err != nil {
					return fmt.Errorf("assetindex: read %s: %w", f.AbsPath, err)
				}
				dir := path.Dir(f.RelPath)
				if dir == "." {
					dir = ""
				}
				manifestResults[i] = manifestEntry{
					dir:  dir,
					pair: merger.Merge(dir, localBytes),
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	tree := treemap.NewWithStringComparator()
	var stats Stats

	for _, le := range looseResults {
		tree.Put(le.key, le.locator)
		stats.LooseFiles++
		stats.TotalBytes += le.locator.Size
	}

	for _, me := range manifestResults {
		manifestKey := path.Join(me.dir, "manifest.txt")
		crcKey := path.Join(me.dir, "manifest.crc")
		manifestCRC := crc32.ChecksumIEEE(me.pair.ManifestBytes)

		tree.Put(manifestKey, locator.Memory(me.pair.ManifestBytes, manifestCRC))
		tree.Put(crcKey, locator.Memory(me.pair.CRCBytes, crc32.ChecksumIEEE(me.pair.CRCBytes)))
		stats.ManifestPairs++
		stats.TotalBytes += int64(len(me.pair.ManifestBytes) + len(me.pair.CRCBytes))
	}

	// Pack directories are read concurrently, but folded in original
	// discovery order so that precedence among packs is deterministic
	// regardless of which read finishes first (§3 invariant 3, §8
	// idempotent-indexing property).
	packEntries := make([][]pack.Entry, len(packPaths))
	{
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(opts.Concurrency)
		for i, p := range packPaths {
			i, p := i, p
			g.Go(func() error {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				f, err := os.Open(p)
				if err != nil {
					return fmt.Errorf("assetindex: open pack %s: %w", p, err)
				}
				defer f.Close()

				entries, err := pack.ReadDirectory(f)
				if err != nil {
					return fmt.Errorf("assetindex: read pack %s: %w", p, err)
				}
				packEntries[i] = entries
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	for i, entries := range packEntries {
		packPath := packPaths[i]
		for _, e := range entries {
			if _, found := tree.Get(e.Name); found {
				continue
			}
			tree.Put(e.Name, locator.Slice(packPath, int64(e.DataOffset), int64(e.Size), e.CRC))
			stats.PackSlices++
			stats.TotalBytes += int64(e.Size)
		}
	}

	idx := &Index{tree: tree, stats: stats}
	log.Infof("indexed %d assets (%d loose, %d pack, %d manifest pairs, %s)",
		idx.Len(), stats.LooseFiles, stats.PackSlices, stats.ManifestPairs, humanize.Bytes(uint64(stats.TotalBytes)))

	return idx, nil
}

func crc32File(path string) (uint32, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	h := crc32.NewIEEE()
	if _, err := io.Copy(h, f); err != nil {
		return 0, err
	}
	return h.Sum32(), nil
}
