package assetindex

import (
	"github.com/emirpasic/gods/maps/treemap"

	"github.com/echotools/assetproxy/pkg/locator"
)

// Stats summarizes what the builder found, for logging only. None of it
// is served over HTTP.
type Stats struct {
	LooseFiles    int
	PackSlices    int
	ManifestPairs int
	TotalBytes    int64
}

// Index is the immutable, concurrency-safe-for-reads asset map: built
// once at startup, read by every request handler thereafter. Backed by
// an ordered tree map so that iteration (stats logging, idempotency
// tests) is deterministic.
type Index struct {
	tree  *treemap.Map
	stats Stats
}

// Lookup returns the locator for key, if indexed.
func (idx *Index) Lookup(key string) (locator.Locator, bool) {
	v, found := idx.tree.Get(key)
	if !found {
		return locator.Locator{}, false
	}
	return v.(locator.Locator), true
}

// Len returns the number of indexed keys.
func (idx *Index) Len() int {
	return idx.tree.Size()
}

// Stats returns the index's build-time statistics.
func (idx *Index) Stats() Stats {
	return idx.stats
}

// Keys returns every indexed key in sorted order. Intended for tests and
// diagnostics, not the request path.
func (idx *Index) Keys() []string {
	raw := idx.tree.Keys()
	keys := make([]string, len(raw))
	for i, k := range raw {
		keys[i] = k.(string)
	}
	return keys
}
