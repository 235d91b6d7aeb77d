// Package urlcodec decodes the path tail of an asset request into an
// asset key plus the compression/CRC hints the client encoded into it.
//
// The four transformations below compose in a fixed order: name-hash
// prefix, then path-normality validation, then CRC-suffix split, then
// ".z" suffix strip. Reordering them silently changes the set of valid
// URLs, so the order is part of the contract, not an implementation
// detail.
//
// Steps 3 and 4 both key off the last component's extension in the same
// sense as Rust's Path::extension: the text strictly after the final '.'
// in the component, or no extension at all when the component has no
// '.' (or starts with one and has no other). A component with no
// extension never gets CRC-split or treated as compressed, matching the
// client encoder this decoder mirrors.
package urlcodec

import (
	"errors"
	"strconv"
	"strings"
)

// ErrBadPath reports a URL whose path contains a non-normal component
// (".", "..", an empty segment, or a drive/UNC-style marker) or that
// decodes to an empty key.
var ErrBadPath = errors.New("urlcodec: bad path")

// Decoded is the result of decoding an asset request path.
type Decoded struct {
	// Key is the relative asset path with no shard prefix, no CRC
	// suffix, and no ".z" suffix.
	Key string
	// Compress is true if the URL's terminal extension was ".z".
	Compress bool
	// QueriedCRC is the CRC the client encoded into the URL, if any.
	QueriedCRC *uint32
}

// Decode parses rawPath, the tail matched by "GET /assets/{asset...}"
// (already percent-decoded by net/http), per spec.md §4.5.
func Decode(rawPath string) (Decoded, error) {
	rawPath = strings.TrimPrefix(rawPath, "/")
	if rawPath == "" {
		return Decoded{}, ErrBadPath
	}

	parts := strings.Split(rawPath, "/")

	// 1. Drop a 3-digit decimal shard prefix, if present.
	if len(parts[0]) == 3 {
		if n, err := strconv.Atoi(parts[0]); err == nil && n >= 0 && n <= 65535 {
			parts = parts[1:]
		}
	}
	if len(parts) == 0 {
		return Decoded{}, ErrBadPath
	}

	// 2. Every remaining component must be normal.
	for _, c := range parts {
		if !isNormal(c) {
			return Decoded{}, ErrBadPath
		}
	}

	// 3. Split the rightmost '_' within the last component's extension
	// (not the whole component) off as a queried CRC.
	last := parts[len(parts)-1]
	var queriedCRC *uint32
	if ext, ok := extension(last); ok {
		if idx := strings.LastIndexByte(ext, '_'); idx >= 0 {
			left, right := ext[:idx], ext[idx+1:]
			if n, err := strconv.ParseUint(right, 10, 32); err == nil {
				crc := uint32(n)
				queriedCRC = &crc
				last = withExtension(last, left)
			}
		}
	}

	// 4. If the (possibly CRC-stripped) component's extension is "z",
	// mark the body as compressed and strip it.
	compress := false
	if ext, ok := extension(last); ok && ext == "z" {
		compress = true
		last = withExtension(last, "")
	}
	parts[len(parts)-1] = last

	key := strings.Join(parts, "/")
	if key == "" {
		return Decoded{}, ErrBadPath
	}

	return Decoded{Key: key, Compress: compress, QueriedCRC: queriedCRC}, nil
}

// isNormal reports whether a single path component is a plain name: not
// empty, not "." or "..", and free of drive-letter or separator
// characters that would let it escape the component it occupies.
func isNormal(c string) bool {
	if c == "" || c == "." || c == ".." {
		return false
	}
	return !strings.ContainsAny(c, `\:`)
}

// extension mirrors Rust's Path::extension: the text after the final '.'
// in name, or ok == false when name has no '.', or the '.' is the first
// character with no other '.' before it (a dotfile with no extension).
func extension(name string) (ext string, ok bool) {
	idx := strings.LastIndexByte(name, '.')
	if idx <= 0 {
		return "", false
	}
	return name[idx+1:], true
}

// withExtension mirrors Rust's Path::with_extension: replaces the text
// after name's final '.' with newExt, dropping the dot entirely when
// newExt is empty. Only called when extension(name) already reported an
// extension, so name is guaranteed to contain a non-leading '.'.
func withExtension(name, newExt string) string {
	stem := name[:strings.LastIndexByte(name, '.')]
	if newExt == "" {
		return stem
	}
	return stem + "." + newExt
}
