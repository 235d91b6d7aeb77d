// Package response materializes an asset body from a locator, optionally
// wrapping it in the compressed envelope the client expects for ".z" URLs.
// It never mutates the index it reads locators from.
package response

import (
	"fmt"

	"github.com/echotools/assetproxy/pkg/envelope"
	"github.com/echotools/assetproxy/pkg/locator"
	"github.com/echotools/assetproxy/pkg/pack"
)

// Build materializes the body for loc, applying the compressed envelope
// when compress is true.
func Build(loc locator.Locator, compress bool) ([]byte, error) {
	body, err := readBody(loc)
	if err != nil {
		return nil, err
	}

	if !compress {
		return body, nil
	}

	wrapped, err := envelope.Encode(body)
	if err != nil {
		return nil, fmt.Errorf("response: wrap envelope: %w", err)
	}
	return wrapped, nil
}

func readBody(loc locator.Locator) ([]byte, error) {
	switch loc.Kind {
	case locator.KindMemory:
		body := make([]byte, len(loc.Memory))
		copy(body, loc.Memory)
		return body, nil
	case locator.KindSlice:
		body, err := pack.ReadSlice(loc.Path, loc.Offset, loc.Size)
		if err != nil {
			return nil, fmt.Errorf("response: read slice: %w", err)
		}
		return body, nil
	default:
		return nil, fmt.Errorf("response: unknown locator kind %d", loc.Kind)
	}
}
