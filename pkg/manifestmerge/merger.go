// Package manifestmerge fetches the remote counterpart of a local
// "*_manifest.txt" file and merges the two into the manifest pair the
// client actually looks up: "manifest.txt" and its derived "manifest.crc".
package manifestmerge

import (
	"hash/crc32"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/echotools/assetproxy/pkg/envelope"
)

// Pair is the two synthesized entries a merge produces, keyed at the same
// directory as the local manifest that triggered it.
type Pair struct {
	ManifestBytes []byte // published as "<dir>/manifest.txt"
	CRCBytes      []byte // published as "<dir>/manifest.crc"
}

// Merger fetches remote manifest extensions from an origin server.
type Merger struct {
	client *http.Client
	origin *url.URL
	log    *logrus.Entry
}

// New creates a Merger that issues requests against origin via client.
func New(client *http.Client, origin *url.URL) *Merger {
	return &Merger{
		client: client,
		origin: origin,
		log:    logrus.WithField("component", "manifestmerge"),
	}
}

// Merge produces the manifest pair for a local manifest discovered at
// dir/<base>_manifest.txt, where dir is the slash-separated directory the
// local file lives in (empty string for the root). localBytes is always
// contributed; the remote side is empty bytes if the fetch fails, the
// response status isn't 200, or the envelope can't be decoded.
func (m *Merger) Merge(dir string, localBytes []byte) Pair {
	remoteBytes := m.fetchRemote(dir)

	merged := make([]byte, 0, len(localBytes)+len(remoteBytes))
	merged = append(merged, localBytes...)
	merged = append(merged, remoteBytes...)

	crc := crc32.ChecksumIEEE(merged)
	return Pair{
		ManifestBytes: merged,
		CRCBytes:      []byte(strconv.FormatUint(uint64(crc), 10)),
	}
}

func (m *Merger) fetchRemote(dir string) []byte {
	remoteKey := path.Join(dir, "manifest.txt.z")

	reqURL := *m.origin
	reqURL.Path = path.Join(reqURL.Path, "/assets", remoteKey)

	resp, err := m.client.Get(reqURL.String())
	if err != nil {
		m.log.WithError(err).WithField("key", remoteKey).Debug("remote manifest fetch failed, using empty bytes")
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		m.log.WithField("key", remoteKey).WithField("status", resp.StatusCode).Debug("remote manifest not found, using empty bytes")
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		m.log.WithError(err).WithField("key", remoteKey).Debug("remote manifest read failed, using empty bytes")
		return nil
	}

	decoded, err := envelope.Decode(body)
	if err != nil {
		m.log.WithError(err).WithField("key", remoteKey).Debug("remote manifest envelope invalid, using empty bytes")
		return nil
	}

	return decoded
}
