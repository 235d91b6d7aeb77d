// Package proxyhttp implements the single HTTP route the proxy exposes:
// GET /assets/{asset...}. It decodes the request, serves locally on a hit,
// and transparently forwards everything else to the origin.
package proxyhttp

import (
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/echotools/assetproxy/pkg/assetindex"
	"github.com/echotools/assetproxy/pkg/response"
	"github.com/echotools/assetproxy/pkg/urlcodec"
)

// Handler serves the /assets/ route against an Index, falling back to an
// origin server for anything it can't (or shouldn't) resolve locally.
type Handler struct {
	index  *assetindex.Index
	client *http.Client
	origin *url.URL
	log    *logrus.Entry
}

// NewHandler builds a Handler. client issues the upstream fallback
// requests; origin is the authoritative server for assets not
// resolvable locally.
func NewHandler(index *assetindex.Index, client *http.Client, origin *url.URL) *Handler {
	return &Handler{
		index:  index,
		client: client,
		origin: origin,
		log:    logrus.WithField("component", "proxyhttp"),
	}
}

// RegisterRoutes registers the handler's single route on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /assets/{asset...}", h.handleAsset)
}

func (h *Handler) handleAsset(w http.ResponseWriter, r *http.Request) {
	decoded, err := urlcodec.Decode(r.PathValue("asset"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if loc, found := h.index.Lookup(decoded.Key); found {
		if decoded.QueriedCRC == nil || *decoded.QueriedCRC == loc.CRC {
			body, err := response.Build(loc, decoded.Compress)
			if err == nil {
				// Content type is deliberately left unset: the client
				// accepts raw bytes and does not inspect it.
				w.WriteHeader(http.StatusOK)
				w.Write(body)
				return
			}
			h.log.WithError(err).WithField("key", decoded.Key).Debug("local read failed, falling back to upstream")
		}
	}

	h.proxyUpstream(w, r)
}

func (h *Handler) proxyUpstream(w http.ResponseWriter, r *http.Request) {
	tail := strings.TrimPrefix(r.URL.EscapedPath(), "/assets/")

	upstreamURL := strings.TrimRight(h.origin.String(), "/") + "/assets/" + tail
	if r.URL.RawQuery != "" {
		upstreamURL += "?" + r.URL.RawQuery
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, upstreamURL, nil)
	if err != nil {
		h.log.WithError(err).Error("failed to build upstream request")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	resp, err := h.client.Do(req)
	if err != nil {
		h.log.WithError(err).WithField("url", upstreamURL).Debug("upstream request failed")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	defer resp.Body.Close()

	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		h.log.WithError(err).Debug("failed to stream upstream body to client")
	}
}
