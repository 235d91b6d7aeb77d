// Package supervisor owns the lifecycle of one running proxy instance:
// building the asset index, binding the listener, and serving requests
// until asked to stop. This is the construction contract an embedding
// host (or cmd/assetproxy) drives directly.
package supervisor

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/echotools/assetproxy/pkg/assetindex"
	"github.com/echotools/assetproxy/pkg/proxyhttp"
)

// Options configures a Supervisor.
type Options struct {
	// Port is the TCP port to bind on 127.0.0.1. 0 picks an ephemeral
	// port, readable afterwards via Supervisor.Addr.
	Port int
	// ClientFolder is the root of the mirrored client installation.
	ClientFolder string
	// Origin is the upstream server that owns everything the local
	// index can't resolve.
	Origin *url.URL
	// HTTPClient issues upstream requests. http.DefaultClient is used
	// if nil.
	HTTPClient *http.Client
	// IndexConcurrency bounds the asset index build's fan-out.
	// assetindex.DefaultConcurrency is used if <= 0.
	IndexConcurrency int
}

// Supervisor is a running proxy instance.
type Supervisor struct {
	listener net.Listener
	server   *http.Server
	index    *assetindex.Index
	log      *logrus.Entry
	done     chan error
}

// New builds the asset index and binds the listener but does not yet
// accept connections; call Serve to start handling requests.
func New(ctx context.Context, opts Options) (*Supervisor, error) {
	client := opts.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	log := logrus.WithField("component", "supervisor")

	idx, err := assetindex.Build(ctx, assetindex.Options{
		ClientFolder: opts.ClientFolder,
		HTTPClient:   client,
		Origin:       opts.Origin,
		Concurrency:  opts.IndexConcurrency,
	})
	if err != nil {
		return nil, fmt.Errorf("supervisor: build index: %w", err)
	}

	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", opts.Port))
	if err != nil {
		return nil, fmt.Errorf("supervisor: listen: %w", err)
	}

	mux := http.NewServeMux()
	proxyhttp.NewHandler(idx, client, opts.Origin).RegisterRoutes(mux)

	return &Supervisor{
		listener: ln,
		server:   &http.Server{Handler: mux},
		index:    idx,
		log:      log,
		done:     make(chan error, 1),
	}, nil
}

// Addr returns the bound listener address, including the resolved port
// when Options.Port was 0.
func (s *Supervisor) Addr() net.Addr {
	return s.listener.Addr()
}

// Index returns the asset index this instance serves from, primarily
// for tests and diagnostics.
func (s *Supervisor) Index() *assetindex.Index {
	return s.index
}

// Serve accepts connections until Shutdown is called or the server
// fails. It blocks; run it in its own goroutine.
func (s *Supervisor) Serve() error {
	s.log.WithField("addr", s.listener.Addr().String()).Infof(
		"serving %d assets", s.index.Len())

	err := s.server.Serve(s.listener)
	if err == http.ErrServerClosed {
		err = nil
	}
	s.done <- err
	return err
}

// Shutdown gracefully stops the server, waiting up to ctx's deadline
// for in-flight requests to finish.
func (s *Supervisor) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// ShutdownTimeout is how long cmd/assetproxy waits on SIGINT/SIGTERM for
// in-flight requests to finish before Shutdown gives up with an error.
const ShutdownTimeout = 10 * time.Second
