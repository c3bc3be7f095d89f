// Package socket implements the eight ZMTP socket personalities (REQ, REP,
// PUB, SUB, DEALER, ROUTER, PUSH, PULL) on top of internal/corezmtp's
// shared registry/fair-queue/dispatcher runtime and internal/transport's
// TCP/IPC acceptors.
package socket

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/jabolina/go-zmtp/internal/corezmtp"
	"github.com/jabolina/go-zmtp/internal/metrics"
	"github.com/jabolina/go-zmtp/internal/transport"
	"github.com/jabolina/go-zmtp/logging"
	"github.com/jabolina/go-zmtp/zmtp"
)

// core bundles the state every personality needs regardless of its send/
// recv shape: the peer registry, the invoker tracking per-peer I/O
// goroutines, the bind acceptors, and the socket's metrics. Personalities
// embed core and additionally hold a *corezmtp.FairQueue and/or
// *corezmtp.Dispatcher as their send/recv shape requires.
type core struct {
	typ     zmtp.SocketType
	cfg     zmtp.Config
	reg     *corezmtp.Registry
	invoker corezmtp.Invoker
	metrics *metrics.Socket

	mu        sync.Mutex
	acceptors map[string]*transport.Acceptor
	closed    bool
}

func newCore(typ zmtp.SocketType, cfg zmtp.Config) (*core, error) {
	if cfg.Logger == nil {
		cfg.Logger = logging.NewDefault()
	}
	cfg = cfg.WithDefaults()
	m, err := metrics.NewSocket(cfg.Registerer, typ.String(), uuid.NewString())
	if err != nil {
		return nil, err
	}
	return &core{
		typ:       typ,
		cfg:       cfg,
		reg:       corezmtp.NewRegistry(),
		invoker:   corezmtp.NewInvoker(),
		metrics:   m,
		acceptors: make(map[string]*transport.Acceptor),
	}, nil
}

// bind starts an acceptor for uri and, for every accepted connection, runs
// the ZMTP handshake and registers it with backend through corezmtp.RunPeer.
// It returns the resolved URI (port 0 becomes the OS-assigned port).
func (c *core) bind(ctx context.Context, uri string, backend corezmtp.Backend) (string, error) {
	ep, err := transport.ParseEndpoint(uri)
	if err != nil {
		return "", err
	}

	resolved, acceptor, err := transport.Bind(ctx, ep, c.cfg.AcceptBacklog, c.cfg.Logger)
	if err != nil {
		return "", err
	}

	resolvedURI := resolved.String()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		_ = acceptor.Close()
		return "", zmtp.Other("socket is closed")
	}
	c.acceptors[resolvedURI] = acceptor
	c.mu.Unlock()

	c.invoker.Spawn(func() {
		for conn := range acceptor.Conns() {
			corezmtp.RunPeer(conn, backend, c.invoker, c.cfg.Logger)
		}
	})

	return resolvedURI, nil
}

// unbind stops the acceptor bound to uri. Fails NoSuchBind if uri was never
// bound (or was already unbound).
func (c *core) unbind(uri string) error {
	c.mu.Lock()
	acceptor, ok := c.acceptors[uri]
	if ok {
		delete(c.acceptors, uri)
	}
	c.mu.Unlock()
	if !ok {
		return zmtp.ErrNoSuchBind
	}
	return acceptor.Close()
}

// connect dials a single connection to uri and starts the ZMTP handshake
// against backend. It returns once the dial succeeds; the greeting and
// the backend's PeerConnected run afterwards on an invoker goroutine, so
// the peer is not yet registered when connect returns.
func (c *core) connect(ctx context.Context, uri string, backend corezmtp.Backend) error {
	ep, err := transport.ParseEndpoint(uri)
	if err != nil {
		return err
	}

	dialCtx, cancel := context.WithTimeout(ctx, c.cfg.DialTimeout)
	defer cancel()

	conn, err := transport.Connect(dialCtx, ep)
	if err != nil {
		return err
	}

	c.invoker.Spawn(func() {
		corezmtp.RunPeer(conn, backend, c.invoker, c.cfg.Logger)
	})
	return nil
}

// close tears down every acceptor, shuts backend down (releasing
// personality-specific state), clears the registry (firing every peer's
// close signal), and waits for all per-peer I/O goroutines to exit.
func (c *core) close(backend corezmtp.Backend) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	acceptors := c.acceptors
	c.acceptors = nil
	c.mu.Unlock()

	var firstErr error
	for uri, a := range acceptors {
		if err := a.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("socket: closing acceptor %s: %w", uri, err)
		}
	}

	backend.Shutdown()
	c.reg.Clear()
	c.invoker.Stop()
	return firstErr
}
