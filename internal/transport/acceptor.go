package transport

import (
	"context"
	"errors"
	"net"
	"os"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/jabolina/go-zmtp/zmtp"
)

// Acceptor owns the accept loop for one (endpoint, socket) bind. Closing
// it shuts the acceptor down and closes the connection stream.
type Acceptor struct {
	listener net.Listener
	conns    chan net.Conn
	group    *errgroup.Group
	cancel   context.CancelFunc
}

// Conns is an ordered sequence of accepted byte-stream connections,
// closed when the acceptor shuts down.
func (a *Acceptor) Conns() <-chan net.Conn {
	return a.conns
}

// Addr is the concrete, resolved local address (reflecting an OS-assigned
// port when the endpoint asked for port 0).
func (a *Acceptor) Addr() net.Addr {
	return a.listener.Addr()
}

// Close stops accepting new connections and waits for the accept loop to
// exit.
func (a *Acceptor) Close() error {
	a.cancel()
	err := a.listener.Close()
	_ = a.group.Wait()
	return err
}

// Bind starts an Acceptor for the given endpoint, returning the endpoint
// resolved with the concrete bound port/path. logger receives an Error-level
// line for any Accept failure that isn't just the acceptor shutting down.
func Bind(ctx context.Context, ep Endpoint, backlog int, logger zmtp.Logger) (Endpoint, *Acceptor, error) {
	if ep.Scheme == SchemeIPC {
		_ = os.Remove(ep.Path)
	}
	ln, err := net.Listen(ep.Network(), ep.Address())
	if err != nil {
		return Endpoint{}, nil, classifyListenError(err)
	}

	resolved := resolveEndpoint(ep, ln.Addr())

	acceptCtx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(acceptCtx)
	a := &Acceptor{
		listener: ln,
		conns:    make(chan net.Conn, backlog),
		group:    g,
		cancel:   cancel,
	}

	g.Go(func() error {
		defer close(a.conns)
		for {
			conn, err := ln.Accept()
			if err != nil {
				if gctx.Err() != nil {
					return nil
				}
				logger.Errorf("transport: accept on %s failed: %v", resolved, err)
				return err
			}
			select {
			case a.conns <- conn:
			case <-gctx.Done():
				_ = conn.Close()
				return nil
			}
		}
	})

	return resolved, a, nil
}

func resolveEndpoint(ep Endpoint, addr net.Addr) Endpoint {
	if ep.Scheme == SchemeIPC {
		return ep
	}
	if tcpAddr, ok := addr.(*net.TCPAddr); ok {
		ep.Port = tcpAddr.Port
		if ep.Host == "*" || ep.Host == "" {
			ep.Host = tcpAddr.IP.String()
		}
	}
	return ep
}

// Connect dials a single connection to the endpoint. The caller is
// responsible for bounding ctx with Config.DialTimeout.
func Connect(ctx context.Context, ep Endpoint) (net.Conn, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, ep.Network(), ep.Address())
	if err != nil {
		return nil, classifyDialError(err)
	}
	return conn, nil
}

func classifyListenError(err error) error {
	if errors.Is(err, syscall.EADDRINUSE) {
		return zmtp.ErrAddrInUse
	}
	if errors.Is(err, syscall.EADDRNOTAVAIL) {
		return zmtp.ErrAddrNotAvailable
	}
	return wrapIO(err)
}

func classifyDialError(err error) error {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return zmtp.ErrConnectionRefused
	}
	if errors.Is(err, syscall.EADDRNOTAVAIL) {
		return zmtp.ErrAddrNotAvailable
	}
	var netErr net.Error
	if errors.As(err, &netErr) && strings.Contains(netErr.Error(), "no such host") {
		return zmtp.ErrAddrNotAvailable
	}
	return wrapIO(err)
}

func wrapIO(err error) error {
	return &zmtp.Error{Kind: zmtp.KindIO, Reason: "transport", Err: err}
}
