package socket

import (
	"context"
	"sync"

	"github.com/jabolina/go-zmtp/internal/corezmtp"
	"github.com/jabolina/go-zmtp/zmtp"
)

type repState int

const (
	repReady repState = iota
	repHolding
)

// REP implements the strict recv/send-alternating reply socket:
// Ready -> Holding(p) -> Ready, fair-queued across every connected
// REQ/DEALER peer.
type REP struct {
	*core
	fq *corezmtp.FairQueue

	mu          sync.Mutex
	state       repState
	currentPeer zmtp.PeerIdentity
}

// NewREP constructs an unbound, unconnected REP socket.
func NewREP(cfg zmtp.Config) (*REP, error) {
	c, err := newCore(zmtp.REP, cfg)
	if err != nil {
		return nil, err
	}
	return &REP{core: c, fq: corezmtp.NewFairQueue()}, nil
}

func (s *REP) Bind(ctx context.Context, uri string) (string, error) { return s.bind(ctx, uri, s) }
func (s *REP) Unbind(uri string) error                              { return s.unbind(uri) }
func (s *REP) Connect(ctx context.Context, uri string) error        { return s.connect(ctx, uri, s) }
func (s *REP) Close() error                                         { return s.close(s) }

// Recv pulls the next request from the fair queue, validating the
// delimiter+body shape. A malformed message is a protocol error: the
// offending peer is disconnected and Recv keeps waiting on the rest.
func (s *REP) Recv(ctx context.Context) (zmtp.ZmqMessage, error) {
	for {
		r, ok := s.fq.Pull(ctx)
		if !ok {
			if err := ctx.Err(); err != nil {
				return zmtp.ZmqMessage{}, err
			}
			return zmtp.ZmqMessage{}, zmtp.ErrNoMessage
		}

		body, ok := zmtp.StripDelimiter(r.Message)
		if !ok {
			s.PeerDisconnected(r.Peer)
			continue
		}

		s.metrics.MessagesReceived.Inc()
		s.mu.Lock()
		s.state = repHolding
		s.currentPeer = r.Peer
		s.mu.Unlock()
		return zmtp.ZmqMessage{Frames: zmtp.Multipart{body}}, nil
	}
}

// Send replies to the peer Recv last returned a request from.
func (s *REP) Send(ctx context.Context, msg zmtp.ZmqMessage) error {
	s.mu.Lock()
	if s.state != repHolding {
		s.mu.Unlock()
		return zmtp.ReturnToSender("no request in progress", msg)
	}
	peerID := s.currentPeer
	s.mu.Unlock()

	peer, ok := s.reg.Get(peerID)
	if !ok {
		s.mu.Lock()
		s.state = repReady
		s.mu.Unlock()
		return zmtp.ReturnToSender("client disconnected", msg)
	}

	frames := zmtp.WithDelimiter(msg.Bytes())
	select {
	case peer.SendSink <- frames:
	case <-peer.Done():
		s.mu.Lock()
		s.state = repReady
		s.mu.Unlock()
		return zmtp.ReturnToSender("client disconnected", msg)
	case <-ctx.Done():
		return ctx.Err()
	}

	s.metrics.MessagesSent.Inc()
	s.mu.Lock()
	s.state = repReady
	s.mu.Unlock()
	return nil
}

// PeerConnected registers a new REQ/DEALER peer and joins it to the fair
// queue.
func (s *REP) PeerConnected(id zmtp.PeerIdentity) *corezmtp.Peer {
	peer := s.reg.Insert(id, 1, s.cfg.SendQueueSize)
	s.fq.Insert(id, peer.Inbound)
	s.metrics.PeersConnected.Inc()
	return peer
}

// PeerDisconnected is idempotent: the registry miss guard lets both the
// engine's natural disconnect path and REP's own protocol-violation path
// call it without double-counting.
func (s *REP) PeerDisconnected(id zmtp.PeerIdentity) {
	if _, ok := s.reg.Get(id); !ok {
		return
	}
	s.fq.Remove(id)
	s.reg.Remove(id)
	s.metrics.PeersConnected.Dec()
}

// MessageReceived feeds the peer's fair-queue source, respecting the
// peer's close signal so a disconnect never leaves the read pump blocked
// on a full Inbound channel.
func (s *REP) MessageReceived(id zmtp.PeerIdentity, msg zmtp.Multipart) {
	peer, ok := s.reg.Get(id)
	if !ok {
		return
	}
	select {
	case peer.Inbound <- msg:
	case <-peer.Done():
	}
}

func (s *REP) SocketType() zmtp.SocketType { return zmtp.REP }

func (s *REP) Shutdown() {}
