package socket

import (
	"context"
	"sync"

	"github.com/jabolina/go-zmtp/internal/corezmtp"
	"github.com/jabolina/go-zmtp/internal/metrics"
	"github.com/jabolina/go-zmtp/zmtp"
)

type reqState int

const (
	reqReady reqState = iota
	reqAwaitingReply
)

// REQ implements the strict send/recv-alternating request socket:
// Ready -> AwaitingReply(p) -> Ready, round-robin dispatched over its
// connected REP/ROUTER peers.
type REQ struct {
	*core
	dispatcher *corezmtp.Dispatcher

	mu          sync.Mutex
	state       reqState
	currentPeer zmtp.PeerIdentity
	currentDone <-chan struct{}
	replies     chan zmtp.Multipart
}

// NewREQ constructs an unbound, unconnected REQ socket.
func NewREQ(cfg zmtp.Config) (*REQ, error) {
	c, err := newCore(zmtp.REQ, cfg)
	if err != nil {
		return nil, err
	}
	return &REQ{core: c, dispatcher: corezmtp.NewDispatcher(), replies: make(chan zmtp.Multipart, 1)}, nil
}

func (s *REQ) Bind(ctx context.Context, uri string) (string, error)  { return s.bind(ctx, uri, s) }
func (s *REQ) Unbind(uri string) error                               { return s.unbind(uri) }
func (s *REQ) Connect(ctx context.Context, uri string) error         { return s.connect(ctx, uri, s) }
func (s *REQ) Close() error                                          { return s.close(s) }

// Send picks the next peer round-robin, prepends the delimiter frame, and
// hands the two-frame message to that peer's send sink (capacity 1,
// naturally back-pressuring the caller until the previous exchange
// flushed).
func (s *REQ) Send(ctx context.Context, msg zmtp.ZmqMessage) error {
	s.mu.Lock()
	if s.state != reqReady {
		s.mu.Unlock()
		return zmtp.ReturnToSender("request already in progress", msg)
	}
	s.mu.Unlock()

	for {
		id, ok := s.dispatcher.Pop()
		if !ok {
			return zmtp.ErrNotConnected
		}
		peer, ok := s.reg.Get(id)
		if !ok {
			continue // stale dispatcher entry, peer already gone
		}

		frames := zmtp.WithDelimiter(msg.Bytes())
		select {
		case peer.SendSink <- frames:
		case <-peer.Done():
			continue // disconnected between Pop and send, try the next peer
		case <-ctx.Done():
			s.dispatcher.Push(id)
			return ctx.Err()
		}

		s.dispatcher.Push(id) // rotate to the tail for the next Send

		s.mu.Lock()
		s.state = reqAwaitingReply
		s.currentPeer = id
		s.currentDone = peer.Done()
		s.mu.Unlock()
		return nil
	}
}

// Recv waits for the reply to the outstanding request.
func (s *REQ) Recv(ctx context.Context) (zmtp.ZmqMessage, error) {
	s.mu.Lock()
	if s.state != reqAwaitingReply {
		s.mu.Unlock()
		return zmtp.ZmqMessage{}, zmtp.Other("no request in progress")
	}
	done := s.currentDone
	s.mu.Unlock()

	select {
	case frames := <-s.replies:
		body, ok := zmtp.StripDelimiter(frames)
		s.mu.Lock()
		s.state = reqReady
		s.mu.Unlock()
		if !ok {
			return zmtp.ZmqMessage{}, zmtp.Other("wrong message type")
		}
		return zmtp.ZmqMessage{Frames: zmtp.Multipart{body}}, nil
	case <-done:
		s.mu.Lock()
		s.state = reqReady
		s.mu.Unlock()
		return zmtp.ZmqMessage{}, zmtp.Other("server disconnected")
	case <-ctx.Done():
		return zmtp.ZmqMessage{}, ctx.Err()
	}
}

// PeerConnected registers a new REP/ROUTER peer and adds it to the
// round-robin dispatcher.
func (s *REQ) PeerConnected(id zmtp.PeerIdentity) *corezmtp.Peer {
	peer := s.reg.Insert(id, 1, 0)
	s.dispatcher.Push(id)
	s.metrics.PeersConnected.Inc()
	return peer
}

// PeerDisconnected drops id from the dispatcher and registry.
func (s *REQ) PeerDisconnected(id zmtp.PeerIdentity) {
	s.dispatcher.Remove(id)
	s.reg.Remove(id)
	s.metrics.PeersConnected.Dec()
}

// MessageReceived only accepts replies from the peer the outstanding
// request was sent to; everything else is a stray/out-of-order reply and
// is silently discarded per ZMTP REQ conformance.
func (s *REQ) MessageReceived(id zmtp.PeerIdentity, msg zmtp.Multipart) {
	s.mu.Lock()
	expect := s.state == reqAwaitingReply && s.currentPeer == id
	s.mu.Unlock()
	if !expect {
		return
	}
	select {
	case s.replies <- msg:
		s.metrics.MessagesReceived.Inc()
	default:
		// Recv already moved on (shutdown/cancellation race); drop.
		s.metrics.MessagesDropped.WithLabelValues(metrics.ReasonStrayReply).Inc()
	}
}

func (s *REQ) SocketType() zmtp.SocketType { return zmtp.REQ }

// Shutdown is a no-op beyond what core.close already does; REQ holds no
// state outside the registry/dispatcher core.close tears down.
func (s *REQ) Shutdown() {}
