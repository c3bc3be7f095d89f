package socket

import (
	"context"

	"github.com/jabolina/go-zmtp/internal/corezmtp"
	"github.com/jabolina/go-zmtp/zmtp"
)

// PUSH is the send-only, round-robin half of the pipeline pattern:
// identical dispatch to REQ, but with no reply half and no
// single-outstanding-request constraint.
type PUSH struct {
	*core
	dispatcher *corezmtp.Dispatcher
}

// NewPUSH constructs an unbound, unconnected PUSH socket.
func NewPUSH(cfg zmtp.Config) (*PUSH, error) {
	c, err := newCore(zmtp.PUSH, cfg)
	if err != nil {
		return nil, err
	}
	return &PUSH{core: c, dispatcher: corezmtp.NewDispatcher()}, nil
}

func (s *PUSH) Bind(ctx context.Context, uri string) (string, error) { return s.bind(ctx, uri, s) }
func (s *PUSH) Unbind(uri string) error                              { return s.unbind(uri) }
func (s *PUSH) Connect(ctx context.Context, uri string) error        { return s.connect(ctx, uri, s) }
func (s *PUSH) Close() error                                         { return s.close(s) }

// Send round-robins across connected PULL peers, blocking until the
// chosen peer's send sink has room or ctx is cancelled.
func (s *PUSH) Send(ctx context.Context, msg zmtp.ZmqMessage) error {
	frames := zmtp.Multipart(msg.Frames)
	for {
		id, ok := s.dispatcher.Pop()
		if !ok {
			return zmtp.ErrNotConnected
		}
		peer, ok := s.reg.Get(id)
		if !ok {
			continue
		}
		select {
		case peer.SendSink <- frames:
			s.dispatcher.Push(id)
			s.metrics.MessagesSent.Inc()
			return nil
		case <-peer.Done():
			continue
		case <-ctx.Done():
			s.dispatcher.Push(id)
			return ctx.Err()
		}
	}
}

func (s *PUSH) PeerConnected(id zmtp.PeerIdentity) *corezmtp.Peer {
	peer := s.reg.Insert(id, s.cfg.SendQueueSize, 0)
	s.dispatcher.Push(id)
	s.metrics.PeersConnected.Inc()
	return peer
}

func (s *PUSH) PeerDisconnected(id zmtp.PeerIdentity) {
	if _, ok := s.reg.Get(id); !ok {
		return
	}
	s.dispatcher.Remove(id)
	s.reg.Remove(id)
	s.metrics.PeersConnected.Dec()
}

// MessageReceived is unreachable under normal ZMTP PUSH semantics (PUSH
// peers never write application frames back); any stray bytes are dropped.
func (s *PUSH) MessageReceived(zmtp.PeerIdentity, zmtp.Multipart) {}

func (s *PUSH) SocketType() zmtp.SocketType { return zmtp.PUSH }

func (s *PUSH) Shutdown() {}
