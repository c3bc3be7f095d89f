package socket

import (
	"context"

	"github.com/jabolina/go-zmtp/internal/corezmtp"
	"github.com/jabolina/go-zmtp/zmtp"
)

// DEALER is the asynchronous counterpart of REQ: send is round-robin
// dispatched with any number of messages in flight, recv is
// fair-queued across every connected peer. No delimiter frame is added —
// DEALER speaks raw application frames.
type DEALER struct {
	*core
	dispatcher *corezmtp.Dispatcher
	fq         *corezmtp.FairQueue
}

// NewDEALER constructs an unbound, unconnected DEALER socket.
func NewDEALER(cfg zmtp.Config) (*DEALER, error) {
	c, err := newCore(zmtp.DEALER, cfg)
	if err != nil {
		return nil, err
	}
	return &DEALER{core: c, dispatcher: corezmtp.NewDispatcher(), fq: corezmtp.NewFairQueue()}, nil
}

func (s *DEALER) Bind(ctx context.Context, uri string) (string, error) { return s.bind(ctx, uri, s) }
func (s *DEALER) Unbind(uri string) error                              { return s.unbind(uri) }
func (s *DEALER) Connect(ctx context.Context, uri string) error        { return s.connect(ctx, uri, s) }
func (s *DEALER) Close() error                                         { return s.close(s) }

// Send round-robins the message, unmodified, to the next connected peer.
func (s *DEALER) Send(ctx context.Context, msg zmtp.ZmqMessage) error {
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

// Recv returns the next message fanned in from any connected peer.
func (s *DEALER) Recv(ctx context.Context) (zmtp.ZmqMessage, error) {
	r, ok := s.fq.Pull(ctx)
	if !ok {
		if err := ctx.Err(); err != nil {
			return zmtp.ZmqMessage{}, err
		}
		return zmtp.ZmqMessage{}, zmtp.ErrNoMessage
	}
	s.metrics.MessagesReceived.Inc()
	return zmtp.ZmqMessage{Frames: r.Message}, nil
}

func (s *DEALER) PeerConnected(id zmtp.PeerIdentity) *corezmtp.Peer {
	peer := s.reg.Insert(id, s.cfg.SendQueueSize, s.cfg.SendQueueSize)
	s.dispatcher.Push(id)
	s.fq.Insert(id, peer.Inbound)
	s.metrics.PeersConnected.Inc()
	return peer
}

func (s *DEALER) PeerDisconnected(id zmtp.PeerIdentity) {
	if _, ok := s.reg.Get(id); !ok {
		return
	}
	s.dispatcher.Remove(id)
	s.fq.Remove(id)
	s.reg.Remove(id)
	s.metrics.PeersConnected.Dec()
}

func (s *DEALER) MessageReceived(id zmtp.PeerIdentity, msg zmtp.Multipart) {
	peer, ok := s.reg.Get(id)
	if !ok {
		return
	}
	select {
	case peer.Inbound <- msg:
	case <-peer.Done():
	}
}

func (s *DEALER) SocketType() zmtp.SocketType { return zmtp.DEALER }

func (s *DEALER) Shutdown() {}
