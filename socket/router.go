package socket

import (
	"context"

	"github.com/jabolina/go-zmtp/internal/corezmtp"
	"github.com/jabolina/go-zmtp/zmtp"
)

// ROUTER addresses peers explicitly rather than load-balancing: recv
// prepends the sending peer's identity as an envelope frame; send
// requires the outgoing message's first frame to be that identity and
// routes directly to its send sink.
type ROUTER struct {
	*core
	fq *corezmtp.FairQueue
}

// NewROUTER constructs an unbound, unconnected ROUTER socket.
func NewROUTER(cfg zmtp.Config) (*ROUTER, error) {
	c, err := newCore(zmtp.ROUTER, cfg)
	if err != nil {
		return nil, err
	}
	return &ROUTER{core: c, fq: corezmtp.NewFairQueue()}, nil
}

func (s *ROUTER) Bind(ctx context.Context, uri string) (string, error) { return s.bind(ctx, uri, s) }
func (s *ROUTER) Unbind(uri string) error                              { return s.unbind(uri) }
func (s *ROUTER) Connect(ctx context.Context, uri string) error        { return s.connect(ctx, uri, s) }
func (s *ROUTER) Close() error                                         { return s.close(s) }

// Send requires msg's first frame to be a 16-byte PeerIdentity envelope
// identifying the destination; an unknown or malformed envelope fails
// NotConnected/ProtocolError rather than being silently dropped.
func (s *ROUTER) Send(ctx context.Context, msg zmtp.ZmqMessage) error {
	if len(msg.Frames) < 2 {
		return zmtp.ErrProtocol
	}
	dest, ok := zmtp.PeerIdentityFromBytes(msg.Frames[0])
	if !ok {
		return zmtp.ErrProtocol
	}
	peer, ok := s.reg.Get(dest)
	if !ok {
		return zmtp.ErrNotConnected
	}

	body := zmtp.Multipart(msg.Frames[1:])
	select {
	case peer.SendSink <- body:
		s.metrics.MessagesSent.Inc()
		return nil
	case <-peer.Done():
		return zmtp.ErrNotConnected
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Recv returns the next fanned-in message with the sending peer's
// identity prepended as an envelope frame.
func (s *ROUTER) Recv(ctx context.Context) (zmtp.ZmqMessage, error) {
	r, ok := s.fq.Pull(ctx)
	if !ok {
		if err := ctx.Err(); err != nil {
			return zmtp.ZmqMessage{}, err
		}
		return zmtp.ZmqMessage{}, zmtp.ErrNoMessage
	}
	s.metrics.MessagesReceived.Inc()
	frames := make(zmtp.Multipart, 0, len(r.Message)+1)
	frames = append(frames, zmtp.Frame(r.Peer.Bytes()))
	frames = append(frames, r.Message...)
	return zmtp.ZmqMessage{Frames: frames}, nil
}

func (s *ROUTER) PeerConnected(id zmtp.PeerIdentity) *corezmtp.Peer {
	peer := s.reg.Insert(id, s.cfg.SendQueueSize, s.cfg.SendQueueSize)
	s.fq.Insert(id, peer.Inbound)
	s.metrics.PeersConnected.Inc()
	return peer
}

func (s *ROUTER) PeerDisconnected(id zmtp.PeerIdentity) {
	if _, ok := s.reg.Get(id); !ok {
		return
	}
	s.fq.Remove(id)
	s.reg.Remove(id)
	s.metrics.PeersConnected.Dec()
}

func (s *ROUTER) MessageReceived(id zmtp.PeerIdentity, msg zmtp.Multipart) {
	peer, ok := s.reg.Get(id)
	if !ok {
		return
	}
	select {
	case peer.Inbound <- msg:
	case <-peer.Done():
	}
}

func (s *ROUTER) SocketType() zmtp.SocketType { return zmtp.ROUTER }

func (s *ROUTER) Shutdown() {}
