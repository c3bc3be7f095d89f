package socket

import (
	"context"

	"github.com/jabolina/go-zmtp/internal/corezmtp"
	"github.com/jabolina/go-zmtp/zmtp"
)

// PULL is the recv-only half of the pipeline pattern: fair-queued across
// every connected PUSH peer, symmetric to REP's recv path but with no
// reply obligation.
type PULL struct {
	*core
	fq *corezmtp.FairQueue
}

// NewPULL constructs an unbound, unconnected PULL socket.
func NewPULL(cfg zmtp.Config) (*PULL, error) {
	c, err := newCore(zmtp.PULL, cfg)
	if err != nil {
		return nil, err
	}
	return &PULL{core: c, fq: corezmtp.NewFairQueue()}, nil
}

func (s *PULL) Bind(ctx context.Context, uri string) (string, error) { return s.bind(ctx, uri, s) }
func (s *PULL) Unbind(uri string) error                              { return s.unbind(uri) }
func (s *PULL) Connect(ctx context.Context, uri string) error        { return s.connect(ctx, uri, s) }
func (s *PULL) Close() error                                         { return s.close(s) }

// Recv pulls the next message fanned in from any connected PUSH peer.
func (s *PULL) Recv(ctx context.Context) (zmtp.ZmqMessage, error) {
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

func (s *PULL) PeerConnected(id zmtp.PeerIdentity) *corezmtp.Peer {
	peer := s.reg.Insert(id, 1, s.cfg.SendQueueSize)
	s.fq.Insert(id, peer.Inbound)
	s.metrics.PeersConnected.Inc()
	return peer
}

func (s *PULL) PeerDisconnected(id zmtp.PeerIdentity) {
	if _, ok := s.reg.Get(id); !ok {
		return
	}
	s.fq.Remove(id)
	s.reg.Remove(id)
	s.metrics.PeersConnected.Dec()
}

func (s *PULL) MessageReceived(id zmtp.PeerIdentity, msg zmtp.Multipart) {
	peer, ok := s.reg.Get(id)
	if !ok {
		return
	}
	select {
	case peer.Inbound <- msg:
	case <-peer.Done():
	}
}

func (s *PULL) SocketType() zmtp.SocketType { return zmtp.PULL }

func (s *PULL) Shutdown() {}
