package socket

import (
	"bytes"
	"context"
	"sync"

	"github.com/jabolina/go-zmtp/internal/corezmtp"
	"github.com/jabolina/go-zmtp/zmtp"
)

// SUB is PUB's symmetric counterpart: it manages the
// subscription protocol and fans in messages from every connected
// publisher through the fair queue. No local filtering is applied on
// receive — PUB already filtered by subscription before sending.
type SUB struct {
	*core
	fq *corezmtp.FairQueue

	mu   sync.Mutex
	subs [][]byte
}

// NewSUB constructs an unbound, unconnected SUB socket.
func NewSUB(cfg zmtp.Config) (*SUB, error) {
	c, err := newCore(zmtp.SUB, cfg)
	if err != nil {
		return nil, err
	}
	return &SUB{core: c, fq: corezmtp.NewFairQueue()}, nil
}

func (s *SUB) Bind(ctx context.Context, uri string) (string, error) { return s.bind(ctx, uri, s) }
func (s *SUB) Unbind(uri string) error                              { return s.unbind(uri) }
func (s *SUB) Connect(ctx context.Context, uri string) error        { return s.connect(ctx, uri, s) }
func (s *SUB) Close() error                                         { return s.close(s) }

// Recv pulls the next published message fanned in from any connected
// publisher.
func (s *SUB) Recv(ctx context.Context) (zmtp.ZmqMessage, error) {
	r, ok := s.fq.Pull(ctx)
	if !ok {
		if err := ctx.Err(); err != nil {
			return zmtp.ZmqMessage{}, err
		}
		return zmtp.ZmqMessage{}, zmtp.ErrNoMessage
	}
	s.metrics.MessagesReceived.Inc()
	if len(r.Message) == 0 {
		return zmtp.ZmqMessage{}, zmtp.ErrProtocol
	}
	return zmtp.ZmqMessage{Frames: zmtp.Multipart{r.Message[0]}}, nil
}

// Subscribe adds prefix to the local subscription list and notifies every
// connected publisher.
func (s *SUB) Subscribe(prefix []byte) {
	s.mu.Lock()
	s.subs = append(s.subs, append([]byte(nil), prefix...))
	s.mu.Unlock()
	s.broadcastControl(0x01, prefix)
}

// Unsubscribe removes the first matching prefix and notifies every
// connected publisher.
func (s *SUB) Unsubscribe(prefix []byte) {
	s.mu.Lock()
	for i, p := range s.subs {
		if bytes.Equal(p, prefix) {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	s.broadcastControl(0x00, prefix)
}

func (s *SUB) broadcastControl(kind byte, prefix []byte) {
	control := controlFrame(kind, prefix)
	for _, peer := range s.reg.Snapshot() {
		select {
		case peer.SendSink <- zmtp.Multipart{control}:
		default:
		}
	}
}

func controlFrame(kind byte, prefix []byte) zmtp.Frame {
	f := make(zmtp.Frame, 1+len(prefix))
	f[0] = kind
	copy(f[1:], prefix)
	return f
}

// PeerConnected registers a new PUB peer, joins it to the fair queue, and
// replays the full current subscription list to it so a PUB a SUB
// reconnects to learns what it is subscribed to.
func (s *SUB) PeerConnected(id zmtp.PeerIdentity) *corezmtp.Peer {
	peer := s.reg.Insert(id, s.cfg.SendQueueSize, s.cfg.SendQueueSize)
	s.fq.Insert(id, peer.Inbound)
	s.metrics.PeersConnected.Inc()

	s.mu.Lock()
	subs := append([][]byte(nil), s.subs...)
	s.mu.Unlock()
	for _, prefix := range subs {
		select {
		case peer.SendSink <- zmtp.Multipart{controlFrame(0x01, prefix)}:
		default:
		}
	}
	return peer
}

func (s *SUB) PeerDisconnected(id zmtp.PeerIdentity) {
	if _, ok := s.reg.Get(id); !ok {
		return
	}
	s.fq.Remove(id)
	s.reg.Remove(id)
	s.metrics.PeersConnected.Dec()
}

// MessageReceived feeds the peer's fair-queue source.
func (s *SUB) MessageReceived(id zmtp.PeerIdentity, msg zmtp.Multipart) {
	peer, ok := s.reg.Get(id)
	if !ok {
		return
	}
	select {
	case peer.Inbound <- msg:
	case <-peer.Done():
	}
}

func (s *SUB) SocketType() zmtp.SocketType { return zmtp.SUB }

func (s *SUB) Shutdown() {}
