package socket

import (
	"bytes"
	"context"

	"github.com/jabolina/go-zmtp/internal/corezmtp"
	"github.com/jabolina/go-zmtp/internal/metrics"
	"github.com/jabolina/go-zmtp/zmtp"
)

// PUB implements the non-blocking broadcast socket. Subscription control
// frames arrive interleaved with nothing else on a
// PUB peer's inbound stream, so MessageReceived processes them inline
// rather than queuing them through a fair queue PUB never reads from.
type PUB struct {
	*core
}

// NewPUB constructs an unbound, unconnected PUB socket.
func NewPUB(cfg zmtp.Config) (*PUB, error) {
	c, err := newCore(zmtp.PUB, cfg)
	if err != nil {
		return nil, err
	}
	return &PUB{core: c}, nil
}

func (s *PUB) Bind(ctx context.Context, uri string) (string, error) { return s.bind(ctx, uri, s) }
func (s *PUB) Unbind(uri string) error                              { return s.unbind(uri) }
func (s *PUB) Connect(ctx context.Context, uri string) error        { return s.connect(ctx, uri, s) }
func (s *PUB) Close() error                                         { return s.close(s) }

// Send never blocks and never fails: for each subscriber with a matching
// prefix, the message is handed to its send sink with a non-blocking try;
// a full sink drops the message for that subscriber only.
func (s *PUB) Send(_ context.Context, msg zmtp.ZmqMessage) error {
	body := msg.Bytes()
	frames := zmtp.Multipart{zmtp.Frame(body)}

	for _, peer := range s.reg.Snapshot() {
		matched := false
		for _, prefix := range peer.Subscriptions {
			if bytes.HasPrefix(body, prefix) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		select {
		case peer.SendSink <- frames:
			s.metrics.MessagesSent.Inc()
		default:
			s.metrics.MessagesDropped.WithLabelValues(metrics.ReasonFullSink).Inc()
		}
	}
	return nil
}

// PeerConnected registers a new SUB peer with no subscriptions yet.
func (s *PUB) PeerConnected(id zmtp.PeerIdentity) *corezmtp.Peer {
	peer := s.reg.Insert(id, s.cfg.SendQueueSize, 0)
	s.metrics.PeersConnected.Inc()
	return peer
}

func (s *PUB) PeerDisconnected(id zmtp.PeerIdentity) {
	if _, ok := s.reg.Get(id); !ok {
		return
	}
	s.reg.Remove(id)
	s.metrics.PeersConnected.Dec()
}

// MessageReceived decodes a subscription control frame: first byte 1 =
// subscribe, 0 = unsubscribe, remaining bytes the prefix. Any other
// shape/first byte is ignored.
func (s *PUB) MessageReceived(id zmtp.PeerIdentity, msg zmtp.Multipart) {
	if len(msg) != 1 || len(msg[0]) == 0 {
		return
	}
	control := msg[0]
	prefix := append([]byte(nil), control[1:]...)

	switch control[0] {
	case 0x01:
		s.reg.MutateSubscriptions(id, func(subs [][]byte) [][]byte {
			return append(subs, prefix)
		})
	case 0x00:
		s.reg.MutateSubscriptions(id, func(subs [][]byte) [][]byte {
			for i, p := range subs {
				if bytes.Equal(p, prefix) {
					return append(subs[:i], subs[i+1:]...)
				}
			}
			return subs
		})
	}
}

func (s *PUB) SocketType() zmtp.SocketType { return zmtp.PUB }

func (s *PUB) Shutdown() {}
