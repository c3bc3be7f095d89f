// Package corezmtp implements the multi-peer socket runtime shared by every
// personality: the peer registry, fair queue, round-robin dispatcher, and
// the connection engine tying the frame codec to per-peer queues.
package corezmtp

import (
	"hash/fnv"
	"sync"

	"github.com/jabolina/go-zmtp/zmtp"
)

const shardCount = 16

// Peer is the per-connection record: an immutable identity plus the
// channels the engine and the personality communicate through.
type Peer struct {
	Identity zmtp.PeerIdentity

	// SendSink is drained by the write pump and fed by the personality's
	// Send path (or, for PUB, by the broadcast fan-out). Peers that never
	// send (PULL) still get one, sized 1, simply never written to.
	SendSink chan zmtp.Multipart

	// Inbound is fed by the read pump's MessageReceived callback and
	// drained by whatever recv path the personality registers it with
	// (the Fair Queue, for every recv-capable personality). Peers that
	// never receive (PUSH) are given a nil Inbound.
	Inbound chan zmtp.Multipart

	// Subscriptions is only meaningful for PUB peers: the list of prefixes
	// this peer has subscribed to. Mutated under the registry's per-shard
	// lock alongside the rest of the entry — serialised per peer, not
	// across peers.
	Subscriptions [][]byte

	close     chan struct{}
	closeOnce sync.Once
}

// Close fires the peer's one-shot close signal, terminating its per-peer
// I/O tasks on their next polling cycle.
func (p *Peer) Close() {
	p.closeOnce.Do(func() { close(p.close) })
}

// Done is the one-shot close signal, fired when the peer is removed from
// the registry or the socket shuts down.
func (p *Peer) Done() <-chan struct{} {
	return p.close
}

func newPeer(id zmtp.PeerIdentity, sendQueueSize, recvQueueSize int) *Peer {
	p := &Peer{
		Identity: id,
		SendSink: make(chan zmtp.Multipart, maxInt(sendQueueSize, 1)),
		close:    make(chan struct{}),
	}
	if recvQueueSize > 0 {
		p.Inbound = make(chan zmtp.Multipart, recvQueueSize)
	}
	return p
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

type shard struct {
	mu    sync.RWMutex
	peers map[zmtp.PeerIdentity]*Peer
}

// Registry is a concurrent map keyed by PeerIdentity, sharded so that
// iteration (PUB broadcast) and single-peer lookup/mutation don't
// contend behind one global lock.
type Registry struct {
	shards [shardCount]*shard
}

// NewRegistry builds an empty peer registry.
func NewRegistry() *Registry {
	r := &Registry{}
	for i := range r.shards {
		r.shards[i] = &shard{peers: make(map[zmtp.PeerIdentity]*Peer)}
	}
	return r
}

func (r *Registry) shardFor(id zmtp.PeerIdentity) *shard {
	h := fnv.New32a()
	_, _ = h.Write(id[:])
	return r.shards[h.Sum32()%shardCount]
}

// Insert adds a new peer record on handshake completion. recvQueueSize <= 0
// means this personality never receives from its peers (PUSH) and the
// peer's Inbound channel is left nil.
func (r *Registry) Insert(id zmtp.PeerIdentity, sendQueueSize, recvQueueSize int) *Peer {
	s := r.shardFor(id)
	p := newPeer(id, sendQueueSize, recvQueueSize)
	s.mu.Lock()
	s.peers[id] = p
	s.mu.Unlock()
	return p
}

// Remove drops a peer on disconnect, firing its close signal. Idempotent.
func (r *Registry) Remove(id zmtp.PeerIdentity) {
	s := r.shardFor(id)
	s.mu.Lock()
	p, ok := s.peers[id]
	if ok {
		delete(s.peers, id)
	}
	s.mu.Unlock()
	if ok {
		p.Close()
	}
}

// Get returns the peer record for id, and whether it is still present.
func (r *Registry) Get(id zmtp.PeerIdentity) (*Peer, bool) {
	s := r.shardFor(id)
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.peers[id]
	return p, ok
}

// Snapshot returns a stable copy of every currently-registered peer,
// suitable for PUB broadcast iteration that must tolerate concurrent
// insert/remove.
func (r *Registry) Snapshot() []*Peer {
	out := make([]*Peer, 0)
	for _, s := range r.shards {
		s.mu.RLock()
		for _, p := range s.peers {
			out = append(out, p)
		}
		s.mu.RUnlock()
	}
	return out
}

// Len reports the number of live peers.
func (r *Registry) Len() int {
	n := 0
	for _, s := range r.shards {
		s.mu.RLock()
		n += len(s.peers)
		s.mu.RUnlock()
	}
	return n
}

// Clear removes and closes every peer, used by Shutdown.
func (r *Registry) Clear() {
	for _, s := range r.shards {
		s.mu.Lock()
		peers := s.peers
		s.peers = make(map[zmtp.PeerIdentity]*Peer)
		s.mu.Unlock()
		for _, p := range peers {
			p.Close()
		}
	}
}

// MutateSubscriptions runs fn with exclusive access to id's subscription
// list, returning false if the peer is no longer registered.
func (r *Registry) MutateSubscriptions(id zmtp.PeerIdentity, fn func(subs [][]byte) [][]byte) bool {
	s := r.shardFor(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.peers[id]
	if !ok {
		return false
	}
	p.Subscriptions = fn(p.Subscriptions)
	return true
}
