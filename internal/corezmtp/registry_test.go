package corezmtp

import (
	"testing"

	"github.com/jabolina/go-zmtp/zmtp"
)

func TestRegistryInsertGetRemove(t *testing.T) {
	r := NewRegistry()
	id := zmtp.NewPeerIdentity()

	p := r.Insert(id, 1, 1)
	if p.Identity != id {
		t.Fatalf("identity mismatch")
	}
	if _, ok := r.Get(id); !ok {
		t.Fatalf("expected peer present after insert")
	}
	if r.Len() != 1 {
		t.Fatalf("len = %d, want 1", r.Len())
	}

	r.Remove(id)
	if _, ok := r.Get(id); ok {
		t.Fatalf("expected peer gone after remove")
	}
	select {
	case <-p.Done():
	default:
		t.Fatalf("expected peer close signal fired")
	}

	// Remove is idempotent.
	r.Remove(id)
}

func TestRegistrySnapshotIsStableUnderConcurrentMutation(t *testing.T) {
	r := NewRegistry()
	ids := make([]zmtp.PeerIdentity, 0, 50)
	for i := 0; i < 50; i++ {
		id := zmtp.NewPeerIdentity()
		r.Insert(id, 1, 1)
		ids = append(ids, id)
	}

	snap := r.Snapshot()
	if len(snap) != 50 {
		t.Fatalf("snapshot len = %d, want 50", len(snap))
	}

	for _, id := range ids {
		r.Remove(id)
	}

	if len(snap) != 50 {
		t.Fatalf("mutating the registry must not resize a prior snapshot")
	}
	if r.Len() != 0 {
		t.Fatalf("registry should be empty after removing all peers")
	}
}

func TestRegistryMutateSubscriptions(t *testing.T) {
	r := NewRegistry()
	id := zmtp.NewPeerIdentity()
	r.Insert(id, 1, 1)

	ok := r.MutateSubscriptions(id, func(subs [][]byte) [][]byte {
		return append(subs, []byte("topic."))
	})
	if !ok {
		t.Fatalf("expected mutation to succeed for registered peer")
	}

	p, _ := r.Get(id)
	if len(p.Subscriptions) != 1 || string(p.Subscriptions[0]) != "topic." {
		t.Fatalf("unexpected subscriptions: %#v", p.Subscriptions)
	}

	r.Remove(id)
	if ok := r.MutateSubscriptions(id, func(s [][]byte) [][]byte { return s }); ok {
		t.Fatalf("expected mutation to fail for removed peer")
	}
}

func TestRegistryClearClosesEveryPeer(t *testing.T) {
	r := NewRegistry()
	var peers []*Peer
	for i := 0; i < 8; i++ {
		peers = append(peers, r.Insert(zmtp.NewPeerIdentity(), 1, 1))
	}

	r.Clear()

	if r.Len() != 0 {
		t.Fatalf("expected empty registry after Clear")
	}
	for i, p := range peers {
		select {
		case <-p.Done():
		default:
			t.Fatalf("peer %d not closed by Clear", i)
		}
	}
}
