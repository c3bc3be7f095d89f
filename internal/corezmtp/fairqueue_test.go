package corezmtp

import (
	"context"
	"testing"
	"time"

	"github.com/jabolina/go-zmtp/zmtp"
)

func TestFairQueuePullRoundRobinsAcrossReadyPeers(t *testing.T) {
	q := NewFairQueue()
	a, b := zmtp.NewPeerIdentity(), zmtp.NewPeerIdentity()
	srcA := make(chan zmtp.Multipart, 1)
	srcB := make(chan zmtp.Multipart, 1)
	q.Insert(a, srcA)
	q.Insert(b, srcB)

	srcA <- zmtp.Multipart{zmtp.Frame("a1")}
	srcB <- zmtp.Multipart{zmtp.Frame("b1")}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	seen := map[zmtp.PeerIdentity]bool{}
	for i := 0; i < 2; i++ {
		r, ok := q.Pull(ctx)
		if !ok {
			t.Fatalf("Pull failed on iteration %d", i)
		}
		seen[r.Peer] = true
	}
	if !seen[a] || !seen[b] {
		t.Fatalf("expected messages from both peers, got %v", seen)
	}
}

func TestFairQueuePullBlocksUntilReady(t *testing.T) {
	q := NewFairQueue()
	id := zmtp.NewPeerIdentity()
	src := make(chan zmtp.Multipart, 1)
	q.Insert(id, src)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		time.Sleep(20 * time.Millisecond)
		src <- zmtp.Multipart{zmtp.Frame("late")}
	}()

	r, ok := q.Pull(ctx)
	<-done
	if !ok {
		t.Fatalf("expected Pull to succeed once the message arrived")
	}
	if r.Peer != id {
		t.Fatalf("unexpected peer %v", r.Peer)
	}
}

func TestFairQueuePullRespectsContextCancellation(t *testing.T) {
	q := NewFairQueue()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, ok := q.Pull(ctx); ok {
		t.Fatalf("expected Pull to fail on an already-cancelled context")
	}
}

func TestFairQueueRemoveShrinksRingCleanly(t *testing.T) {
	q := NewFairQueue()
	ids := make([]zmtp.PeerIdentity, 5)
	srcs := make([]chan zmtp.Multipart, 5)
	for i := range ids {
		ids[i] = zmtp.NewPeerIdentity()
		srcs[i] = make(chan zmtp.Multipart, 1)
		q.Insert(ids[i], srcs[i])
	}

	// Remove every peer but the last while nothing is ready, then make the
	// last one ready: Pull must not panic on a stale index into a shrunk
	// ring and must still find the remaining message.
	for i := 0; i < 4; i++ {
		q.Remove(ids[i])
	}
	srcs[4] <- zmtp.Multipart{zmtp.Frame("last")}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	r, ok := q.Pull(ctx)
	if !ok || r.Peer != ids[4] {
		t.Fatalf("expected message from last remaining peer, got ok=%v peer=%v", ok, r.Peer)
	}
}

func TestFairQueueLen(t *testing.T) {
	q := NewFairQueue()
	if q.Len() != 0 {
		t.Fatalf("expected empty queue")
	}
	id := zmtp.NewPeerIdentity()
	q.Insert(id, make(chan zmtp.Multipart, 1))
	if q.Len() != 1 {
		t.Fatalf("expected len 1")
	}
	q.Remove(id)
	if q.Len() != 0 {
		t.Fatalf("expected len 0 after remove")
	}
}
