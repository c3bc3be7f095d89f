package corezmtp

import (
	"context"
	"sync"
	"time"

	"github.com/jabolina/go-zmtp/zmtp"
)

// pollInterval bounds how long a parked Pull waits before rescanning its
// sources for a message that arrived without a peer-set change.
const pollInterval = time.Millisecond

// received pairs an identity with the message that arrived from it, the
// fair queue's yielded value.
type received struct {
	Peer    zmtp.PeerIdentity
	Message zmtp.Multipart
}

// FairQueue multiplexes a dynamically changing set of per-peer receive
// channels into one stream, round-robin fair across peers with messages
// continuously available.
//
// Implementation strategy: a ring of peer IDs behind one lock; each Pull
// rotates from the last served
// position and polls each source once in turn (non-blocking), returning
// the first ready one. When nothing is ready, Pull parks until the waker
// channel (closed and replaced whenever the peer set changes) fires or
// pollInterval elapses, then scans again, so a message arriving on an
// idle source is picked up by the next scan.
type FairQueue struct {
	mu      sync.Mutex
	order   []zmtp.PeerIdentity
	sources map[zmtp.PeerIdentity]chan zmtp.Multipart
	cursor  int
	waker   chan struct{}
}

// NewFairQueue builds an empty fair queue.
func NewFairQueue() *FairQueue {
	return &FairQueue{
		sources: make(map[zmtp.PeerIdentity]chan zmtp.Multipart),
		waker:   make(chan struct{}),
	}
}

// Insert adds a new peer's receive source. Safe to call concurrently with
// Pull; the peer is included starting with the next polling cycle.
func (q *FairQueue) Insert(id zmtp.PeerIdentity, source chan zmtp.Multipart) {
	q.mu.Lock()
	if _, exists := q.sources[id]; !exists {
		q.sources[id] = source
		q.order = append(q.order, id)
	}
	q.wake()
	q.mu.Unlock()
}

// Remove drops a peer. A removal concurrent with Pull never yields a
// message from the removed peer afterward: Pull re-validates membership
// under the same lock used here.
func (q *FairQueue) Remove(id zmtp.PeerIdentity) {
	q.mu.Lock()
	if _, exists := q.sources[id]; exists {
		delete(q.sources, id)
		for i, pid := range q.order {
			if pid == id {
				q.order = append(q.order[:i], q.order[i+1:]...)
				break
			}
		}
	}
	q.wake()
	q.mu.Unlock()
}

// wake must be called with mu held; it broadcasts to anyone parked in
// Pull that the peer set or a source's readiness may have changed.
func (q *FairQueue) wake() {
	close(q.waker)
	q.waker = make(chan struct{})
}

// Pull blocks until a message is available from some peer or ctx is
// cancelled. A peer whose source ends is dropped silently and Pull keeps
// waiting on the rest; with no peers left it keeps waiting too, since the
// queue has no finite mode and relies on ctx cancellation to stop.
func (q *FairQueue) Pull(ctx context.Context) (received, bool) {
outer:
	for {
		q.mu.Lock()
		n := len(q.order)
		if n == 0 {
			waker := q.waker
			q.mu.Unlock()
			select {
			case <-waker:
				continue
			case <-ctx.Done():
				return received{}, false
			}
		}

		start := q.cursor % n
		for i := 0; i < n; i++ {
			idx := (start + i) % n
			id := q.order[idx]
			src := q.sources[id]
			select {
			case msg, ok := <-src:
				if !ok {
					// End-of-stream: silently drop the peer from the
					// queue and restart the scan — order/n just
					// shrank under us.
					q.removeLocked(id)
					q.mu.Unlock()
					continue outer
				}
				q.cursor = idx + 1
				q.mu.Unlock()
				return received{Peer: id, Message: msg}, true
			default:
			}
		}
		waker := q.waker
		q.mu.Unlock()

		select {
		case <-waker:
		case <-time.After(pollInterval):
		case <-ctx.Done():
			return received{}, false
		}
	}
}

// removeLocked is Remove's body for callers already holding mu.
func (q *FairQueue) removeLocked(id zmtp.PeerIdentity) {
	if _, exists := q.sources[id]; exists {
		delete(q.sources, id)
		for i, pid := range q.order {
			if pid == id {
				q.order = append(q.order[:i], q.order[i+1:]...)
				break
			}
		}
	}
}

// Len reports how many peers are currently queued.
func (q *FairQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.order)
}
