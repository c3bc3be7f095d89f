package corezmtp

import (
	"sync"

	"github.com/jabolina/go-zmtp/zmtp"
)

// Dispatcher is the FIFO of PeerIdentity used to load-balance outbound
// sends for REQ/PUSH/DEALER. Disconnects are tolerated at dispatch time:
// stale IDs are filtered by the caller cross-checking the Registry.
type Dispatcher struct {
	mu    sync.Mutex
	queue []zmtp.PeerIdentity
}

// NewDispatcher builds an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Push appends a peer to the tail, called on peer_connected and after a
// successful dispatch rotates a peer back to the tail.
func (d *Dispatcher) Push(id zmtp.PeerIdentity) {
	d.mu.Lock()
	d.queue = append(d.queue, id)
	d.mu.Unlock()
}

// Pop removes and returns the head of the queue, or false if empty. The
// caller must verify registry membership and, on success, Push the peer
// back to the tail; on failure (disconnect race) pop again.
func (d *Dispatcher) Pop() (zmtp.PeerIdentity, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.queue) == 0 {
		return zmtp.PeerIdentity{}, false
	}
	id := d.queue[0]
	d.queue = d.queue[1:]
	return id, true
}

// Remove drops every occurrence of id from the queue. The dispatcher
// normally tolerates stale entries, but the REQ/PUSH/DEALER disconnect
// paths call Remove to keep the FIFO free of permanently-gone peers
// rather than relying purely on dispatch-time filtering.
func (d *Dispatcher) Remove(id zmtp.PeerIdentity) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := d.queue[:0]
	for _, q := range d.queue {
		if q != id {
			out = append(out, q)
		}
	}
	d.queue = out
}
