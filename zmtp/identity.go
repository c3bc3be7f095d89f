// Package zmtp defines the wire-independent data model shared by every
// socket personality: peer identities, messages, socket types, and errors.
package zmtp

import (
	"github.com/google/uuid"
)

// PeerIdentity is an opaque handle identifying one accepted or dialed
// connection. It is stable for the lifetime of that connection and never
// reused, comparable, and usable as a map key.
type PeerIdentity [16]byte

// NewPeerIdentity allocates a fresh, globally unique identity for a newly
// accepted or dialed connection.
func NewPeerIdentity() PeerIdentity {
	return PeerIdentity(uuid.New())
}

// String renders the identity as a UUID string, mostly for logging.
func (p PeerIdentity) String() string {
	return uuid.UUID(p).String()
}

// Bytes returns the raw 16-byte identity, used as a ROUTER envelope frame.
func (p PeerIdentity) Bytes() []byte {
	b := make([]byte, 16)
	copy(b, p[:])
	return b
}

// PeerIdentityFromBytes parses a ROUTER envelope frame back into a
// PeerIdentity. The input must be exactly 16 bytes.
func PeerIdentityFromBytes(b []byte) (PeerIdentity, bool) {
	var p PeerIdentity
	if len(b) != 16 {
		return p, false
	}
	copy(p[:], b)
	return p, true
}
