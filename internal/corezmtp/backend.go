package corezmtp

import "github.com/jabolina/go-zmtp/zmtp"

// Backend is the contract every socket personality exposes to the
// connection engine. PeerConnected must insert the new peer
// into whatever structures the personality keeps (registry, fair queue,
// dispatcher, subscriber map) and return its Peer record so the engine can
// drive its SendSink/Done channels.
type Backend interface {
	PeerConnected(id zmtp.PeerIdentity) *Peer
	PeerDisconnected(id zmtp.PeerIdentity)
	MessageReceived(id zmtp.PeerIdentity, msg zmtp.Multipart)
	SocketType() zmtp.SocketType
	Shutdown()
}
