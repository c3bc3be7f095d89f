package corezmtp

import (
	"net"
	"sync"

	"github.com/jabolina/go-zmtp/internal/codec"
	"github.com/jabolina/go-zmtp/zmtp"
)

// RunPeer drives one freshly-dialed-or-accepted connection end to end: it
// exchanges ZMTP greetings, registers the peer with backend, then runs a
// read pump and a write pump. The handshake itself runs on an
// inv-tracked goroutine, so RunPeer returns immediately and a slow or
// stalled peer's greeting can never block the caller's accept/connect
// loop from handling the next connection.
func RunPeer(conn net.Conn, backend Backend, inv Invoker, logger zmtp.Logger) {
	inv.Spawn(func() {
		cd := codec.New(conn)

		if err := cd.WriteGreeting(codec.Greeting{SocketType: backend.SocketType()}); err != nil {
			logger.Warnf("zmtp: greeting write failed: %v", err)
			_ = conn.Close()
			return
		}
		peerGreeting, err := cd.ReadGreeting()
		if err != nil {
			logger.Warnf("zmtp: greeting read failed: %v", err)
			_ = conn.Close()
			return
		}
		if !backend.SocketType().CompatibleWith(peerGreeting.SocketType) {
			logger.Warnf("zmtp: incompatible peer socket type: %s cannot pair with %s",
				backend.SocketType(), peerGreeting.SocketType)
			_ = conn.Close()
			return
		}

		id := zmtp.NewPeerIdentity()
		peer := backend.PeerConnected(id)
		logger.Debugf("zmtp: peer %s connected", id)

		var once sync.Once
		disconnect := func() {
			once.Do(func() {
				backend.PeerDisconnected(id)
				peer.Close()
				logger.Debugf("zmtp: peer %s disconnected", id)
			})
		}

		inv.Spawn(func() {
			<-peer.Done()
			_ = conn.Close()
		})

		inv.Spawn(func() {
			defer disconnect()
			for {
				select {
				case msg, ok := <-peer.SendSink:
					if !ok {
						return
					}
					if err := cd.WriteMessage(msg); err != nil {
						logger.Warnf("zmtp: write to peer %s failed: %v", id, err)
						return
					}
				case <-peer.Done():
					return
				}
			}
		})

		inv.Spawn(func() {
			defer disconnect()
			for {
				msg, err := cd.ReadMessage()
				if err != nil {
					return
				}
				backend.MessageReceived(id, msg)
			}
		})
	})
}
