package socket

import (
	"context"
	"testing"
	"time"

	"github.com/jabolina/go-zmtp/zmtp"
)

func TestRouterEnvelopeAndExplicitAddressing(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	router, err := NewROUTER(testConfig())
	if err != nil {
		t.Fatalf("NewROUTER: %v", err)
	}
	defer router.Close()
	bound, err := router.Bind(ctx, "tcp://127.0.0.1:0")
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}

	dealer, err := NewDEALER(testConfig())
	if err != nil {
		t.Fatalf("NewDEALER: %v", err)
	}
	defer dealer.Close()
	if err := dealer.Connect(ctx, bound); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	time.Sleep(50 * time.Millisecond) // let the handshake land

	if err := dealer.Send(ctx, zmtp.ZmqMessage{Frames: zmtp.Multipart{zmtp.Frame("hello")}}); err != nil {
		t.Fatalf("dealer Send: %v", err)
	}

	envelope, err := router.Recv(ctx)
	if err != nil {
		t.Fatalf("router Recv: %v", err)
	}
	if len(envelope.Frames) != 2 {
		t.Fatalf("expected envelope + body, got %d frames", len(envelope.Frames))
	}
	dest, ok := zmtp.PeerIdentityFromBytes(envelope.Frames[0])
	if !ok {
		t.Fatalf("first frame is not a valid PeerIdentity envelope")
	}
	if string(envelope.Frames[1]) != "hello" {
		t.Fatalf("got body %q", envelope.Frames[1])
	}

	reply := zmtp.ZmqMessage{Frames: zmtp.Multipart{zmtp.Frame(dest.Bytes()), zmtp.Frame("world")}}
	if err := router.Send(ctx, reply); err != nil {
		t.Fatalf("router Send: %v", err)
	}

	got, err := dealer.Recv(ctx)
	if err != nil {
		t.Fatalf("dealer Recv: %v", err)
	}
	if len(got.Frames) != 1 || string(got.Frames[0]) != "world" {
		t.Fatalf("got %#v", got.Frames)
	}
}

func TestRouterSendToUnknownPeerFailsNotConnected(t *testing.T) {
	router, err := NewROUTER(testConfig())
	if err != nil {
		t.Fatalf("NewROUTER: %v", err)
	}
	defer router.Close()

	ctx := context.Background()
	unknown := zmtp.NewPeerIdentity()
	msg := zmtp.ZmqMessage{Frames: zmtp.Multipart{zmtp.Frame(unknown.Bytes()), zmtp.Frame("x")}}

	err = router.Send(ctx, msg)
	zerr, ok := err.(*zmtp.Error)
	if !ok || zerr.Kind != zmtp.KindNotConnected {
		t.Fatalf("expected NotConnected, got %v", err)
	}
}
