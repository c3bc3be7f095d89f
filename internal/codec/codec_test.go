package codec

import (
	"bytes"
	"testing"

	"github.com/jabolina/go-zmtp/zmtp"
)

func TestGreetingRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf)

	if err := c.WriteGreeting(Greeting{SocketType: zmtp.REQ}); err != nil {
		t.Fatalf("WriteGreeting: %v", err)
	}

	got, err := c.ReadGreeting()
	if err != nil {
		t.Fatalf("ReadGreeting: %v", err)
	}
	if got.SocketType != zmtp.REQ {
		t.Fatalf("got socket type %v, want REQ", got.SocketType)
	}
}

func TestReadGreetingRejectsBadSignature(t *testing.T) {
	buf := bytes.NewBuffer(make([]byte, 63))
	c := New(buf)
	if _, err := c.ReadGreeting(); err == nil {
		t.Fatalf("expected error for all-zero greeting")
	}
}

func TestMessageRoundTripShortFrames(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf)

	msg := zmtp.Multipart{zmtp.Frame{}, zmtp.Frame("hello world")}
	if err := c.WriteMessage(msg); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}

	got, err := c.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if len(got) != 2 || len(got[0]) != 0 || string(got[1]) != "hello world" {
		t.Fatalf("got %#v", got)
	}
}

func TestMessageRoundTripLongFrame(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf)

	big := bytes.Repeat([]byte("x"), 1000)
	msg := zmtp.Multipart{zmtp.Frame(big)}
	if err := c.WriteMessage(msg); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}

	got, err := c.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if len(got) != 1 || !bytes.Equal(got[0], big) {
		t.Fatalf("long frame round trip mismatch")
	}
}

func TestWriteMessageRejectsEmptyMultipart(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf)
	if err := c.WriteMessage(nil); err == nil {
		t.Fatalf("expected error writing an empty multipart message")
	}
}

func TestMultipleMessagesInSequence(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf)

	for i := 0; i < 5; i++ {
		if err := c.WriteMessage(zmtp.Multipart{zmtp.Frame{byte(i)}}); err != nil {
			t.Fatalf("WriteMessage %d: %v", i, err)
		}
	}
	for i := 0; i < 5; i++ {
		got, err := c.ReadMessage()
		if err != nil {
			t.Fatalf("ReadMessage %d: %v", i, err)
		}
		if len(got) != 1 || got[0][0] != byte(i) {
			t.Fatalf("message %d: got %#v", i, got)
		}
	}
}
