package zmtp

import "testing"

func TestWithDelimiterAndStrip(t *testing.T) {
	body := Frame("hello")
	m := WithDelimiter(body)
	if len(m) != 2 || len(m[0]) != 0 {
		t.Fatalf("unexpected delimiter shape: %#v", m)
	}

	got, ok := StripDelimiter(m)
	if !ok {
		t.Fatalf("expected ok=true")
	}
	if string(got) != "hello" {
		t.Fatalf("got %q want %q", got, "hello")
	}
}

func TestStripDelimiterRejectsWrongShape(t *testing.T) {
	cases := []Multipart{
		{Frame("not-empty"), Frame("body")},
		{Frame{}},
		{Frame{}, Frame("a"), Frame("b")},
	}
	for _, m := range cases {
		if _, ok := StripDelimiter(m); ok {
			t.Fatalf("expected ok=false for %#v", m)
		}
	}
}

func TestNewMessageBytesAndString(t *testing.T) {
	m := NewMessage([]byte("payload"))
	if m.String() != "payload" {
		t.Fatalf("got %q", m.String())
	}
	if string(m.Bytes()) != "payload" {
		t.Fatalf("got %q", m.Bytes())
	}
}
