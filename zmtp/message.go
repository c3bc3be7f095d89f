package zmtp

// Frame is a single length-prefixed byte chunk on the wire.
type Frame []byte

// Multipart is the on-wire carrier: a non-empty ordered sequence of frames
// forming one logical message.
type Multipart []Frame

// ZmqMessage is the application-visible message: typically a single body
// frame, with the leading empty delimiter frame added and removed by the
// REQ/REP layer.
type ZmqMessage struct {
	Frames Multipart
}

// NewMessage wraps a single body in a ZmqMessage.
func NewMessage(body []byte) ZmqMessage {
	return ZmqMessage{Frames: Multipart{Frame(body)}}
}

// Bytes returns the first frame's bytes, the common case of a single-frame
// application message.
func (m ZmqMessage) Bytes() []byte {
	if len(m.Frames) == 0 {
		return nil
	}
	return m.Frames[0]
}

// String renders the first frame as text, for tests and logging.
func (m ZmqMessage) String() string {
	return string(m.Bytes())
}

// WithDelimiter prepends the empty delimiter frame REQ/REP use to separate
// routing envelope from body on the wire.
func WithDelimiter(body Frame) Multipart {
	return Multipart{Frame{}, body}
}

// StripDelimiter validates and removes the REQ/REP delimiter + body shape:
// exactly two frames, the first empty. Returns ok=false on any other
// shape, which callers treat as a protocol error.
func StripDelimiter(m Multipart) (body Frame, ok bool) {
	if len(m) != 2 || len(m[0]) != 0 {
		return nil, false
	}
	return m[1], true
}
