package zmtp

import "fmt"

// Kind classifies an Error, matching the error kinds a socket can surface.
type Kind int

const (
	KindAddrInUse Kind = iota
	KindAddrNotAvailable
	KindConnectionRefused
	KindInvalidEndpoint
	KindNoSuchBind
	KindNotConnected
	KindRequestInProgress
	KindNoMessage
	KindReturnToSender
	KindProtocolError
	KindOther
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindAddrInUse:
		return "AddrInUse"
	case KindAddrNotAvailable:
		return "AddrNotAvailable"
	case KindConnectionRefused:
		return "ConnectionRefused"
	case KindInvalidEndpoint:
		return "InvalidEndpoint"
	case KindNoSuchBind:
		return "NoSuchBind"
	case KindNotConnected:
		return "NotConnected"
	case KindRequestInProgress:
		return "RequestInProgress"
	case KindNoMessage:
		return "NoMessage"
	case KindReturnToSender:
		return "ReturnToSender"
	case KindProtocolError:
		return "ProtocolError"
	case KindIO:
		return "Io"
	default:
		return "Other"
	}
}

// Error is the error type every socket operation returns. ReturnToSender
// errors carry the unsent message back to the caller.
type Error struct {
	Kind    Kind
	Reason  string
	Message *ZmqMessage
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("zmtp: %s: %s: %v", e.Kind, e.Reason, e.Err)
	}
	return fmt.Sprintf("zmtp: %s: %s", e.Kind, e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same Kind, so callers can
// use errors.Is(err, zmtp.ErrNotConnected) style sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newError(kind Kind, reason string) *Error {
	return &Error{Kind: kind, Reason: reason}
}

func wrapError(kind Kind, reason string, err error) *Error {
	return &Error{Kind: kind, Reason: reason, Err: err}
}

// ReturnToSender builds the ReturnToSender error carrying the message back.
func ReturnToSender(reason string, msg ZmqMessage) *Error {
	return &Error{Kind: KindReturnToSender, Reason: reason, Message: &msg}
}

// Sentinel values for errors.Is comparisons against a Kind only.
var (
	ErrAddrInUse         = newError(KindAddrInUse, "address in use")
	ErrAddrNotAvailable  = newError(KindAddrNotAvailable, "address not available")
	ErrConnectionRefused = newError(KindConnectionRefused, "connection refused")
	ErrInvalidEndpoint   = newError(KindInvalidEndpoint, "invalid endpoint")
	ErrNoSuchBind        = newError(KindNoSuchBind, "no such bind")
	ErrNotConnected      = newError(KindNotConnected, "not connected to peers")
	ErrRequestInProgress = newError(KindRequestInProgress, "request already in progress")
	ErrNoMessage         = newError(KindNoMessage, "no message")
	ErrProtocol          = newError(KindProtocolError, "protocol error")
)

// Other builds a KindOther error with a free-form reason, mirroring the
// source's Other(&str) variant.
func Other(reason string) *Error {
	return newError(KindOther, reason)
}
