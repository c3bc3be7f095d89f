package socket

import (
	"context"

	"github.com/jabolina/go-zmtp/zmtp"
)

// Socket is the lifecycle contract every personality implements.
type Socket interface {
	Bind(ctx context.Context, uri string) (string, error)
	Unbind(uri string) error
	Connect(ctx context.Context, uri string) error
	Close() error
}

// Sender is implemented by every send-capable personality.
type Sender interface {
	Send(ctx context.Context, msg zmtp.ZmqMessage) error
}

// Receiver is implemented by every recv-capable personality.
type Receiver interface {
	Recv(ctx context.Context) (zmtp.ZmqMessage, error)
}

var (
	_ Socket = (*REQ)(nil)
	_ Sender = (*REQ)(nil)
	_ Receiver = (*REQ)(nil)

	_ Socket   = (*REP)(nil)
	_ Sender   = (*REP)(nil)
	_ Receiver = (*REP)(nil)

	_ Socket = (*PUB)(nil)
	_ Sender = (*PUB)(nil)

	_ Socket   = (*SUB)(nil)
	_ Receiver = (*SUB)(nil)

	_ Socket   = (*DEALER)(nil)
	_ Sender   = (*DEALER)(nil)
	_ Receiver = (*DEALER)(nil)

	_ Socket   = (*ROUTER)(nil)
	_ Sender   = (*ROUTER)(nil)
	_ Receiver = (*ROUTER)(nil)

	_ Socket = (*PUSH)(nil)
	_ Sender = (*PUSH)(nil)

	_ Socket   = (*PULL)(nil)
	_ Receiver = (*PULL)(nil)
)
