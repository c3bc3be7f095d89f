package zmtp

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Config carries per-socket tunables.
type Config struct {
	// Logger receives protocol, backend, and transport log lines. Defaults
	// to NoopLogger when unset; sockets constructed through the facade
	// default it to logging.NewDefault() instead.
	Logger Logger

	// SendQueueSize bounds non-REQ/REP-family per-peer send sinks (PUB,
	// SUB, PUSH, DEALER, ROUTER). REQ/REP always use capacity 1 regardless
	// of this setting, to preserve their strict alternation backpressure.
	SendQueueSize int

	// DialTimeout bounds Connect.
	DialTimeout time.Duration

	// HandshakeTimeout is filled in by WithDefaults but not applied: the
	// ZMTP greeting exchange after accept or dial runs without a deadline.
	HandshakeTimeout time.Duration

	// AcceptBacklog bounds how many accepted-but-not-yet-handshaked
	// connections an Acceptor buffers before it stops calling net.Accept.
	AcceptBacklog int

	// Registerer receives this socket's Prometheus metrics. Defaults to
	// prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer
}

const (
	defaultSendQueueSize    = 100
	defaultDialTimeout      = 10 * time.Second
	defaultHandshakeTimeout = 5 * time.Second
	defaultAcceptBacklog    = 64
)

// WithDefaults returns a copy of c with zero-valued fields replaced by
// defaults, the way luxfi-zmq's New applies Config defaults.
func (c Config) WithDefaults() Config {
	if c.Logger == nil {
		c.Logger = NoopLogger
	}
	if c.SendQueueSize <= 0 {
		c.SendQueueSize = defaultSendQueueSize
	}
	if c.DialTimeout <= 0 {
		c.DialTimeout = defaultDialTimeout
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = defaultHandshakeTimeout
	}
	if c.AcceptBacklog <= 0 {
		c.AcceptBacklog = defaultAcceptBacklog
	}
	if c.Registerer == nil {
		c.Registerer = prometheus.DefaultRegisterer
	}
	return c
}
