// Package metrics wires the runtime's message/peer counters into
// Prometheus, using client_golang collectors registered against a
// socket's own Registerer.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Reasons reported on the MessagesDropped "reason" label. Every drop site
// in the socket package increments one of these, never the bare vector.
const (
	// ReasonFullSink: PUB's non-blocking send found a matching subscriber's
	// send sink full and dropped the message for that subscriber only.
	ReasonFullSink = "full_sink"
	// ReasonStrayReply: REQ received a reply after Recv already moved on
	// (shutdown/cancellation race), so it was discarded unread.
	ReasonStrayReply = "stray_reply"
)

// Socket bundles the counters/gauges a single zmtp.Socket reports.
// Every socket constructs its own Socket metrics bound to one SocketType
// label so fleets of mixed personalities share one registry without
// clashing collector names.
type Socket struct {
	MessagesSent     prometheus.Counter
	MessagesReceived prometheus.Counter
	MessagesDropped  *prometheus.CounterVec
	PeersConnected   prometheus.Gauge
}

// NewSocket builds the collector set for one socket identified by
// socketType and an instance id, and registers it against reg. A nil reg
// is valid: metrics are still produced and simply left unregistered
// (sockets never pass nil, since Config.WithDefaults substitutes
// prometheus.DefaultRegisterer). id must be unique per
// socket instance or registration fails with a duplicate-collector error.
func NewSocket(reg prometheus.Registerer, socketType, id string) (*Socket, error) {
	labels := prometheus.Labels{"socket_type": socketType, "socket_id": id}

	s := &Socket{
		MessagesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "zmtp_messages_sent_total",
			Help:        "Total number of multipart messages successfully handed to a peer's send queue.",
			ConstLabels: labels,
		}),
		MessagesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "zmtp_messages_received_total",
			Help:        "Total number of multipart messages delivered to the application.",
			ConstLabels: labels,
		}),
		MessagesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "zmtp_messages_dropped_total",
			Help:        "Total number of messages dropped, labeled by reason (full_sink, stray_reply).",
			ConstLabels: labels,
		}, []string{"reason"}),
		PeersConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "zmtp_peers_connected",
			Help:        "Number of peers currently registered with this socket.",
			ConstLabels: labels,
		}),
	}

	if reg == nil {
		return s, nil
	}

	for _, c := range []prometheus.Collector{s.MessagesSent, s.MessagesReceived, s.MessagesDropped, s.PeersConnected} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return s, nil
}
