package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestNewSocketRegistersAndCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	s, err := NewSocket(reg, "REQ", "test-instance")
	if err != nil {
		t.Fatalf("NewSocket: %v", err)
	}

	s.MessagesSent.Inc()
	s.MessagesSent.Inc()
	s.PeersConnected.Inc()
	s.MessagesDropped.WithLabelValues(ReasonFullSink).Inc()

	if got := counterValue(t, s.MessagesSent); got != 2 {
		t.Fatalf("MessagesSent = %v, want 2", got)
	}
	if got := gaugeValue(t, s.PeersConnected); got != 1 {
		t.Fatalf("PeersConnected = %v, want 1", got)
	}
	if got := counterValue(t, s.MessagesDropped.WithLabelValues(ReasonFullSink)); got != 1 {
		t.Fatalf("MessagesDropped{reason=full_sink} = %v, want 1", got)
	}
	if got := counterValue(t, s.MessagesDropped.WithLabelValues(ReasonStrayReply)); got != 0 {
		t.Fatalf("MessagesDropped{reason=stray_reply} = %v, want 0", got)
	}
}

func TestNewSocketDuplicateIDFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewSocket(reg, "REQ", "dup"); err != nil {
		t.Fatalf("first NewSocket: %v", err)
	}
	if _, err := NewSocket(reg, "REQ", "dup"); err == nil {
		t.Fatalf("expected registering the same socket id twice to fail")
	}
}

func TestNewSocketNilRegistererIsValid(t *testing.T) {
	s, err := NewSocket(nil, "PUB", "no-registry")
	if err != nil {
		t.Fatalf("NewSocket with nil registerer: %v", err)
	}
	s.MessagesDropped.WithLabelValues(ReasonFullSink).Inc() // must not panic despite never being registered
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return m.GetCounter().GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return m.GetGauge().GetValue()
}
