package sinks

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Stalin-143/monitor/internal/events"
)

// PrometheusSink exports check-event metrics via Prometheus. It owns the
// collectors for operations, detected changes, and fetch volume/latency.
type PrometheusSink struct {
	operations    *prometheus.CounterVec
	changes       *prometheus.CounterVec
	fetchBytes    *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	resources     prometheus.Gauge
}

// NewPrometheusSink registers the collectors against the provided registry.
func NewPrometheusSink(reg prometheus.Registerer) (*PrometheusSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PrometheusSink{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "monitor_operations_total",
			Help: "Registry operations partitioned by op and outcome.",
		}, []string{"op", "outcome"}),
		changes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "monitor_changes_detected_total",
			Help: "Checks that detected any difference, per site.",
		}, []string{"site"}),
		fetchBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "monitor_fetch_bytes_total",
			Help: "Bytes downloaded per site.",
		}, []string{"site"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "monitor_fetch_duration_seconds",
			Help:    "Fetch duration partitioned by site and outcome.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		}, []string{"site", "outcome"}),
		resources: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "monitor_resources",
			Help: "Current number of monitored resources.",
		}),
	}
	for _, collector := range []prometheus.Collector{
		s.operations,
		s.changes,
		s.fetchBytes,
		s.fetchDuration,
		s.resources,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("register event collector: %w", err)
		}
	}
	return s, nil
}

// Consume updates the Prometheus collectors using the provided batch. It is
// safe for concurrent use by multiple goroutines.
func (s *PrometheusSink) Consume(_ context.Context, batch []events.Event) error {
	for _, evt := range batch {
		s.consumeEvent(evt)
	}
	return nil
}

func (s *PrometheusSink) consumeEvent(evt events.Event) {
	site := siteLabel(evt.URL)
	s.operations.WithLabelValues(string(evt.Op), string(evt.Outcome)).Inc()
	if evt.Op != events.OpRemove && evt.Outcome != events.OutcomeRejected {
		s.fetchDuration.WithLabelValues(site, string(evt.Outcome)).Observe(evt.Dur.Seconds())
	}
	if evt.Outcome != events.OutcomeOK {
		return
	}
	switch evt.Op {
	case events.OpAdd:
		s.resources.Inc()
		s.fetchBytes.WithLabelValues(site).Add(float64(evt.Bytes))
	case events.OpCheck:
		s.fetchBytes.WithLabelValues(site).Add(float64(evt.Bytes))
		if evt.Changed {
			s.changes.WithLabelValues(site).Inc()
		}
	case events.OpRemove:
		s.resources.Dec()
	}
}

// Close implements the Sink interface; collectors stay registered.
func (s *PrometheusSink) Close(context.Context) error {
	return nil
}

// siteLabel sanitizes a URL to a lowercase hostname label, or "unknown".
func siteLabel(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}
