package sinks

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/Stalin-143/monitor/internal/events"
)

// TestPrometheusSinkRecordsMetrics ensures counters and histograms are incremented from events.
func TestPrometheusSinkRecordsMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	sink, err := NewPrometheusSink(reg)
	require.NoError(t, err)

	now := time.Now()
	batch := []events.Event{
		{
			TS:      now,
			Op:      events.OpAdd,
			URL:     "https://example.com/page",
			Outcome: events.OutcomeOK,
			Bytes:   512,
			Dur:     100 * time.Millisecond,
		},
		{
			TS:      now.Add(time.Minute),
			Op:      events.OpCheck,
			URL:     "https://example.com/page",
			Outcome: events.OutcomeOK,
			Changed: true,
			Bytes:   1024,
			Dur:     200 * time.Millisecond,
		},
		{
			TS:      now.Add(2 * time.Minute),
			Op:      events.OpCheck,
			URL:     "https://example.com/page",
			Outcome: events.OutcomeFetchError,
		},
	}

	require.NoError(t, sink.Consume(context.Background(), batch))

	require.Equal(t, 1.0, testutil.ToFloat64(sink.operations.WithLabelValues("ADD", "ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(sink.operations.WithLabelValues("CHECK", "ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(sink.operations.WithLabelValues("CHECK", "fetch_error")))
	require.Equal(t, 1.0, testutil.ToFloat64(sink.changes.WithLabelValues("example.com")))
	require.InDelta(t, 1536.0, testutil.ToFloat64(sink.fetchBytes.WithLabelValues("example.com")), 1e-9)
	require.Equal(t, 1.0, testutil.ToFloat64(sink.resources))
	require.Equal(t, 2, testutil.CollectAndCount(sink.fetchDuration, "monitor_fetch_duration_seconds"))
}

// TestPrometheusSinkResourceGauge tracks the add/remove lifecycle.
func TestPrometheusSinkResourceGauge(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	sink, err := NewPrometheusSink(reg)
	require.NoError(t, err)

	now := time.Now()
	batch := []events.Event{
		{TS: now, Op: events.OpAdd, URL: "https://a.example", Outcome: events.OutcomeOK},
		{TS: now, Op: events.OpAdd, URL: "https://b.example", Outcome: events.OutcomeOK},
		{TS: now, Op: events.OpRemove, URL: "https://a.example", Outcome: events.OutcomeOK},
		{TS: now, Op: events.OpRemove, URL: "https://a.example", Outcome: events.OutcomeRejected},
	}
	require.NoError(t, sink.Consume(context.Background(), batch))
	require.Equal(t, 1.0, testutil.ToFloat64(sink.resources))
}

func TestSiteLabel(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  string
		want string
	}{
		{"https://Example.COM/path?q=1", "example.com"},
		{"http://sub.example.org", "sub.example.org"},
		{"example.net", "example.net"},
		{"", "unknown"},
		{"://bad", "unknown"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, siteLabel(tc.raw), "raw=%q", tc.raw)
	}
}
