package sinks

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Stalin-143/monitor/internal/events"
)

func TestLogSinkLogsEachEvent(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zap.InfoLevel)
	sink := NewLogSink(zap.New(core))

	batch := []events.Event{
		{TS: time.Now(), Op: events.OpAdd, URL: "https://a.example", Outcome: events.OutcomeOK},
		{TS: time.Now(), Op: events.OpCheck, URL: "https://a.example", Outcome: events.OutcomeOK, Changed: true},
	}
	require.NoError(t, sink.Consume(context.Background(), batch))
	require.NoError(t, sink.Close(context.Background()))

	entries := observed.All()
	require.Len(t, entries, 2)
	require.Equal(t, "check event", entries[0].Message)
	fields := entries[1].ContextMap()
	require.Equal(t, "CHECK", fields["op"])
	require.Equal(t, true, fields["changed"])
}

func TestLogSinkNilLogger(t *testing.T) {
	t.Parallel()

	sink := NewLogSink(nil)
	require.NoError(t, sink.Consume(context.Background(), []events.Event{{Op: events.OpAdd}}))
}
