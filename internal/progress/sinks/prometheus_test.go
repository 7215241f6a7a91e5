package sinks

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/JakeFAU/md-check-link/internal/progress"
)

// TestPrometheusSinkRecordsMetrics ensures counters and histograms are incremented from events.
func TestPrometheusSinkRecordsMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	sink, err := NewPrometheusSink(reg)
	require.NoError(t, err)

	runID := progress.UUIDToBytes(uuid.New())
	now := time.Now()
	batch := []progress.Event{
		{RunID: runID, TS: now, Stage: progress.StageRunStart},
		{
			RunID:       runID,
			TS:          now,
			Stage:       progress.StageLinkResolved,
			Link:        "https://example.com",
			Host:        "example.com",
			Verdict:     "alive",
			StatusClass: progress.Status2xx,
			Attempts:    3,
			Occurrences: 4,
			Dur:         200 * time.Millisecond,
		},
		{
			RunID:       runID,
			TS:          now,
			Stage:       progress.StageLinkResolved,
			Link:        "https://example.com/missing",
			Verdict:     "dead",
			StatusClass: progress.Status4xx,
			Attempts:    1,
			Occurrences: 1,
		},
		{RunID: runID, TS: now, Stage: progress.StageRunDone, Links: 5, Dead: 1, Dur: 2 * time.Second},
	}

	require.NoError(t, sink.Consume(context.Background(), batch))

	require.Equal(t, 1.0, testutil.ToFloat64(sink.runsStarted))
	require.Equal(t, 1.0, testutil.ToFloat64(sink.runsCompleted))
	require.Equal(t, 1.0, testutil.ToFloat64(sink.deadLinks))
	require.InDelta(t, 1.0, testutil.ToFloat64(sink.linkChecks.WithLabelValues("alive", "2xx")), 1e-9)
	require.InDelta(t, 1.0, testutil.ToFloat64(sink.linkChecks.WithLabelValues("dead", "4xx")), 1e-9)
	require.InDelta(t, 2.0, testutil.ToFloat64(sink.linkRetries), 1e-9)
	require.InDelta(t, 5.0, testutil.ToFloat64(sink.linkOccurrence), 1e-9)
	require.Equal(t, 1, testutil.CollectAndCount(sink.linkDuration, "mdcheck_link_duration_seconds"))
	require.Equal(t, 1, testutil.CollectAndCount(sink.runDuration, "mdcheck_run_duration_seconds"))
}

func TestPrometheusSinkDuplicateRegistration(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	_, err := NewPrometheusSink(reg)
	require.NoError(t, err)
	_, err = NewPrometheusSink(reg)
	require.Error(t, err)
}

func TestLogSinkWritesDebugEntries(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.DebugLevel)
	sink := NewLogSink(zap.New(core))

	runID := progress.UUIDToBytes(uuid.New())
	require.NoError(t, sink.Consume(context.Background(), []progress.Event{
		{RunID: runID, TS: time.Now(), Stage: progress.StageRunStart},
		{
			RunID:   runID,
			TS:      time.Now(),
			Stage:   progress.StageLinkResolved,
			Link:    "https://example.com",
			Verdict: "alive",
		},
	}))
	require.NoError(t, sink.Close(context.Background()))

	require.Equal(t, 2, logs.Len())
	entry := logs.All()[1]
	require.Equal(t, "progress event", entry.Message)
	require.Equal(t, "https://example.com", entry.ContextMap()["link"])
	require.Equal(t, "alive", entry.ContextMap()["verdict"])
}
