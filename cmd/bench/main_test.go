package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/erain9/chunkbook/pkg/core"
	"github.com/erain9/chunkbook/pkg/events"
	"github.com/erain9/chunkbook/pkg/simulator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEvents(t *testing.T, n int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.txt")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, simulator.NewSeeded(5).Write(f, n))
	require.NoError(t, f.Close())
	return path
}

func TestRun_Report(t *testing.T) {
	path := writeEvents(t, 2000)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-i", path, "-runs", "2", "-max-chunk-size", "8"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	out := stdout.String()
	assert.Contains(t, out, "2000 events x 2 runs, max chunk size 8")
	for _, label := range []string{"p50", "p90", "p99", "p99.9", "max", "mean", "ev/s"} {
		assert.Contains(t, out, label)
	}
}

func TestBench_CountsEveryEvent(t *testing.T) {
	evs := []events.Event{
		events.NewCreate(core.Buy, 1, 1),
		events.NewUpdate(0, 2),
		events.NewRemove(5),
		{Kind: events.Bids},
	}

	hist, elapsed, err := bench(context.Background(), evs, options{runs: 3, maxChunkSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(12), hist.TotalCount())
	assert.Positive(t, elapsed)
}

func TestBench_RateLimited(t *testing.T) {
	evs := []events.Event{{Kind: events.Asks}, {Kind: events.Asks}, {Kind: events.Asks}}

	start := time.Now()
	_, _, err := bench(context.Background(), evs, options{runs: 1, maxChunkSize: 4, rate: 20})
	require.NoError(t, err)
	// Burst of one: the second and third events each wait ~50ms
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}

func TestBench_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := bench(ctx, []events.Event{{Kind: events.Bids}}, options{runs: 1, maxChunkSize: 4})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_BadArguments(t *testing.T) {
	var stdout, stderr bytes.Buffer
	ctx := context.Background()

	assert.Equal(t, 2, run(ctx, nil, &stdout, &stderr))
	assert.Equal(t, 2, run(ctx, []string{"-i", "x", "-runs", "0"}, &stdout, &stderr))
	assert.Equal(t, 2, run(ctx, []string{"-i", "x", "-max-chunk-size", "9223372036854775807"}, &stdout, &stderr))
	assert.Equal(t, 1, run(ctx, []string{"-i", filepath.Join(t.TempDir(), "missing")}, &stdout, &stderr))
}
