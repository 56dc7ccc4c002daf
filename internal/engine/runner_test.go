package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memorySink struct {
	indexes []int
	results []Result
}

func (m *memorySink) WriteHousehold(_ context.Context, index int, r Result) error {
	m.indexes = append(m.indexes, index)
	m.results = append(m.results, r)
	return nil
}

func TestRunDeliversInOrder(t *testing.T) {
	sink := &memorySink{}
	r := &Runner{Seed: 100, Households: 12, Years: 5, Workers: 4, ReportEvery: 5}

	stats, err := r.Run(context.Background(), sink)
	require.NoError(t, err)

	assert.Equal(t, 12, stats.Households)
	assert.Equal(t, stats.Households, stats.Inforce+stats.Lapsed)
	require.Len(t, sink.results, 12)
	for i, res := range sink.results {
		assert.Equal(t, i, sink.indexes[i])
		assert.Equal(t, i, res.Index)
		assert.Equal(t, int64(100+i), res.Seed)
		assert.Equal(t, res.Household.ID, res.Summary["household_id"])
		assert.Len(t, res.Vehicles, len(res.Household.Vehicles))
	}
}

func TestRunIsReproducibleAcrossWorkerCounts(t *testing.T) {
	run := func(workers int) []Result {
		sink := &memorySink{}
		r := &Runner{Seed: 9, Households: 8, Years: 10, Workers: workers}
		_, err := r.Run(context.Background(), sink)
		require.NoError(t, err)
		return sink.results
	}

	serial, parallel := run(1), run(6)
	require.Len(t, parallel, len(serial))
	for i := range serial {
		assert.Equal(t, serial[i].Summary, parallel[i].Summary)
		assert.Equal(t, serial[i].Vehicles, parallel[i].Vehicles)
		assert.Len(t, parallel[i].Claims, len(serial[i].Claims))
	}
}

func TestSimulateMatchesRun(t *testing.T) {
	r := &Runner{Seed: 3, Households: 3, Years: 4, Workers: 2}
	sink := &memorySink{}
	_, err := r.Run(context.Background(), sink)
	require.NoError(t, err)

	res, err := r.Simulate(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, sink.results[2].Summary, res.Summary)
}

func TestSinkErrorStopsRun(t *testing.T) {
	boom := errors.New("disk full")
	writes := 0
	sink := SinkFunc(func(_ context.Context, index int, _ Result) error {
		writes++
		if index == 2 {
			return boom
		}
		return nil
	})

	r := &Runner{Seed: 1, Households: 20, Years: 2, Workers: 3}
	_, err := r.Run(context.Background(), sink)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 3, writes)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &Runner{Seed: 1, Households: 50, Years: 30, Workers: 2}
	_, err := r.Run(ctx, &memorySink{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestRunValidates(t *testing.T) {
	for _, r := range []*Runner{
		{Households: -1, Workers: 1},
		{Households: 1, Years: -1, Workers: 1},
		{Households: 1, Workers: 0},
	} {
		_, err := r.Run(context.Background(), &memorySink{})
		require.ErrorIs(t, err, ErrInvalidRunner)
	}
}

func TestRunEmpty(t *testing.T) {
	stats, err := (&Runner{Workers: 1}).Run(context.Background(), &memorySink{})
	require.NoError(t, err)
	assert.Zero(t, stats.Households)
}

func TestRunBoundsWorkAheadOfSink(t *testing.T) {
	var done atomic.Int32
	r := &Runner{Seed: 5, Households: 30, Years: 2, Workers: 2}
	r.simulated = func(int) { done.Add(1) }

	var aheadAtFirstWrite int32
	sink := SinkFunc(func(_ context.Context, index int, _ Result) error {
		if index == 0 {
			// Give the workers time to run as far ahead as they can.
			time.Sleep(200 * time.Millisecond)
			aheadAtFirstWrite = done.Load()
		}
		return nil
	})

	stats, err := r.Run(context.Background(), sink)
	require.NoError(t, err)
	assert.Equal(t, 30, stats.Households)
	assert.Equal(t, int32(30), done.Load())
	assert.LessOrEqual(t, aheadAtFirstWrite, int32(r.maxAhead()))
	assert.Positive(t, aheadAtFirstWrite)
}
