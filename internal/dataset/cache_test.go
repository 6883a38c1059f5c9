package dataset

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/couchcryptid/collision-dashboard/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	calls atomic.Int32
	err   error
}

func (s *countingSource) Load(_ context.Context, maxRows int) (*Dataset, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return New(nil, maxRows, LoadStats{}), nil
}

func TestCache_MemoizesByRowCount(t *testing.T) {
	src := &countingSource{}
	metrics := observability.NewMetricsForTesting()
	c := NewCache(src, 2, metrics)

	a, err := c.Get(context.Background(), 100)
	require.NoError(t, err)
	b, err := c.Get(context.Background(), 100)
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.Equal(t, int32(1), src.calls.Load())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.DatasetCache.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.DatasetCache.WithLabelValues("miss")))

	other, err := c.Get(context.Background(), 50)
	require.NoError(t, err)
	assert.Equal(t, 50, other.MaxRows)
	assert.Equal(t, int32(2), src.calls.Load())
}

func TestCache_ConcurrentMissesLoadOnce(t *testing.T) {
	src := &countingSource{}
	c := NewCache(src, 2, observability.NewMetricsForTesting())

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Get(context.Background(), 10)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), src.calls.Load())
}

func TestCache_ErrorsAreNotCached(t *testing.T) {
	src := &countingSource{err: errors.New("disk gone")}
	c := NewCache(src, 2, observability.NewMetricsForTesting())

	_, err := c.Get(context.Background(), 10)
	require.Error(t, err)
	_, err = c.Get(context.Background(), 10)
	require.Error(t, err)

	assert.Equal(t, int32(2), src.calls.Load())
}

func TestCache_CheckReadiness(t *testing.T) {
	c := NewCache(&countingSource{}, 2, observability.NewMetricsForTesting())

	require.Error(t, c.CheckReadiness(context.Background()))

	_, err := c.Get(context.Background(), 10)
	require.NoError(t, err)
	assert.NoError(t, c.CheckReadiness(context.Background()))
}

func TestCache_PreloadedDatasetSurvivesEviction(t *testing.T) {
	src := &countingSource{}
	metrics := observability.NewMetricsForTesting()
	c := NewCache(src, 1, metrics)

	startup, err := c.Preload(context.Background(), 1000)
	require.NoError(t, err)
	require.NoError(t, c.CheckReadiness(context.Background()))

	for _, rows := range []int{10, 20, 30} {
		_, err := c.Get(context.Background(), rows)
		require.NoError(t, err)
	}

	got, err := c.Get(context.Background(), 1000)
	require.NoError(t, err)
	assert.Same(t, startup, got)
	assert.Equal(t, int32(4), src.calls.Load(), "startup dataset is never reloaded")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.DatasetCache.WithLabelValues("hit")))
}

func TestCache_PreloadError(t *testing.T) {
	c := NewCache(&countingSource{err: errors.New("no such file")}, 1, observability.NewMetricsForTesting())

	_, err := c.Preload(context.Background(), 1000)
	require.Error(t, err)
	assert.Error(t, c.CheckReadiness(context.Background()))
}
