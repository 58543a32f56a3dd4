package dashboard

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	calls int
	stats Stats
	err   error
}

func (s *countingSource) CollectStats(ctx context.Context) (Stats, error) {
	s.calls++
	return s.stats, s.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newCachedService(t *testing.T, source StatsSource) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewService(source, client, testLogger()), mr
}

func TestStatsCaching(t *testing.T) {
	source := &countingSource{stats: Stats{TotalProducts: 12, LowStockCount: 3, PendingReceipts: 2, PendingDeliveries: 4}}
	svc, _ := newCachedService(t, source)
	ctx := context.Background()

	first, err := svc.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(12), first.TotalProducts)
	require.Equal(t, 1, source.calls)
	require.False(t, first.GeneratedAt.IsZero())

	// second call is served from cache
	second, err := svc.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, first.TotalProducts, second.TotalProducts)
	require.Equal(t, 1, source.calls)
}

func TestStatsCacheExpiry(t *testing.T) {
	source := &countingSource{stats: Stats{TotalProducts: 5}}
	svc, mr := newCachedService(t, source)
	ctx := context.Background()

	_, err := svc.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, source.calls)

	mr.FastForward(statsCacheTTL * 2)

	_, err = svc.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, source.calls)
}

func TestStatsInvalidate(t *testing.T) {
	source := &countingSource{stats: Stats{TotalWarehouses: 2}}
	svc, _ := newCachedService(t, source)
	ctx := context.Background()

	_, err := svc.Stats(ctx)
	require.NoError(t, err)

	svc.Invalidate(ctx)

	_, err = svc.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, source.calls)
}

func TestStatsWithoutCache(t *testing.T) {
	source := &countingSource{stats: Stats{PendingReceipts: 7}}
	svc := NewService(source, nil, testLogger())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		stats, err := svc.Stats(ctx)
		require.NoError(t, err)
		require.Equal(t, int64(7), stats.PendingReceipts)
	}
	require.Equal(t, 3, source.calls)
}
