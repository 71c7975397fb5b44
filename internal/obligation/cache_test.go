package obligation

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute)
}

func TestCacheFetchJSONPopulatesOnMiss(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	key, err := c.BuildKey(ctx, "forecast", "PAYABLE", "6")
	require.NoError(t, err)

	calls := 0
	loader := func(ctx context.Context) (interface{}, error) {
		calls++
		return map[string]int{"value": 42}, nil
	}

	var first map[string]int
	require.NoError(t, c.FetchJSON(ctx, key, &first, loader))
	require.Equal(t, 42, first["value"])
	require.Equal(t, 1, calls)

	var second map[string]int
	require.NoError(t, c.FetchJSON(ctx, key, &second, loader))
	require.Equal(t, 42, second["value"])
	require.Equal(t, 1, calls, "second fetch must hit the cache")
}

func TestCacheBumpInvalidatesKeys(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	before, err := c.BuildKey(ctx, "forecast", "PAYABLE", "6")
	require.NoError(t, err)

	require.NoError(t, c.Bump(ctx))

	after, err := c.BuildKey(ctx, "forecast", "PAYABLE", "6")
	require.NoError(t, err)
	require.NotEqual(t, before, after)
}

func TestCacheNilDegradesToLoader(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	key, err := c.BuildKey(ctx, "forecast", "AR")
	require.NoError(t, err)

	var out map[string]string
	err = c.FetchJSON(ctx, key, &out, func(ctx context.Context) (interface{}, error) {
		return map[string]string{"mode": "direct"}, nil
	})
	require.NoError(t, err)
	require.Equal(t, "direct", out["mode"])
	require.NoError(t, c.Bump(ctx))
}

func TestKeyForecastDistinguishesFilters(t *testing.T) {
	base := keyForecast(SidePayable, 6, ForecastFilter{})
	fixed := keyForecast(SidePayable, 6, ForecastFilter{CostType: CostTypeFixed})
	otherSide := keyForecast(SideReceivable, 6, ForecastFilter{})

	require.NotEqual(t, base, fixed)
	require.NotEqual(t, base, otherSide)
}
