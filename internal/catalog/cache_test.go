package catalog

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type countingLookup struct {
	items    map[string]Item
	resolves int
	lists    int
}

func (c *countingLookup) Resolve(ctx context.Context, itemID string) (Item, error) {
	c.resolves++
	item, ok := c.items[itemID]
	if !ok {
		return Item{}, ErrItemNotFound
	}
	return item, nil
}

func (c *countingLookup) List(ctx context.Context) ([]Item, error) {
	c.lists++
	out := make([]Item, 0, len(c.items))
	for _, item := range c.items {
		out = append(out, item)
	}
	return out, nil
}

func newCacheFixture(t *testing.T) (*CachedLookup, *countingLookup, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	inner := &countingLookup{items: map[string]Item{
		"I1": {ID: "I1", Name: "Soap", SellingPrice: 50, NonExpiredStock: 30, Unit: Unit{Code: "pcs"}},
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewCachedLookup(inner, client, time.Minute, logger), inner, mr
}

func TestCachedResolve(t *testing.T) {
	cached, inner, _ := newCacheFixture(t)
	ctx := context.Background()

	item, err := cached.Resolve(ctx, "I1")
	require.NoError(t, err)
	require.Equal(t, 50.0, item.SellingPrice)
	require.Equal(t, 1, inner.resolves)

	item, err = cached.Resolve(ctx, "I1")
	require.NoError(t, err)
	require.Equal(t, "pcs", item.Unit.Code)
	require.Equal(t, 1, inner.resolves)
}

func TestCachedResolveNotFoundNotCached(t *testing.T) {
	cached, inner, _ := newCacheFixture(t)
	ctx := context.Background()

	_, err := cached.Resolve(ctx, "missing")
	require.ErrorIs(t, err, ErrItemNotFound)
	_, err = cached.Resolve(ctx, "missing")
	require.ErrorIs(t, err, ErrItemNotFound)
	require.Equal(t, 2, inner.resolves)
}

func TestCacheExpiry(t *testing.T) {
	cached, inner, mr := newCacheFixture(t)
	ctx := context.Background()

	_, err := cached.Resolve(ctx, "I1")
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)
	_, err = cached.Resolve(ctx, "I1")
	require.NoError(t, err)
	require.Equal(t, 2, inner.resolves)
}

func TestCachedList(t *testing.T) {
	cached, inner, _ := newCacheFixture(t)
	ctx := context.Background()

	items, err := cached.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	_, err = cached.List(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, inner.lists)
}

func TestInvalidate(t *testing.T) {
	cached, inner, _ := newCacheFixture(t)
	ctx := context.Background()

	_, err := cached.Resolve(ctx, "I1")
	require.NoError(t, err)
	_, err = cached.List(ctx)
	require.NoError(t, err)

	require.NoError(t, cached.Invalidate(ctx, "I1"))

	_, err = cached.Resolve(ctx, "I1")
	require.NoError(t, err)
	_, err = cached.List(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, inner.resolves)
	require.Equal(t, 2, inner.lists)
}

func TestCacheFailureDegradesToInner(t *testing.T) {
	cached, inner, mr := newCacheFixture(t)
	mr.Close()

	item, err := cached.Resolve(context.Background(), "I1")
	require.NoError(t, err)
	require.Equal(t, "Soap", item.Name)
	require.Equal(t, 1, inner.resolves)
}

func TestAvailableStock(t *testing.T) {
	regular := Item{StockOnHand: 8, NonExpiredStock: 2}
	require.Equal(t, 2.0, regular.AvailableStock())

	expiredOK := Item{StockOnHand: 8, NonExpiredStock: 2, ExpiredSaleEnabled: true}
	require.Equal(t, 8.0, expiredOK.AvailableStock())
}
