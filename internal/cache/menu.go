// Package cache provides a Redis read-through cache for menu listings.
package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xenking/food-ordering/internal/domain/menu"
)

const (
	keyPrefix     = "menu:v1:"
	keyAll        = keyPrefix + "all"
	keyCategories = keyPrefix + "categories"
	keyCategory   = keyPrefix + "category:"
)

var _ menu.Repository = (*Menu)(nil)

// Menu wraps a menu.Repository and caches listings in Redis. Cache failures
// are logged and fall through to the wrapped repository. Single items are
// never cached.
type Menu struct {
	next   menu.Repository
	client redis.UniversalClient
	ttl    time.Duration
}

// NewMenu returns a caching menu.Repository in front of next.
func NewMenu(next menu.Repository, client redis.UniversalClient, ttl time.Duration) *Menu {
	return &Menu{next: next, client: client, ttl: ttl}
}

func (m *Menu) ListAvailable(ctx context.Context) ([]menu.Item, error) {
	return readThrough(ctx, m, keyAll, m.next.ListAvailable)
}

func (m *Menu) ListByCategory(ctx context.Context, categoryID int64) ([]menu.Item, error) {
	key := keyCategory + strconv.FormatInt(categoryID, 10)
	return readThrough(ctx, m, key, func(ctx context.Context) ([]menu.Item, error) {
		return m.next.ListByCategory(ctx, categoryID)
	})
}

func (m *Menu) Categories(ctx context.Context) ([]menu.Category, error) {
	return readThrough(ctx, m, keyCategories, m.next.Categories)
}

func (m *Menu) GetByID(ctx context.Context, id int64) (*menu.Item, error) {
	return m.next.GetByID(ctx, id)
}

// Invalidate drops every cached menu listing.
func (m *Menu) Invalidate(ctx context.Context) error {
	var keys []string
	iter := m.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return errors.Wrap(err, "scan menu keys")
	}
	if len(keys) == 0 {
		return nil
	}
	if err := m.client.Del(ctx, keys...).Err(); err != nil {
		return errors.Wrap(err, "delete menu keys")
	}
	return nil
}

func readThrough[T any](ctx context.Context, m *Menu, key string, load func(context.Context) ([]T, error)) ([]T, error) {
	lg := zctx.From(ctx)

	data, err := m.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var out []T
		if err := json.Unmarshal(data, &out); err == nil {
			return out, nil
		}
		lg.Warn("Corrupt menu cache entry", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		lg.Warn("Menu cache read failed", zap.String("key", key), zap.Error(err))
	}

	out, err := load(ctx)
	if err != nil {
		return nil, err
	}

	data, err = json.Marshal(out)
	if err != nil {
		lg.Warn("Menu cache encode failed", zap.String("key", key), zap.Error(err))
		return out, nil
	}
	if err := m.client.Set(ctx, key, data, m.ttl).Err(); err != nil {
		lg.Warn("Menu cache write failed", zap.String("key", key), zap.Error(err))
	}
	return out, nil
}
