package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bistrobook/config"
	"bistrobook/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client  *redis.Client
	menuTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, menuTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:  redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		menuTTL: menuTTL,
	}
}

func (c *RedisCache) GetMenu(ctx context.Context, locale string) ([]domain.MenuCategory, error) {
	data, err := c.client.Get(ctx, menuKey(locale)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var categories []domain.MenuCategory
	if err := json.Unmarshal(data, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *RedisCache) SetMenu(ctx context.Context, locale string, categories []domain.MenuCategory) error {
	payload, err := json.Marshal(categories)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, menuKey(locale), payload, c.menuTTL).Err()
}

// InvalidateMenu drops every cached locale after a menu write.
func (c *RedisCache) InvalidateMenu(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, "cache:menu:*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// AcquireSlotLock serializes concurrent booking attempts on the same
// (table, time) slot. It is a fast-path courtesy; the database constraint
// stays the arbiter.
func (c *RedisCache) AcquireSlotLock(ctx context.Context, tableID int64, at time.Time, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, slotLockKey(tableID, at), "locked", ttl).Result()
}

func (c *RedisCache) ReleaseSlotLock(ctx context.Context, tableID int64, at time.Time) error {
	return c.client.Del(ctx, slotLockKey(tableID, at)).Err()
}

func menuKey(locale string) string {
	return "cache:menu:" + locale
}

func slotLockKey(tableID int64, at time.Time) string {
	return fmt.Sprintf("lock:table:%d:slot:%d", tableID, at.Unix())
}
