package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MikeRez0/tutorpay/internal/adapter/config"
	"github.com/MikeRez0/tutorpay/internal/core/domain"
	"github.com/MikeRez0/tutorpay/internal/core/port"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix   = "tutorpay:notify:"
	alertPrefix = "tutorpay:alert:"
	defaultTTL  = 72 * time.Hour
)

func ConnectRedis(ctx context.Context, cfg *config.Redis) (redis.UniversalClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  time.Second,
		ReadTimeout:  400 * time.Millisecond,
		WriteTimeout: 400 * time.Millisecond,
		PoolTimeout:  750 * time.Millisecond,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return rdb, nil
}

// NotifyCache keeps the terminal status of finalized orders in Redis.
type NotifyCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

var _ port.NotifyCache = (*NotifyCache)(nil)

func NewNotifyCache(client redis.UniversalClient, ttl time.Duration) *NotifyCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &NotifyCache{client: client, ttl: ttl}
}

func (c *NotifyCache) IsProcessed(ctx context.Context, orderID string) (bool, error) {
	n, err := c.client.Exists(ctx, keyPrefix+orderID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (c *NotifyCache) MarkProcessed(ctx context.Context, orderID string, status domain.PaymentStatus) error {
	return c.client.Set(ctx, keyPrefix+orderID, string(status), c.ttl).Err()
}

func (c *NotifyCache) ClaimAlert(ctx context.Context, key string, window time.Duration) (bool, error) {
	return c.client.SetNX(ctx, alertPrefix+key, 1, window).Result()
}

// Local is the in-process NotifyCache used when no Redis is configured.
type Local struct {
	processed sync.Map

	mu     sync.Mutex
	alerts map[string]time.Time
}

var _ port.NotifyCache = (*Local)(nil)

func NewLocal() *Local {
	return &Local{alerts: make(map[string]time.Time)}
}

func (c *Local) IsProcessed(_ context.Context, orderID string) (bool, error) {
	_, ok := c.processed.Load(orderID)
	return ok, nil
}

func (c *Local) MarkProcessed(_ context.Context, orderID string, status domain.PaymentStatus) error {
	c.processed.Store(orderID, status)
	return nil
}

func (c *Local) ClaimAlert(_ context.Context, key string, window time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	at := time.Now()
	for k, expires := range c.alerts {
		if !at.Before(expires) {
			delete(c.alerts, k)
		}
	}
	if _, ok := c.alerts[key]; ok {
		return false, nil
	}
	c.alerts[key] = at.Add(window)
	return true, nil
}
