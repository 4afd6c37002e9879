package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"goblin_bot/internal/models"
)

const keyPrefix = "goblin:plan:"

// PlanCache stores assembled plans between the preview message and the user's
// execute tap. Entries expire; a missed TTL means the user re-plans.
type PlanCache interface {
	Put(ctx context.Context, plan models.StoredPlan, ttl time.Duration) error
	Get(ctx context.Context, id string) (models.StoredPlan, bool, error)
	Delete(ctx context.Context, id string) error
}

// New returns a Redis-backed cache when enabled and reachable, otherwise an
// in-process cache. A single instance of the bot never needs more than memory;
// Redis is for surviving restarts with pending plans.
func New(ctx context.Context, redisEnabled bool, redisAddr string) PlanCache {
	if redisEnabled {
		client := redis.NewClient(&redis.Options{Addr: redisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("⚠️ Redis unreachable at %s (%v), falling back to memory cache", redisAddr, err)
		} else {
			log.Printf("✅ Plan cache backed by Redis at %s", redisAddr)
			return &RedisCache{client: client}
		}
	}
	return NewMemoryCache()
}

// RedisCache stores plans as JSON under goblin:plan:<id>.
type RedisCache struct {
	client *redis.Client
}

func (c *RedisCache) Put(ctx context.Context, plan models.StoredPlan, ttl time.Duration) error {
	payload, err := json.Marshal(plan)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, keyPrefix+plan.ID, payload, ttl).Err()
}

func (c *RedisCache) Get(ctx context.Context, id string) (models.StoredPlan, bool, error) {
	payload, err := c.client.Get(ctx, keyPrefix+id).Bytes()
	if err == redis.Nil {
		return models.StoredPlan{}, false, nil
	}
	if err != nil {
		return models.StoredPlan{}, false, fmt.Errorf("redis get: %w", err)
	}
	var plan models.StoredPlan
	if err := json.Unmarshal(payload, &plan); err != nil {
		return models.StoredPlan{}, false, err
	}
	return plan, true, nil
}

func (c *RedisCache) Delete(ctx context.Context, id string) error {
	return c.client.Del(ctx, keyPrefix+id).Err()
}

// MemoryCache is the zero-dependency fallback.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	plan      models.StoredPlan
	expiresAt time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry)}
}

func (c *MemoryCache) Put(_ context.Context, plan models.StoredPlan, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[plan.ID] = memoryEntry{plan: plan, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (c *MemoryCache) Get(_ context.Context, id string) (models.StoredPlan, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[id]
	if !ok {
		return models.StoredPlan{}, false, nil
	}
	if time.Now().After(entry.expiresAt) {
		delete(c.entries, id)
		return models.StoredPlan{}, false, nil
	}
	return entry.plan, true, nil
}

func (c *MemoryCache) Delete(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
	return nil
}
