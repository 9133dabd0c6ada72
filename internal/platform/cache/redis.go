package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"employee_manager/internal/platform/config"

	"github.com/redis/go-redis/v9"
)

// Connect builds the Redis client and verifies the connection.
func Connect(cfg *config.Config) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx := context.Background()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatalf("Could not connect to Redis: %v", err)
	}
	log.Println("Successfully connected to Redis")
	return rdb
}

func Close(rdb *redis.Client) {
	if rdb != nil {
		rdb.Close()
		log.Println("Redis connection closed.")
	}
}

// EmployeeCache is a read-through cache for employee list and lookup
// responses. A nil receiver or nil client disables caching, so callers and
// tests can run without Redis. Redis failures degrade to the database
// silently; the cache is never authoritative.
type EmployeeCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewEmployeeCache(rdb *redis.Client, ttl time.Duration) *EmployeeCache {
	return &EmployeeCache{rdb: rdb, ttl: ttl}
}

const listKey = "employees:list"

func employeeKey(id string) string { return "employees:id:" + id }

// get unmarshals the cached value for key into dest. The bool reports a hit.
func (c *EmployeeCache) get(ctx context.Context, key string, dest interface{}) bool {
	if c == nil || c.rdb == nil {
		return false
	}
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false
	}
	return true
}

func (c *EmployeeCache) set(ctx context.Context, key string, value interface{}) {
	if c == nil || c.rdb == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		log.Printf("WARN: failed to cache %s: %v", key, err)
	}
}

func (c *EmployeeCache) GetList(ctx context.Context, dest interface{}) bool {
	return c.get(ctx, listKey, dest)
}

func (c *EmployeeCache) SetList(ctx context.Context, value interface{}) {
	c.set(ctx, listKey, value)
}

func (c *EmployeeCache) GetEmployee(ctx context.Context, id string, dest interface{}) bool {
	return c.get(ctx, employeeKey(id), dest)
}

func (c *EmployeeCache) SetEmployee(ctx context.Context, id string, value interface{}) {
	c.set(ctx, employeeKey(id), value)
}

// Invalidate drops the list key and, when an id is given, the record key.
// Called after every mutation.
func (c *EmployeeCache) Invalidate(ctx context.Context, ids ...string) {
	if c == nil || c.rdb == nil {
		return
	}
	keys := []string{listKey}
	for _, id := range ids {
		keys = append(keys, employeeKey(id))
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		log.Printf("WARN: failed to invalidate employee cache: %v", err)
	}
}
