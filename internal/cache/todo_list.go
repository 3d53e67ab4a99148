// Package cache keeps each owner's todo list in Redis between writes.
package cache

import (
    "context"
    "encoding/json"
    "strconv"
    "time"

    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/todo-api/internal/config"
    "github.com/iliyamo/todo-api/internal/model"
)

// TodoLists caches the result of listing one owner's todos.  Every write
// to an owner's todos must call Invalidate for that owner.  A nil
// *TodoLists, a disabled config or a nil Redis client turn every call into
// a no-op/miss, and Redis errors are treated as misses too.
type TodoLists struct {
    rdb    *redis.Client
    ttl    time.Duration
    prefix string
}

// NewTodoLists returns nil when caching is disabled or rdb is nil.
func NewTodoLists(cfg config.CacheConfig, rdb *redis.Client) *TodoLists {
    if !cfg.Enabled || rdb == nil {
        return nil
    }
    ttl := cfg.TTL
    if ttl <= 0 {
        ttl = 30 * time.Second
    }
    prefix := cfg.Prefix
    if prefix == "" {
        prefix = "todos"
    }
    return &TodoLists{rdb: rdb, ttl: ttl, prefix: prefix}
}

// Key returns the Redis key holding ownerID's list.
func (c *TodoLists) Key(ownerID uint64) string {
    return c.prefix + ":owner:" + strconv.FormatUint(ownerID, 10)
}

// Get returns the cached list and true on a hit.
func (c *TodoLists) Get(ctx context.Context, ownerID uint64) ([]model.Todo, bool) {
    if c == nil {
        return nil, false
    }
    bs, err := c.rdb.Get(ctx, c.Key(ownerID)).Bytes()
    if err != nil {
        return nil, false
    }
    var out []model.Todo
    if err := json.Unmarshal(bs, &out); err != nil {
        return nil, false
    }
    return out, true
}

// Set stores list for ownerID.
func (c *TodoLists) Set(ctx context.Context, ownerID uint64, list []model.Todo) {
    if c == nil {
        return
    }
    bs, err := json.Marshal(list)
    if err != nil {
        return
    }
    _ = c.rdb.Set(ctx, c.Key(ownerID), bs, c.ttl).Err()
}

// Invalidate drops ownerID's cached list.
func (c *TodoLists) Invalidate(ctx context.Context, ownerID uint64) error {
    if c == nil {
        return nil
    }
    return c.rdb.Del(ctx, c.Key(ownerID)).Err()
}
