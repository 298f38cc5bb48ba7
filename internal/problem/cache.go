package problem

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultCacheTTL = 5 * time.Minute

// ProblemCache stores full problem records by id. Each id carries a
// generation that Invalidate bumps; Fill only writes when the generation read
// before loading from the store is still current, so a slow reader cannot
// put back a record that a later write already replaced or removed.
type ProblemCache interface {
	Get(ctx context.Context, id int64) (*Problem, error)
	Version(ctx context.Context, id int64) (int64, error)
	Fill(ctx context.Context, p Problem, version int64) error
	Invalidate(ctx context.Context, id int64) error
}

// fillScript sets KEYS[1] only while KEYS[2] (the generation) equals ARGV[1].
var fillScript = redis.NewScript(`
local current = redis.call("GET", KEYS[2])
if (current or "0") ~= ARGV[1] then
  return 0
end
redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
return 1
`)

// Cache is the Redis-backed ProblemCache.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ ProblemCache = (*Cache)(nil)

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Cache{client: client, ttl: ttl}
}

func cacheKey(id int64) string {
	return "problem:" + strconv.FormatInt(id, 10)
}

func versionKey(id int64) string {
	return cacheKey(id) + ":gen"
}

// Get returns nil, nil on a miss.
func (c *Cache) Get(ctx context.Context, id int64) (*Problem, error) {
	data, err := c.client.Get(ctx, cacheKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var p Problem
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Version returns 0 for an id that was never invalidated.
func (c *Cache) Version(ctx context.Context, id int64) (int64, error) {
	v, err := c.client.Get(ctx, versionKey(id)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return v, err
}

func (c *Cache) Fill(ctx context.Context, p Problem, version int64) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	keys := []string{cacheKey(p.ID), versionKey(p.ID)}
	return fillScript.Run(ctx, c.client, keys, strconv.FormatInt(version, 10), data, c.ttl.Milliseconds()).Err()
}

// Invalidate drops the record and bumps its generation. The generation
// outlives the record so fills started before the bump stay rejected.
func (c *Cache) Invalidate(ctx context.Context, id int64) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, versionKey(id))
		pipe.Expire(ctx, versionKey(id), 2*c.ttl)
		pipe.Del(ctx, cacheKey(id))
		return nil
	})
	return err
}
