package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/oggyb/crush-radar/internal/config"
)

const (
	defaultCountTTL   = time.Hour
	defaultGuardTTL   = 5 * time.Second
	defaultSessionTTL = 30 * time.Minute
)

// releaseScript deletes a guard key only if it still holds our token, so a
// guard that expired and was re-acquired elsewhere is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// setIfGenScript stores KEYS[1] only while the generation counter in KEYS[2]
// still equals ARGV[1]. A missing counter reads as "0".
var setIfGenScript = redis.NewScript(`
local cur = redis.call("GET", KEYS[2]) or "0"
if cur == ARGV[1] then
	redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
	return 1
end
return 0`)

// dropScript bumps the generation counter in KEYS[2] and deletes KEYS[1].
var dropScript = redis.NewScript(`
redis.call("INCR", KEYS[2])
redis.call("PEXPIRE", KEYS[2], ARGV[1])
return redis.call("DEL", KEYS[1])`)

type RedisCache struct {
	Client *redis.Client

	countTTL   time.Duration
	guardTTL   time.Duration
	sessionTTL time.Duration
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{
		Client:     redis.NewClient(opts),
		countTTL:   orDefault(cfg.Crush.CountTTL, defaultCountTTL),
		guardTTL:   orDefault(cfg.Crush.ToggleGuardTTL, defaultGuardTTL),
		sessionTTL: orDefault(cfg.Crush.SessionTTL, defaultSessionTTL),
	}
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.Client.Close()
}

// KeyForCrushCount generates Redis key for a viewer's sent-crush count
func (c *RedisCache) KeyForCrushCount(viewer string) string {
	return fmt.Sprintf("crushes:count:%s", viewer)
}

func (c *RedisCache) KeyForCrushCountGen(viewer string) string {
	return fmt.Sprintf("crushes:count:gen:%s", viewer)
}

func (c *RedisCache) KeyForToggle(key string) string {
	return fmt.Sprintf("crushes:toggle:%s", key)
}

func (c *RedisCache) KeyForRevokedToken(jti string) string {
	return fmt.Sprintf("auth:revoked:%s", jti)
}

func (c *RedisCache) KeyForSession(id string) string {
	return fmt.Sprintf("session:view:%s", id)
}

func (c *RedisCache) KeyForSessionGen(id string) string {
	return fmt.Sprintf("session:view:gen:%s", id)
}

// generation reads a counter written by dropScript; absent means 0.
func (c *RedisCache) generation(ctx context.Context, key string) (int64, error) {
	n, err := c.Client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// setIfGen writes value under key unless genKey moved past gen.
func (c *RedisCache) setIfGen(ctx context.Context, key, genKey string, gen int64, value interface{}, ttl time.Duration) (bool, error) {
	n, err := setIfGenScript.Run(ctx, c.Client, []string{key, genKey}, gen, value, ttl.Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// drop deletes key and bumps genKey. The counter outlives the value so an
// in-flight reader cannot see it reset.
func (c *RedisCache) drop(ctx context.Context, key, genKey string, ttl time.Duration) error {
	return dropScript.Run(ctx, c.Client, []string{key, genKey}, (2 * ttl).Milliseconds()).Err()
}

// GetCrushCount reports ok=false on a cache miss.
func (c *RedisCache) GetCrushCount(ctx context.Context, viewer string) (int64, bool, error) {
	key := c.KeyForCrushCount(viewer)
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil // cache miss
	} else if err != nil {
		return 0, false, err
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		// corrupt entry behaves as a miss and gets overwritten
		return 0, false, nil
	}
	// refresh TTL on access
	_ = c.Client.Expire(ctx, key, c.countTTL).Err()
	return n, true, nil
}

// CrushCountGeneration is read before loading a count from the store and
// handed back to SetCrushCount.
func (c *RedisCache) CrushCountGeneration(ctx context.Context, viewer string) (int64, error) {
	return c.generation(ctx, c.KeyForCrushCountGen(viewer))
}

// SetCrushCount caches n unless DropCrushCount ran since gen was read.
// stored=false means the value was discarded.
func (c *RedisCache) SetCrushCount(ctx context.Context, viewer string, n, gen int64) (bool, error) {
	return c.setIfGen(ctx, c.KeyForCrushCount(viewer), c.KeyForCrushCountGen(viewer), gen, n, c.countTTL)
}

func (c *RedisCache) DropCrushCount(ctx context.Context, viewer string) error {
	return c.drop(ctx, c.KeyForCrushCount(viewer), c.KeyForCrushCountGen(viewer), c.countTTL)
}

// Acquire takes a short-lived SET NX PX lock on key. ok=false means another
// caller holds it. The lock expires on its own if release is never called.
func (c *RedisCache) Acquire(ctx context.Context, key string) (func(), bool, error) {
	rkey := c.KeyForToggle(key)
	token := uuid.NewString()

	ok, err := c.Client.SetNX(ctx, rkey, token, c.guardTTL).Result()
	if err != nil || !ok {
		return nil, false, err
	}
	release := func() {
		// detached: the request context may already be done
		_ = releaseScript.Run(context.Background(), c.Client, []string{rkey}, token).Err()
	}
	return release, true, nil
}

// Revoke marks a token ID as signed out until ttl passes.
func (c *RedisCache) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return c.Client.Set(ctx, c.KeyForRevokedToken(jti), 1, ttl).Err()
}

func (c *RedisCache) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := c.Client.Exists(ctx, c.KeyForRevokedToken(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// GetSessionView returns the cached JSON view, ok=false on miss.
func (c *RedisCache) GetSessionView(ctx context.Context, id string) ([]byte, bool, error) {
	b, err := c.Client.Get(ctx, c.KeyForSession(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (c *RedisCache) SessionGeneration(ctx context.Context, id string) (int64, error) {
	return c.generation(ctx, c.KeyForSessionGen(id))
}

// SetSessionView caches view unless DropSessionView ran since gen was read.
func (c *RedisCache) SetSessionView(ctx context.Context, id string, view []byte, gen int64) (bool, error) {
	return c.setIfGen(ctx, c.KeyForSession(id), c.KeyForSessionGen(id), gen, view, c.sessionTTL)
}

func (c *RedisCache) DropSessionView(ctx context.Context, id string) error {
	return c.drop(ctx, c.KeyForSession(id), c.KeyForSessionGen(id), c.sessionTTL)
}
