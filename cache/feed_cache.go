// Package cache 推荐流分页缓存
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"adaptive_coach/logger"
	"adaptive_coach/models"
)

// Redis 基于 Redis 的分页缓存，读写失败只记录日志
type Redis struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedis 创建客户端并 ping 一次
func NewRedis(addr, password string, db int, ttl time.Duration) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisWithClient(rdb, ttl), nil
}

func NewRedisWithClient(rdb *redis.Client, ttl time.Duration) *Redis {
	return &Redis{rdb: rdb, ttl: ttl}
}

func (c *Redis) Get(ctx context.Context, key string) (*models.FeedPage, bool) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn("feed cache get failed", "key", key, "error", err)
		}
		return nil, false
	}
	var page models.FeedPage
	if err := json.Unmarshal(raw, &page); err != nil {
		logger.Warn("feed cache entry corrupt", "key", key, "error", err)
		return nil, false
	}
	return &page, true
}

func (c *Redis) Set(ctx context.Context, key string, page *models.FeedPage) {
	raw, err := json.Marshal(page)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		logger.Warn("feed cache set failed", "key", key, "error", err)
	}
}

// InvalidateUser 删除用户的所有分页缓存
func (c *Redis) InvalidateUser(ctx context.Context, userID string) error {
	iter := c.rdb.Scan(ctx, 0, userPattern(userID), 100).Iterator()
	keys := make([]string, 0)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}

func (c *Redis) Close() error {
	return c.rdb.Close()
}

// Noop 不缓存
type Noop struct{}

func (Noop) Get(context.Context, string) (*models.FeedPage, bool) { return nil, false }
func (Noop) Set(context.Context, string, *models.FeedPage)       {}
func (Noop) InvalidateUser(context.Context, string) error         { return nil }

// FeedKey 分页缓存键：feed:<user>:<date>:<cycle>:<lang>:<limit>:<cursor>:<exclude hash>
func FeedKey(userID, date string, cycle int, lang models.Language, limit, cursor int, exclude []string) string {
	if userID == "" {
		userID = "anon"
	}
	return fmt.Sprintf("feed:%s:%s:%d:%s:%d:%d:%s", userID, date, cycle, lang, limit, cursor, excludeHash(exclude))
}

// SCAN 的通配符需要转义，否则用户 id 里的 * ? [ 会匹配到别人的键
var globEscaper = strings.NewReplacer(`\`, `\\`, "*", `\*`, "?", `\?`, "[", `\[`, "]", `\]`)

func userPattern(userID string) string {
	return "feed:" + globEscaper.Replace(userID) + ":*"
}

func excludeHash(exclude []string) string {
	if len(exclude) == 0 {
		return "0"
	}
	ids := append([]string(nil), exclude...)
	sort.Strings(ids)
	h := fnv.New64a()
	h.Write([]byte(strings.Join(ids, ",")))
	return fmt.Sprintf("%x", h.Sum64())
}
