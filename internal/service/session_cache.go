package service

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"lost-university/backend/pkg/redis"
)

// SessionCache 会话计划缓存：每个会话一个槽位，保存最近一次规范化后的计划文本
type SessionCache interface {
	Load(ctx context.Context, sessionID string) (string, bool, error)
	Save(ctx context.Context, sessionID, text string) error
}

// NewSessionCache Redis 可用时使用 Redis，否则降级为进程内缓存（最多 size 个会话）
func NewSessionCache(rdb *redis.Client, ttl time.Duration, size int) SessionCache {
	if rdb != nil {
		return &redisSessionCache{rdb: rdb, ttl: ttl}
	}
	return newMemorySessionCache(size, ttl)
}

// ── Redis ──

type redisSessionCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func (c *redisSessionCache) Load(ctx context.Context, sessionID string) (string, bool, error) {
	return c.rdb.LoadPlan(ctx, sessionID)
}

func (c *redisSessionCache) Save(ctx context.Context, sessionID, text string) error {
	return c.rdb.SavePlan(ctx, sessionID, text, c.ttl)
}

// ── 进程内 ──

// memorySessionCache 超过上限时淘汰最久未使用的会话，过期条目由 LRU 自行清理
type memorySessionCache struct {
	lru *expirable.LRU[string, string]
}

func newMemorySessionCache(size int, ttl time.Duration) *memorySessionCache {
	return &memorySessionCache{lru: expirable.NewLRU[string, string](size, nil, ttl)}
}

func (c *memorySessionCache) Load(_ context.Context, sessionID string) (string, bool, error) {
	text, ok := c.lru.Get(sessionID)
	return text, ok, nil
}

func (c *memorySessionCache) Save(_ context.Context, sessionID, text string) error {
	c.lru.Add(sessionID, text)
	return nil
}
