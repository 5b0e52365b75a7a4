package service

import (
	"context"
	"testing"
	"time"
)

func TestMemorySessionCache_SaveLoad(t *testing.T) {
	cache := newMemorySessionCache(100, time.Hour)
	ctx := context.Background()

	if _, ok, _ := cache.Load(ctx, "s1"); ok {
		t.Fatal("空缓存不应命中")
	}
	_ = cache.Save(ctx, "s1", "#/plan/AD1")
	_ = cache.Save(ctx, "s2", "#/plan/DBS")

	text, ok, err := cache.Load(ctx, "s1")
	if err != nil || !ok || text != "#/plan/AD1" {
		t.Errorf("期望命中 #/plan/AD1，实际 %q ok=%v err=%v", text, ok, err)
	}

	// 每个会话一个槽位，后写覆盖
	_ = cache.Save(ctx, "s1", "#/plan/AD2")
	text, _, _ = cache.Load(ctx, "s1")
	if text != "#/plan/AD2" {
		t.Errorf("期望覆盖为 #/plan/AD2，实际 %q", text)
	}
	text, _, _ = cache.Load(ctx, "s2")
	if text != "#/plan/DBS" {
		t.Errorf("会话之间不应互相影响，实际 %q", text)
	}
}

func TestMemorySessionCache_Expiry(t *testing.T) {
	cache := newMemorySessionCache(100, 50*time.Millisecond)
	ctx := context.Background()

	_ = cache.Save(ctx, "s1", "#/plan/AD1")
	if _, ok, _ := cache.Load(ctx, "s1"); !ok {
		t.Error("未过期时应命中")
	}

	time.Sleep(150 * time.Millisecond)
	if _, ok, _ := cache.Load(ctx, "s1"); ok {
		t.Error("过期后不应命中")
	}
}

func TestMemorySessionCache_Bounded(t *testing.T) {
	cache := newMemorySessionCache(2, time.Hour)
	ctx := context.Background()

	_ = cache.Save(ctx, "s1", "#/plan/AD1")
	_ = cache.Save(ctx, "s2", "#/plan/AD2")
	// 读取 s1 使 s2 成为最久未使用
	_, _, _ = cache.Load(ctx, "s1")
	_ = cache.Save(ctx, "s3", "#/plan/DBS")

	if _, ok, _ := cache.Load(ctx, "s2"); ok {
		t.Error("超过上限时应淘汰最久未使用的会话")
	}
	for _, sid := range []string{"s1", "s3"} {
		if _, ok, _ := cache.Load(ctx, sid); !ok {
			t.Errorf("会话 %s 不应被淘汰", sid)
		}
	}
	if n := cache.lru.Len(); n != 2 {
		t.Errorf("期望缓存中 2 个会话，实际 %d", n)
	}
}

func TestNewSessionCache_FallsBackWithoutRedis(t *testing.T) {
	if _, ok := NewSessionCache(nil, time.Hour, 10).(*memorySessionCache); !ok {
		t.Error("Redis 为 nil 时应使用进程内缓存")
	}
}
