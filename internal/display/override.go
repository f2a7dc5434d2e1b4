package display

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// OverrideStore 保存“跳过自动跳转”标志，标志在 ttl 后自动失效
type OverrideStore interface {
	Set(ctx context.Context, key string, ttl time.Duration) error
	Active(ctx context.Context, key string) (bool, error)
	Clear(ctx context.Context, key string) error
}

func overrideKey(slug, sessionID string) string {
	return "display:override:" + slug + ":" + sessionID
}

// RedisOverrideStore 基于 Redis SET EX 的标志存储
type RedisOverrideStore struct {
	client *redis.Client
}

// NewRedisOverrideStore 创建 Redis 标志存储
func NewRedisOverrideStore(client *redis.Client) *RedisOverrideStore {
	return &RedisOverrideStore{client: client}
}

func (s *RedisOverrideStore) Set(ctx context.Context, key string, ttl time.Duration) error {
	return s.client.Set(ctx, key, "1", ttl).Err()
}

func (s *RedisOverrideStore) Active(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RedisOverrideStore) Clear(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

// MemoryOverrideStore 进程内标志存储，每个标志持有自己的过期计时器
type MemoryOverrideStore struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewMemoryOverrideStore 创建进程内标志存储
func NewMemoryOverrideStore() *MemoryOverrideStore {
	return &MemoryOverrideStore{timers: make(map[string]*time.Timer)}
}

func (s *MemoryOverrideStore) Set(ctx context.Context, key string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[key]; ok {
		t.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(ttl, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		// 只删除自己，避免误删重新设置后的计时器
		if s.timers[key] == timer {
			delete(s.timers, key)
		}
	})
	s.timers[key] = timer
	return nil
}

func (s *MemoryOverrideStore) Active(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[key]
	return ok, nil
}

func (s *MemoryOverrideStore) Clear(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[key]; ok {
		t.Stop()
		delete(s.timers, key)
	}
	return nil
}

// Close 停止所有计时器
func (s *MemoryOverrideStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, t := range s.timers {
		t.Stop()
		delete(s.timers, key)
	}
}
