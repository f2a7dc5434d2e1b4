package service

import (
	"context"
	"encoding/json"
	"time"

	"noticeboard/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// getCached 从 Redis 读取 JSON 缓存，未命中或解码失败返回 false
func getCached(ctx context.Context, rdb *redis.Client, key string, dest interface{}) bool {
	data, err := rdb.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(data, dest) == nil
}

// setCached 写入 JSON 缓存，失败只记录日志
func setCached(ctx context.Context, rdb *redis.Client, log *logger.Logger, key string, value interface{}, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := rdb.Set(ctx, key, data, ttl).Err(); err != nil {
		log.Warn("写入缓存失败", "key", key, "error", err)
	}
}

// deletePattern 删除匹配的缓存键
func deletePattern(ctx context.Context, rdb *redis.Client, log *logger.Logger, pattern string) error {
	iter := rdb.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := rdb.Del(ctx, iter.Val()).Err(); err != nil {
			log.Error("删除缓存失败", "key", iter.Val(), "error", err)
		}
	}
	return iter.Err()
}
