package redis

import (
	"context"
	"errors"

	"campus_chat/internal/dao/kv"
	"campus_chat/pkg/errorx"

	"github.com/redis/go-redis/v9"
)

// RedisStore kv.Store 的 Redis 实现
// MultiSet 通过 MULTI/EXEC 事务提交，保证整批键一起生效
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore 包装已有客户端
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Get 获取键对应的值（键不存在返回 found=false）
func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, errorx.Wrapf(err, errorx.CodeCacheError, "redis get key %s", key)
	}
	return value, true, nil
}

// Set 设置键值对，不过期
func (r *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, key, value, 0).Err(); err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "redis set key %s", key)
	}
	return nil
}

// Remove 删除键，使用 UNLINK 避免阻塞
func (r *RedisStore) Remove(ctx context.Context, key string) error {
	if err := r.client.Unlink(ctx, key).Err(); err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "redis unlink key %s", key)
	}
	return nil
}

// MultiGet 使用 MGET 批量读取
func (r *RedisStore) MultiGet(ctx context.Context, keys []string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errorx.Wrapf(err, errorx.CodeCacheError, "redis mget %d keys", len(keys))
	}
	for i, v := range values {
		if s, ok := v.(string); ok {
			out[keys[i]] = []byte(s)
		}
	}
	return out, nil
}

// MultiSet 在一个事务管道中写入所有键
func (r *RedisStore) MultiSet(ctx context.Context, entries map[string][]byte) error {
	if len(entries) == 0 {
		return nil
	}
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for k, v := range entries {
			pipe.Set(ctx, k, v, 0)
		}
		return nil
	})
	if err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "redis multi set %d keys", len(entries))
	}
	return nil
}

// Close 关闭客户端连接
func (r *RedisStore) Close() error {
	return r.client.Close()
}

// 确保 RedisStore 实现了 kv.Store 接口
var _ kv.Store = (*RedisStore)(nil)
