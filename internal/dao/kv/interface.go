// Package kv 定义本地键值存储接口
// 房间摘要、线程索引等文档都以 JSON 形式存放在某个 Store 中
package kv

import "context"

// Store 键值存储
// 实现方需保证 MultiSet 对同一批键是原子提交的：要么全部写入，要么都不写
type Store interface {
	// Get 读取单个键，键不存在时 found 为 false
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	// Set 写入单个键
	Set(ctx context.Context, key string, value []byte) error
	// Remove 删除键，键不存在时不报错
	Remove(ctx context.Context, key string) error
	// MultiGet 批量读取，不存在的键不会出现在结果中
	MultiGet(ctx context.Context, keys []string) (map[string][]byte, error)
	// MultiSet 批量原子写入
	MultiSet(ctx context.Context, entries map[string][]byte) error
	// Close 释放底层资源
	Close() error
}
