package kv

import (
	"context"
	"encoding/json"

	"campus_chat/pkg/errorx"
)

// LoadJSON 读取键并反序列化到 dst
// 键不存在时 dst 保持调用方预先设置的默认值，返回 found=false
func LoadJSON(ctx context.Context, s Store, key string, dst any) (bool, error) {
	raw, found, err := s.Get(ctx, key)
	if err != nil || !found {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, errorx.Wrapf(err, errorx.CodeStorageError, "decode json key %s", key)
	}
	return true, nil
}

// SaveJSON 序列化 v 并写入键
func SaveJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return errorx.Wrapf(err, errorx.CodeStorageError, "encode json key %s", key)
	}
	return s.Set(ctx, key, raw)
}

// Batch 收集多个 JSON 文档，一次 MultiSet 提交
type Batch struct {
	entries map[string][]byte
}

// NewBatch 创建空批次
func NewBatch() *Batch {
	return &Batch{entries: make(map[string][]byte)}
}

// Put 序列化并加入批次
func (b *Batch) Put(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return errorx.Wrapf(err, errorx.CodeStorageError, "encode json key %s", key)
	}
	b.entries[key] = raw
	return nil
}

// Len 批次内的键数量
func (b *Batch) Len() int { return len(b.entries) }

// Commit 原子提交批次
func (b *Batch) Commit(ctx context.Context, s Store) error {
	if len(b.entries) == 0 {
		return nil
	}
	return s.MultiSet(ctx, b.entries)
}

// Decode 从 MultiGet 结果中取出键并反序列化，不存在时保持 dst 默认值
func Decode(values map[string][]byte, key string, dst any) (bool, error) {
	raw, ok := values[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, errorx.Wrapf(err, errorx.CodeStorageError, "decode json key %s", key)
	}
	return true, nil
}
