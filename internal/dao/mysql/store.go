package mysql

import (
	"context"

	"campus_chat/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore kv.Store 的 GORM 实现
// MultiSet 在一个数据库事务中完成所有 upsert
type GormStore struct {
	db *gorm.DB
}

// NewGormStore 包装已迁移的 GORM 实例
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Get 读取单个键
func (s *GormStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var entries []model.KVEntry
	if err := s.db.WithContext(ctx).Where("kv_key = ?", key).Limit(1).Find(&entries).Error; err != nil {
		return nil, false, wrapDBErrorf(err, "查询键 %s", key)
	}
	if len(entries) == 0 {
		return nil, false, nil
	}
	return entries[0].Value, true, nil
}

// Set 写入单个键（存在则覆盖）
func (s *GormStore) Set(ctx context.Context, key string, value []byte) error {
	entry := model.KVEntry{Key: key, Value: value}
	if err := upsert(s.db.WithContext(ctx), []model.KVEntry{entry}); err != nil {
		return wrapDBErrorf(err, "写入键 %s", key)
	}
	return nil
}

// Remove 物理删除键
func (s *GormStore) Remove(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Where("kv_key = ?", key).Delete(&model.KVEntry{}).Error; err != nil {
		return wrapDBErrorf(err, "删除键 %s", key)
	}
	return nil
}

// MultiGet 一次查询读取多个键
func (s *GormStore) MultiGet(ctx context.Context, keys []string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	var entries []model.KVEntry
	if err := s.db.WithContext(ctx).Where("kv_key IN ?", keys).Find(&entries).Error; err != nil {
		return nil, wrapDBErrorf(err, "批量查询 %d 个键", len(keys))
	}
	for _, e := range entries {
		out[e.Key] = e.Value
	}
	return out, nil
}

// MultiSet 事务内批量 upsert
func (s *GormStore) MultiSet(ctx context.Context, entries map[string][]byte) error {
	if len(entries) == 0 {
		return nil
	}
	rows := make([]model.KVEntry, 0, len(entries))
	for k, v := range entries {
		rows = append(rows, model.KVEntry{Key: k, Value: v})
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return upsert(tx, rows)
	})
	if err != nil {
		return wrapDBErrorf(err, "批量写入 %d 个键", len(entries))
	}
	return nil
}

// Close 关闭底层连接池
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return wrapDBError(err, "获取连接池")
	}
	return sqlDB.Close()
}

func upsert(db *gorm.DB, rows []model.KVEntry) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "kv_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"kv_value", "updated_at"}),
	}).Create(&rows).Error
}
