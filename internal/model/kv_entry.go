package model

import (
	"time"

	"campus_chat/pkg/constants"
)

// KVEntry 键值存储在 MySQL 中的一行
// 对应数据库 kv_entry 表，key 是 MySQL 保留字，所以列名带前缀
type KVEntry struct {
	Key       string    `gorm:"column:kv_key;primaryKey;type:varchar(191);comment:键"`
	Value     []byte    `gorm:"column:kv_value;type:longblob;not null;comment:JSON 文档"`
	UpdatedAt time.Time `gorm:"column:updated_at;comment:最后写入时间"`
}

// TableName 指定表名
func (KVEntry) TableName() string {
	return constants.KV_TABLE_NAME
}
