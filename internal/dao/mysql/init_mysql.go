// Package mysql 提供 kv.Store 的 MySQL 实现
// 负责建立 GORM 连接、自动迁移 kv_entry 表
package mysql

import (
	"fmt"

	"campus_chat/internal/config"
	"campus_chat/internal/model"

	"go.uber.org/zap"
	mysqldriver "gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// DSN 构建 MySQL 连接字符串
// 格式：user:password@tcp(host:port)/database?params
func DSN(conf *config.MysqlConfig) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		conf.User,
		conf.Password,
		conf.Host,
		conf.Port,
		conf.DatabaseName,
	)
}

// Open 连接 MySQL 并迁移表结构
func Open(conf *config.MysqlConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysqldriver.Open(DSN(conf)), &gorm.Config{})
	if err != nil {
		return nil, wrapDBErrorf(err, "连接 MySQL %s:%d", conf.Host, conf.Port)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	zap.L().Info("MySQL 连接成功",
		zap.String("host", conf.Host),
		zap.String("database", conf.DatabaseName),
	)
	return db, nil
}

// Migrate 自动迁移 kv_entry 表
// 不会删除已有字段或数据
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.KVEntry{}); err != nil {
		return wrapDBError(err, "迁移 kv_entry 表")
	}
	return nil
}
