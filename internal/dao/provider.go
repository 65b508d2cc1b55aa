// Package dao 根据配置选择键值存储后端
package dao

import (
	"context"

	"campus_chat/internal/config"
	"campus_chat/internal/dao/kv"
	"campus_chat/internal/dao/mysql"
	"campus_chat/internal/dao/redis"
	"campus_chat/pkg/errorx"

	"go.uber.org/zap"
)

// 存储后端名称，对应 storeConfig.driver
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverRedis  = "redis"
	DriverMysql  = "mysql"
)

// OpenStore 打开配置指定的存储后端，并套上 keyPrefix
func OpenStore(ctx context.Context, conf *config.Config) (kv.Store, error) {
	var (
		store kv.Store
		err   error
	)
	switch conf.Driver {
	case DriverMemory:
		store = kv.NewMemoryStore()
	case DriverFile, "":
		store, err = kv.NewFileStore(conf.StoreConfig.Path)
	case DriverRedis:
		client, cerr := redis.NewClient(ctx, &conf.RedisConfig)
		if cerr != nil {
			return nil, cerr
		}
		store = redis.NewRedisStore(client)
	case DriverMysql:
		db, oerr := mysql.Open(&conf.MysqlConfig)
		if oerr != nil {
			return nil, oerr
		}
		store = mysql.NewGormStore(db)
	default:
		return nil, errorx.Newf(errorx.CodeInvalidParam, "未知的存储后端 %q", conf.Driver)
	}
	if err != nil {
		return nil, err
	}
	zap.L().Info("存储后端已就绪",
		zap.String("driver", conf.Driver),
		zap.String("keyPrefix", conf.KeyPrefix),
	)
	return kv.WithPrefix(store, conf.KeyPrefix), nil
}
