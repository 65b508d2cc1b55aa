// Package config 提供应用程序的配置加载和管理功能
// 使用 TOML 格式的配置文件，支持多路径查找
package config

import (
	"fmt"
	"time"

	"campus_chat/pkg/constants"

	"github.com/BurntSushi/toml" // TOML 配置文件解析库
)

// MainConfig 主配置，包含应用基本信息
type MainConfig struct {
	AppName string `toml:"appName"` // 应用名称，用于日志标识等
	Host    string `toml:"host"`    // 本地桥接 API 监听地址，默认 127.0.0.1
	Port    int    `toml:"port"`    // 本地桥接 API 监听端口
	Mode    string `toml:"mode"`    // 运行模式：dev / release
}

// StoreConfig 本地键值存储配置
type StoreConfig struct {
	Driver         string `toml:"driver"`         // 存储后端：memory / file / redis / mysql
	Path           string `toml:"path"`           // file 后端的文档路径
	KeyPrefix      string `toml:"keyPrefix"`      // 所有键的前缀，便于多账号隔离
	RoomListKey    string `toml:"roomListKey"`    // 房间列表键
	ThreadIndexKey string `toml:"threadIndexKey"` // 线程索引键
	RemoteLinkKey  string `toml:"remoteLinkKey"`  // 本地/远端房间 ID 映射键
}

// MysqlConfig MySQL 数据库连接配置（storeConfig.driver = "mysql" 时使用）
type MysqlConfig struct {
	Host         string `toml:"host"`         // MySQL 服务器地址
	Port         int    `toml:"port"`         // MySQL 端口，默认 3306
	User         string `toml:"user"`         // 数据库用户名
	Password     string `toml:"password"`     // 数据库密码
	DatabaseName string `toml:"databaseName"` // 数据库名称
}

// RedisConfig Redis 连接配置（storeConfig.driver = "redis" 时使用）
type RedisConfig struct {
	Host     string `toml:"host"`     // Redis 服务器地址
	Port     int    `toml:"port"`     // Redis 端口，默认 6379
	Password string `toml:"password"` // Redis 密码，无密码留空
	Db       int    `toml:"db"`       // Redis 数据库编号，默认 0
}

// LogConfig 日志配置，使用 lumberjack 进行日志轮转
type LogConfig struct {
	LogPath    string `toml:"logPath"`    // 日志文件存储目录
	FileName   string `toml:"fileName"`   // 日志文件名
	MaxSize    int    `toml:"maxSize"`    // 单个日志文件最大大小（MB）
	MaxBackups int    `toml:"maxBackups"` // 保留旧日志文件的最大个数
	MaxAge     int    `toml:"maxAge"`     // 保留旧日志文件的最大天数
	Level      string `toml:"level"`      // 日志级别：debug, info, warn, error
}

// KafkaConfig 房间事件投递配置
type KafkaConfig struct {
	MessageMode string        `toml:"messageMode"` // 事件模式："none"、"channel" 或 "kafka"
	HostPort    string        `toml:"hostPort"`    // Kafka 服务器地址，如 "localhost:9092"
	RoomTopic   string        `toml:"roomTopic"`   // 房间事件主题
	Partition   int           `toml:"partition"`   // 主题分区数，CreateTopic 使用
	Timeout     time.Duration `toml:"timeout"`     // 写超时（秒）
}

// GatewayConfig 远端房间网关配置
type GatewayConfig struct {
	BaseURL    string `toml:"baseURL"`    // 后端地址，留空表示不调用远端
	RoomPath   string `toml:"roomPath"`   // create-or-get 接口路径
	TimeoutSec int    `toml:"timeoutSec"` // 请求超时（秒）
}

// ChatConfig 会话行为配置
type ChatConfig struct {
	Placeholder     string `toml:"placeholder"`     // 新房间的默认预览文案
	MinParticipants *int   `toml:"minParticipants"` // 生成线程键所需的最少参与者数量（0-2），缺省为 1
}

// Config 应用程序总配置，聚合所有子配置
type Config struct {
	MainConfig    `toml:"mainConfig"`    // 主配置
	StoreConfig   `toml:"storeConfig"`   // 存储配置
	MysqlConfig   `toml:"mysqlConfig"`   // MySQL 配置
	RedisConfig   `toml:"redisConfig"`   // Redis 配置
	LogConfig     `toml:"logConfig"`     // 日志配置
	KafkaConfig   `toml:"kafkaConfig"`   // 事件配置
	GatewayConfig `toml:"gatewayConfig"` // 远端网关配置
	ChatConfig    `toml:"chatConfig"`    // 会话配置
}

// config 全局配置单例，延迟加载
var config *Config

// LoadConfig 从多个候选路径加载配置文件
// 按顺序尝试加载，找到第一个可用的配置文件即停止
func LoadConfig() error {
	paths := []string{
		"configs/config_local.toml",       // 本地开发配置（优先）
		"configs/config.toml",             // 默认配置
		"../../configs/config_local.toml", // 从子目录运行时的路径
		"../../configs/config.toml",       // 从子目录运行时的路径
	}

	for _, path := range paths {
		if _, err := toml.DecodeFile(path, config); err == nil {
			applyDefaults(config)
			return nil
		}
	}

	applyDefaults(config)
	return fmt.Errorf("could not find configuration file in any of the search paths")
}

// LoadFile 从指定路径加载配置并替换全局实例（CLI --config 使用）
func LoadFile(path string) (*Config, error) {
	c := new(Config)
	if _, err := toml.DecodeFile(path, c); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	applyDefaults(c)
	config = c
	return c, nil
}

// GetConfig 获取全局配置实例（单例模式）
// 首次调用时会自动加载配置文件
func GetConfig() *Config {
	if config == nil {
		config = new(Config)
		_ = LoadConfig() // 忽略加载错误，使用默认值
	}
	return config
}

// Default 返回仅包含默认值的配置，测试与无配置文件时使用
func Default() *Config {
	c := new(Config)
	applyDefaults(c)
	return c
}

func applyDefaults(c *Config) {
	if c.AppName == "" {
		c.AppName = "campus_chat"
	}
	if c.MainConfig.Host == "" {
		c.MainConfig.Host = "127.0.0.1"
	}
	if c.MainConfig.Port == 0 {
		c.MainConfig.Port = 8790
	}
	if c.Mode == "" {
		c.Mode = "release"
	}
	if c.Driver == "" {
		c.Driver = "file"
	}
	if c.Path == "" {
		c.Path = "data/chat_store.json"
	}
	if c.RoomListKey == "" {
		c.RoomListKey = constants.ROOM_LIST_KEY
	}
	if c.ThreadIndexKey == "" {
		c.ThreadIndexKey = constants.THREAD_INDEX_KEY
	}
	if c.RemoteLinkKey == "" {
		c.RemoteLinkKey = constants.REMOTE_LINK_KEY
	}
	if c.MessageMode == "" {
		c.MessageMode = "channel"
	}
	if c.KafkaConfig.Timeout == 0 {
		c.KafkaConfig.Timeout = 1
	}
	if c.Partition == 0 {
		c.Partition = 1
	}
	if c.RoomTopic == "" {
		c.RoomTopic = "campus_chat_rooms"
	}
	if c.RoomPath == "" {
		c.RoomPath = "/api/chat/rooms"
	}
	if c.TimeoutSec == 0 {
		c.TimeoutSec = constants.REMOTE_TIMEOUT_SECS
	}
	if c.Placeholder == "" {
		c.Placeholder = constants.DEFAULT_PLACEHOLDER
	}
	if c.MinParticipants == nil || *c.MinParticipants < 0 || *c.MinParticipants > 2 {
		floor := 1
		c.MinParticipants = &floor
	}
}
