package mq

import (
	"context"
	"encoding/json"
	"time"

	"campus_chat/internal/config"
	"campus_chat/internal/model"
	"campus_chat/pkg/errorx"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// messageWriter kafka.Writer 中用到的部分，便于测试替换
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher 把房间事件写入 Kafka
// 消息 key 为房间 ID，同一房间的事件落在同一分区，保持顺序
type KafkaPublisher struct {
	writer messageWriter
	topic  string
}

// NewKafkaPublisher 按配置创建 Writer
func NewKafkaPublisher(conf *config.KafkaConfig) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(conf.HostPort),
			Topic:                  conf.RoomTopic,
			Balancer:               &kafka.Hash{},
			WriteTimeout:           conf.Timeout * time.Second,
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: false,
		},
		topic: conf.RoomTopic,
	}
}

// Publish 同步写入一条事件
func (k *KafkaPublisher) Publish(ctx context.Context, event model.RoomEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return errorx.Wrap(err, errorx.CodeServerBusy, "序列化房间事件")
	}
	err = k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.RoomID),
		Value: value,
	})
	if err != nil {
		return errorx.Wrapf(err, errorx.CodeServerBusy, "写入 Kafka 主题 %s", k.topic)
	}
	return nil
}

// Close 关闭 Writer
func (k *KafkaPublisher) Close() {
	if err := k.writer.Close(); err != nil {
		zap.L().Error("关闭 Kafka Writer 失败", zap.Error(err))
	}
}

// CreateTopic 创建房间事件主题（已存在时 Kafka 会返回错误，由调用方决定是否忽略）
func CreateTopic(conf *config.KafkaConfig) error {
	conn, err := kafka.Dial("tcp", conf.HostPort)
	if err != nil {
		return errorx.Wrapf(err, errorx.CodeServerBusy, "连接 Kafka %s", conf.HostPort)
	}
	defer conn.Close()

	err = conn.CreateTopics(kafka.TopicConfig{
		Topic:             conf.RoomTopic,
		NumPartitions:     conf.Partition,
		ReplicationFactor: 1,
	})
	if err != nil {
		return errorx.Wrapf(err, errorx.CodeServerBusy, "创建主题 %s", conf.RoomTopic)
	}
	return nil
}
