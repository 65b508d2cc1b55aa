// Package mq 投递房间生命周期事件
// channel 模式在进程内广播给 websocket 订阅者，kafka 模式额外写入 Kafka 主题
package mq

import (
	"context"
	"errors"

	"campus_chat/internal/config"
	"campus_chat/internal/model"
	"campus_chat/pkg/errorx"
)

// 事件模式，对应 kafkaConfig.messageMode
const (
	ModeNone    = "none"
	ModeChannel = "channel"
	ModeKafka   = "kafka"
)

// EventPublisher 房间事件发布者
type EventPublisher interface {
	Publish(ctx context.Context, event model.RoomEvent) error
	Close()
}

// Nop 丢弃所有事件
type Nop struct{}

func (Nop) Publish(context.Context, model.RoomEvent) error { return nil }
func (Nop) Close()                                         {}

// fanout 依次投递给多个发布者，返回所有失败的合并错误
type fanout []EventPublisher

// Fanout 组合多个发布者
func Fanout(publishers ...EventPublisher) EventPublisher {
	return fanout(publishers)
}

func (f fanout) Publish(ctx context.Context, event model.RoomEvent) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f fanout) Close() {
	for _, p := range f {
		p.Close()
	}
}

// NewPublisher 按配置构建发布者
// 返回的 broker 在 none 模式下为 nil，此时不提供事件流
func NewPublisher(conf *config.KafkaConfig) (EventPublisher, *ChannelBroker, error) {
	switch conf.MessageMode {
	case ModeNone:
		return Nop{}, nil, nil
	case ModeChannel, "":
		broker := NewChannelBroker()
		return broker, broker, nil
	case ModeKafka:
		broker := NewChannelBroker()
		return Fanout(broker, NewKafkaPublisher(conf)), broker, nil
	default:
		return nil, nil, errorx.Newf(errorx.CodeInvalidParam, "未知的事件模式 %q", conf.MessageMode)
	}
}
