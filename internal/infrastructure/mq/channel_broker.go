package mq

import (
	"context"
	"sync"

	"campus_chat/internal/model"
	"campus_chat/pkg/constants"

	"go.uber.org/zap"
)

// ChannelBroker 进程内事件广播
// 每个订阅者一个带缓冲的通道，订阅者处理不过来时直接丢弃事件，发布方永不阻塞
type ChannelBroker struct {
	mutex  sync.RWMutex
	subs   map[int]chan model.RoomEvent
	nextID int
	closed bool
}

// NewChannelBroker 创建空的广播器
func NewChannelBroker() *ChannelBroker {
	return &ChannelBroker{subs: make(map[int]chan model.RoomEvent)}
}

// Subscribe 注册订阅者，返回事件通道和取消函数
// 取消后通道会被关闭；广播器关闭后返回已关闭的通道
func (b *ChannelBroker) Subscribe() (<-chan model.RoomEvent, func()) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	ch := make(chan model.RoomEvent, constants.CHANNEL_SIZE)
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mutex.Lock()
			defer b.mutex.Unlock()
			if sub, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(sub)
			}
		})
	}
}

// Publish 非阻塞地投递给所有订阅者
func (b *ChannelBroker) Publish(_ context.Context, event model.RoomEvent) error {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	for id, ch := range b.subs {
		select {
		case ch <- event:
		default:
			zap.L().Warn("订阅者通道已满，丢弃房间事件",
				zap.Int("subscriber", id),
				zap.String("type", string(event.Type)),
				zap.String("room_id", event.RoomID),
			)
		}
	}
	return nil
}

// Subscribers 当前订阅者数量
func (b *ChannelBroker) Subscribers() int {
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	return len(b.subs)
}

// Close 关闭所有订阅通道
func (b *ChannelBroker) Close() {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
