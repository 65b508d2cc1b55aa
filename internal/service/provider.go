// Package service 提供业务逻辑层
// 本文件实现 Service 层的依赖注入和聚合
package service

import (
	"campus_chat/internal/config"
	"campus_chat/internal/dao/kv"
	"campus_chat/internal/gateway/remote"
	"campus_chat/internal/infrastructure/mq"
	"campus_chat/internal/service/chat"
	"campus_chat/internal/service/room"
	"campus_chat/internal/thread"
)

// Services 聚合所有 Service 实例
type Services struct {
	Room RoomService
	Chat ChatService
}

// NewServices 创建并注入所有 Service 实例
//  1. 房间存储：kv 后端 + 事件发布 + 配置中的键名、策略、占位文案
//  2. 聊天编排：房间存储 + 远端网关
func NewServices(store kv.Store, publisher mq.EventPublisher, gateway remote.Gateway, conf *config.Config) *Services {
	roomSvc := room.NewRoomStore(store,
		room.WithPublisher(publisher),
		room.WithKeys(room.Keys{
			Rooms: conf.RoomListKey,
			Index: conf.ThreadIndexKey,
			Links: conf.RemoteLinkKey,
		}),
		room.WithPlaceholder(conf.Placeholder),
		room.WithPolicy(thread.Policy{MinParticipants: minParticipants(conf)}),
	)
	chatSvc := chat.NewChatService(roomSvc, gateway)

	return &Services{
		Room: roomSvc,
		Chat: chatSvc,
	}
}

func minParticipants(conf *config.Config) int {
	if conf.MinParticipants == nil {
		return thread.DefaultPolicy.MinParticipants
	}
	return *conf.MinParticipants
}
