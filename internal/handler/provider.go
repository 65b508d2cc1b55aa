// Package handler 提供 HTTP 请求处理器
// 本文件定义 Handler 聚合结构和构造函数
package handler

import (
	"campus_chat/internal/infrastructure/mq"
	"campus_chat/internal/service"
)

// Handlers 聚合所有 Handler 实例，Router 层通过此结构注册路由
type Handlers struct {
	Room  *RoomHandler
	Chat  *ChatHandler
	Event *EventHandler
}

// NewHandlers 创建并注入所有 Handler 实例
func NewHandlers(svc *service.Services, broker *mq.ChannelBroker) *Handlers {
	return &Handlers{
		Room:  NewRoomHandler(svc.Room),
		Chat:  NewChatHandler(svc.Chat),
		Event: NewEventHandler(broker),
	}
}
