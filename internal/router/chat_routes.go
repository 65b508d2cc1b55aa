// Package router 提供 HTTP 路由注册
// 本文件定义聊天流程和事件推送路由
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterChatRoutes 注册聊天流程路由
func (rt *Router) RegisterChatRoutes(rg *gin.RouterGroup) {
	chatGroup := rg.Group("/chat")
	{
		chatGroup.POST("/open", rt.handlers.Chat.OpenChat)         // 从帖子进入聊天
		chatGroup.POST("/send", rt.handlers.Chat.RecordSend)       // 本地发送完成
		chatGroup.POST("/receive", rt.handlers.Chat.RecordReceive) // 收到对方消息
	}
}

// RegisterEventRoutes 注册房间事件 WebSocket 路由
// messageMode = none 时没有事件源，不注册
func (rt *Router) RegisterEventRoutes(rg *gin.RouterGroup) {
	if !rt.handlers.Event.Enabled() {
		return
	}
	// 请求示例: ws://127.0.0.1:8790/ws/rooms
	rg.GET("/ws/rooms", rt.handlers.Event.Stream)
}
