// Package router 提供 HTTP 路由注册
// 本文件定义房间摘要相关的路由
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoomRoutes 注册房间摘要相关路由
func (rt *Router) RegisterRoomRoutes(rg *gin.RouterGroup) {
	roomGroup := rg.Group("/rooms")
	{
		roomGroup.GET("", rt.handlers.Room.ListRooms)                        // 房间列表（按 lastTs 倒序）
		roomGroup.GET("/unread", rt.handlers.Room.CountUnread)               // 未读总数
		roomGroup.POST("/open", rt.handlers.Room.OpenRoom)                   // 打开/创建房间
		roomGroup.POST("/resolve", rt.handlers.Room.ResolveRoom)             // 打开前解析规范房间 ID
		roomGroup.POST("/find", rt.handlers.Room.FindRoom)                   // 按上下文查找房间
		roomGroup.POST("/send", rt.handlers.Room.Send)                       // 发送后刷新预览
		roomGroup.POST("/sendSmart", rt.handlers.Room.SendSmart)             // 房间 ID 可能未知的发送
		roomGroup.POST("/read", rt.handlers.Room.MarkRead)                   // 未读清零
		roomGroup.POST("/delete", rt.handlers.Room.DeleteRooms)              // 删除房间
		roomGroup.POST("/deleteByContext", rt.handlers.Room.DeleteByContext) // 按上下文删除
	}
}
