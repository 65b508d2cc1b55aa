// Package router 提供 HTTP 路由注册
// 本文件是路由注册的入口，聚合所有子模块的路由
package router

import (
	"campus_chat/internal/handler"

	"github.com/gin-gonic/gin"
)

// Router 持有 Handler 聚合对象
type Router struct {
	handlers *handler.Handlers
}

// NewRouter 创建路由管理器
func NewRouter(handlers *handler.Handlers) *Router {
	return &Router{handlers: handlers}
}

// RegisterRoutes 注册所有路由
// 在 https_server.Init() 中调用
func (rt *Router) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", func(c *gin.Context) {
		handler.HandleSuccess(c, gin.H{"status": "ok"})
	})

	root := r.Group("")
	rt.RegisterRoomRoutes(root)  // 房间摘要路由
	rt.RegisterChatRoutes(root)  // 聊天流程路由
	rt.RegisterEventRoutes(root) // 房间事件推送
}
