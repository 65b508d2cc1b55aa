package handler

import (
	"campus_chat/internal/dto/request"
	"campus_chat/internal/infrastructure/middleware"
	"campus_chat/internal/service"

	"github.com/gin-gonic/gin"
)

// ChatHandler 聊天流程处理器
type ChatHandler struct {
	chatSvc service.ChatService
}

// NewChatHandler 创建聊天处理器实例
func NewChatHandler(chatSvc service.ChatService) *ChatHandler {
	return &ChatHandler{chatSvc: chatSvc}
}

// OpenChat 从帖子进入聊天
// POST /chat/open
// 请求体: request.OpenChatRequest
// 响应: respond.OpenChatRespond
func (h *ChatHandler) OpenChat(c *gin.Context) {
	var req request.OpenChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	req.Self = middleware.SelfFrom(c).Identity()
	rsp, err := h.chatSvc.OpenChat(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rsp)
}

// RecordSend 本地消息发送完成
// POST /chat/send
// 请求体: request.RecordSendRequest
func (h *ChatHandler) RecordSend(c *gin.Context) {
	var req request.RecordSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	req.Self = middleware.SelfFrom(c).Identity()
	rsp, err := h.chatSvc.RecordSend(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, rsp)
}

// RecordReceive 收到对方消息
// POST /chat/receive
// 请求体: request.RecordReceiveRequest
func (h *ChatHandler) RecordReceive(c *gin.Context) {
	var req request.RecordReceiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.chatSvc.RecordReceive(c.Request.Context(), req); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}
