// Package handler 本机桥接 API 的请求处理器
// 本文件处理房间摘要相关的请求
package handler

import (
	"time"

	"campus_chat/internal/dto/request"
	"campus_chat/internal/dto/respond"
	"campus_chat/internal/service"

	"github.com/gin-gonic/gin"
)

// RoomHandler 房间请求处理器
type RoomHandler struct {
	roomSvc service.RoomService
}

// NewRoomHandler 创建房间处理器实例
func NewRoomHandler(roomSvc service.RoomService) *RoomHandler {
	return &RoomHandler{roomSvc: roomSvc}
}

// ListRooms 房间列表
// GET /rooms
// 响应: respond.RoomListRespond
func (h *RoomHandler) ListRooms(c *gin.Context) {
	rooms, err := h.roomSvc.LoadRooms(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, respond.RoomListRespond{Rooms: rooms})
}

// CountUnread 未读总数
// GET /rooms/unread
func (h *RoomHandler) CountUnread(c *gin.Context) {
	total, err := h.roomSvc.CountUnread(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, respond.UnreadRespond{Unread: total})
}

// OpenRoom 打开或创建房间
// POST /rooms/open
// 请求体: request.UpsertRoomRequest
// 响应: model.RoomSummary（可能是规范房间而非请求中的 roomId）
func (h *RoomHandler) OpenRoom(c *gin.Context) {
	var req request.UpsertRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	room, err := h.roomSvc.UpsertRoomOnOpen(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, room)
}

// ResolveRoom 打开前解析规范房间 ID
// POST /rooms/resolve
// 请求体: request.ResolveRoomRequest
func (h *RoomHandler) ResolveRoom(c *gin.Context) {
	var req request.ResolveRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	// found 表示已有规范房间，即使它的 ID 恰好等于提议的 ID
	existing, err := h.roomSvc.FindExistingRoomIdByContext(c.Request.Context(), req.ContextParams())
	if err != nil {
		HandleError(c, err)
		return
	}
	if existing == "" {
		HandleSuccess(c, respond.RoomIdRespond{RoomId: req.ProposedRoomId, Found: false})
		return
	}
	HandleSuccess(c, respond.RoomIdRespond{RoomId: existing, Found: true})
}

// FindRoom 按上下文查找已有房间
// POST /rooms/find
// 请求体: request.OriginParamsRequest
func (h *RoomHandler) FindRoom(c *gin.Context) {
	var req request.OriginParamsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	roomId, err := h.roomSvc.FindExistingRoomIdByContext(c.Request.Context(), req.ContextParams())
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, respond.RoomIdRespond{RoomId: roomId, Found: roomId != ""})
}

// Send 已知房间 ID 的发送后预览刷新
// POST /rooms/send
// 请求体: request.SendPreviewRequest
func (h *RoomHandler) Send(c *gin.Context) {
	var req request.SendPreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	var ts *time.Time
	if req.LastTs != nil {
		t := time.UnixMilli(*req.LastTs)
		ts = &t
	}
	if err := h.roomSvc.UpdateRoomOnSend(c.Request.Context(), req.RoomId, req.Preview, ts); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// SendSmart 房间 ID 可能未知的发送后预览刷新
// POST /rooms/sendSmart
// 请求体: request.SmartSendRequest
func (h *RoomHandler) SendSmart(c *gin.Context) {
	var req request.SmartSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	roomId, err := h.roomSvc.UpdateRoomOnSendSmart(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, respond.RoomIdRespond{RoomId: roomId, Found: roomId != ""})
}

// MarkRead 未读清零
// POST /rooms/read
// 请求体: request.RoomIdRequest
func (h *RoomHandler) MarkRead(c *gin.Context) {
	var req request.RoomIdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.roomSvc.MarkRoomRead(c.Request.Context(), req.RoomId); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// DeleteRooms 删除一个或多个房间
// POST /rooms/delete
// 请求体: request.DeleteRoomsRequest
func (h *RoomHandler) DeleteRooms(c *gin.Context) {
	var req request.DeleteRoomsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.roomSvc.DeleteChatRooms(c.Request.Context(), req.RoomIds); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// DeleteByContext 按上下文删除规范房间
// POST /rooms/deleteByContext
// 请求体: request.OriginParamsRequest
func (h *RoomHandler) DeleteByContext(c *gin.Context) {
	var req request.OriginParamsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	roomId, err := h.roomSvc.DeleteByContext(c.Request.Context(), req.ContextParams())
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, respond.RoomIdRespond{RoomId: roomId, Found: roomId != ""})
}
