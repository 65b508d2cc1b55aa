// Package service 定义业务层接口
// Handler 层只依赖这里的接口
package service

import (
	"context"
	"time"

	"campus_chat/internal/dto/request"
	"campus_chat/internal/dto/respond"
	"campus_chat/internal/model"
)

// RoomService 本地房间摘要与线程索引
type RoomService interface {
	// LoadRooms 房间列表，按 lastTs 降序
	LoadRooms(ctx context.Context) ([]model.RoomSummary, error)
	// GetRoom 单个房间
	GetRoom(ctx context.Context, roomId string) (*model.RoomSummary, bool, error)
	// CountUnread 未读总数
	CountUnread(ctx context.Context) (int, error)
	// UpsertRoomOnOpen 打开或创建房间，线程键命中时返回规范房间
	UpsertRoomOnOpen(ctx context.Context, req request.UpsertRoomRequest) (*model.RoomSummary, error)
	// UpdateRoomOnSend 无条件刷新预览
	UpdateRoomOnSend(ctx context.Context, roomId, preview string, ts *time.Time) error
	// UpdateRoomOnSendSmart 房间 ID 未知时按上下文刷新，未命中返回空串
	UpdateRoomOnSendSmart(ctx context.Context, req request.SmartSendRequest) (string, error)
	// UpdateRoomOnReceive 刷新预览并累加未读
	UpdateRoomOnReceive(ctx context.Context, roomId, preview string, ts *time.Time) error
	// MarkRoomRead 未读清零
	MarkRoomRead(ctx context.Context, roomId string) error
	// DeleteChatRoom 删除单个房间
	DeleteChatRoom(ctx context.Context, roomId string) error
	// DeleteChatRooms 批量删除
	DeleteChatRooms(ctx context.Context, roomIds []string) error
	// DeleteByContext 按上下文删除，返回被删房间 ID
	DeleteByContext(ctx context.Context, params map[string]any) (string, error)
	// FindExistingRoomIdByContext 按上下文查找，未命中返回空串
	FindExistingRoomIdByContext(ctx context.Context, params map[string]any) (string, error)
	// ResolveRoomIdForOpen 规范房间 ID 或原样返回提议的 ID
	ResolveRoomIdForOpen(ctx context.Context, params map[string]any, proposedId string) (string, error)
	// LinkRemoteRoom 记录远端房间 ID
	LinkRemoteRoom(ctx context.Context, localId string, remoteId int64) error
	// RemoteRoomID 查询远端房间 ID
	RemoteRoomID(ctx context.Context, localId string) (int64, bool, error)
}

// ChatService 进入聊天 / 发送 / 接收编排
type ChatService interface {
	OpenChat(ctx context.Context, req request.OpenChatRequest) (*respond.OpenChatRespond, error)
	RecordSend(ctx context.Context, req request.RecordSendRequest) (*respond.RoomIdRespond, error)
	RecordReceive(ctx context.Context, req request.RecordReceiveRequest) error
}
