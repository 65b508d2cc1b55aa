package request

import (
	"campus_chat/internal/model"
	"campus_chat/internal/thread"
)

// UpsertRoomRequest 打开（或创建）房间
// 使用位置:
//   - internal/handler/room_handler.go: OpenRoomHandler
//   - internal/service/room/store.go: UpsertRoomOnOpen
type UpsertRoomRequest struct {
	RoomId          string            `json:"roomId" binding:"required,roomid"`
	Category        string            `json:"category"`
	Nickname        string            `json:"nickname"`
	ProductTitle    string            `json:"productTitle"`
	ProductPrice    *int64            `json:"productPrice"`
	ProductImageUri *string           `json:"productImageUri"`
	Preview         string            `json:"preview"`
	LastTs          *int64            `json:"lastTs"` // 毫秒，仅在 Preview 非空时使用
	Origin          *model.RoomOrigin `json:"origin"`
}

// SmartSendRequest 房间 ID 可能未知时的发送后预览刷新
// Preview 为 nil 表示不刷新预览，只更新昵称；OriginParams 缺少板块字段时使用 Source
type SmartSendRequest struct {
	RoomId       string         `json:"roomId"`
	Source       string         `json:"source"`
	OriginParams map[string]any `json:"originParams"`
	Preview      *string        `json:"preview"`
	LastTs       *int64         `json:"lastTs"`
	Nickname     string         `json:"nickname"`
}

// SendPreviewRequest 已知房间 ID 的发送后预览刷新
type SendPreviewRequest struct {
	RoomId  string `json:"roomId" binding:"required,roomid"`
	Preview string `json:"preview"`
	LastTs  *int64 `json:"lastTs"`
}

// RoomIdRequest 只携带房间 ID 的请求（标记已读等）
type RoomIdRequest struct {
	RoomId string `json:"roomId" binding:"required,roomid"`
}

// DeleteRoomsRequest 删除一个或多个房间
type DeleteRoomsRequest struct {
	RoomIds []string `json:"roomIds" binding:"required,min=1,dive,roomid"`
}

// OriginParamsRequest 按上下文查找 / 删除房间
// OriginParams 缺少板块字段时使用 Source，与打开时的 origin.source 对应
type OriginParamsRequest struct {
	Source       string         `json:"source"`
	OriginParams map[string]any `json:"originParams" binding:"required"`
}

// ContextParams 补上板块后的上下文
func (r OriginParamsRequest) ContextParams() map[string]any {
	return thread.WithSource(r.OriginParams, r.Source)
}

// ResolveRoomRequest 打开前解析规范房间 ID
type ResolveRoomRequest struct {
	Source         string         `json:"source"`
	OriginParams   map[string]any `json:"originParams"`
	ProposedRoomId string         `json:"proposedRoomId" binding:"required,roomid"`
}

// ContextParams 补上板块后的上下文
func (r ResolveRoomRequest) ContextParams() map[string]any {
	return thread.WithSource(r.OriginParams, r.Source)
}
