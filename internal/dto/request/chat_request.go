package request

import "campus_chat/internal/model"

// OpenChatRequest 从帖子详情页进入聊天
// ProposedRoomId 为空时由服务端根据上下文生成
// 使用位置:
//   - internal/handler/chat_handler.go: OpenChatHandler
//   - internal/service/chat/chat_service.go: OpenChat
type OpenChatRequest struct {
	ProposedRoomId  string            `json:"proposedRoomId"`
	Category        string            `json:"category"`
	Nickname        string            `json:"nickname"`
	ProductTitle    string            `json:"productTitle"`
	ProductPrice    *int64            `json:"productPrice"`
	ProductImageUri *string           `json:"productImageUri"`
	Origin          *model.RoomOrigin `json:"origin" binding:"required"`

	// 远端 create-or-get 所需字段，ToUserId 为 0 时不调用远端
	ToUserId    int64  `json:"toUserId"`
	Message     string `json:"message"`
	MessageType string `json:"messageType"`

	// Self 当前用户标识，由 handler 从 bearer token 填入
	Self string `json:"-"`
}

// RecordSendRequest 本地消息发送成功后回调
// OriginParams 缺少板块字段时使用 Source
type RecordSendRequest struct {
	RoomId       string         `json:"roomId"`
	Source       string         `json:"source"`
	OriginParams map[string]any `json:"originParams"`
	Content      string         `json:"content"`
	SentAt       *int64         `json:"sentAt"`
	Nickname     string         `json:"nickname"`

	// Self 当前用户标识，由 handler 从 bearer token 填入
	Self string `json:"-"`
}

// RecordReceiveRequest 收到对方消息
type RecordReceiveRequest struct {
	RoomId     string `json:"roomId" binding:"required"`
	Content    string `json:"content"`
	ReceivedAt *int64 `json:"receivedAt"`
}
