package respond

import "campus_chat/internal/model"

// RoomListRespond 房间列表，按 lastTs 降序
type RoomListRespond struct {
	Rooms []model.RoomSummary `json:"rooms"`
}

// UnreadRespond 未读总数
type UnreadRespond struct {
	Unread int `json:"unread"`
}

// RoomIdRespond 解析 / 查找 / 删除得到的房间 ID，未命中时为空串
type RoomIdRespond struct {
	RoomId string `json:"roomId"`
	Found  bool   `json:"found"`
}

// OpenChatRespond 进入聊天的结果
type OpenChatRespond struct {
	Room         model.RoomSummary `json:"room"`
	// Reused 规范房间覆盖了提议的 ID
	Reused       bool              `json:"reused"`
	// RemoteRoomId 远端房间 ID，未关联时为 null
	RemoteRoomId *int64            `json:"remoteRoomId"`
	// RemoteLinked 本次是否成功关联远端
	RemoteLinked bool              `json:"remoteLinked"`
	// RemoteError 远端失败原因
	RemoteError  string            `json:"remoteError,omitempty"`
}
