package model

// RoomEventType 房间事件类型
type RoomEventType string

const (
	RoomCreated RoomEventType = "room_created"
	RoomUpdated RoomEventType = "room_updated"
	RoomRead    RoomEventType = "room_read"
	RoomDeleted RoomEventType = "room_deleted"
	RoomLinked  RoomEventType = "room_linked"
)

// RoomEvent 房间生命周期事件，推送给 UI（channel 模式）或同步服务（kafka 模式）
type RoomEvent struct {
	ID     string        `json:"id"`
	Type   RoomEventType `json:"type"`
	RoomID string        `json:"roomId"`
	At     int64         `json:"at"` // 毫秒时间戳
}
