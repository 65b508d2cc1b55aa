// Package model 定义本地缓存的会话实体
// 本文件定义房间摘要模型，对应会话列表中的一行
package model

// Category 房间来源板块
type Category string

const (
	CategoryMarket Category = "market" // 二手市场
	CategoryLost   Category = "lost"   // 失物招领
	CategoryGroup  Category = "group"  // 拼单团购
)

// Valid 是否为已知板块
func (c Category) Valid() bool {
	switch c {
	case CategoryMarket, CategoryLost, CategoryGroup:
		return true
	}
	return false
}

// RoomOrigin 打开房间时的上下文，用于推导线程键
// Params 在持久化前已经去掉了一次性字段（如初始草稿）
type RoomOrigin struct {
	Source string         `json:"source"`
	Params map[string]any `json:"params,omitempty"`
}

// RoomSummary 房间摘要
// 每个本地已知会话一条，RoomId 在列表内唯一，列表按 LastTs 降序
type RoomSummary struct {
	// RoomId 本地房间标识，可能与服务端的数字 ID 不同
	RoomId string `json:"roomId"`

	// Category 来源板块
	Category Category `json:"category"`

	// Nickname 对方昵称（尽力而为，可被后续打开/发送刷新）
	Nickname string `json:"nickname"`

	// LastMessage 最近一条消息的预览（已截断）
	LastMessage string `json:"lastMessage"`

	// LastTs 最近一次预览更新的毫秒时间戳，决定排序
	LastTs int64 `json:"lastTs"`

	// UnreadCount 未读数，非负
	UnreadCount int `json:"unreadCount"`

	// 打开房间时帖子信息的快照
	ProductTitle    string  `json:"productTitle,omitempty"`
	ProductPrice    *int64  `json:"productPrice,omitempty"`
	ProductImageUri *string `json:"productImageUri,omitempty"`

	Origin *RoomOrigin `json:"origin,omitempty"`
}
