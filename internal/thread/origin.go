// Package thread 负责从打开房间的上下文推导规范的线程键
// 线程键与发起方无关：买家或卖家任一方打开同一帖子的会话，得到的键相同
package thread

import "campus_chat/internal/model"

// Origin 已归一化的房间来源，每个板块一个变体
type Origin interface {
	Category() model.Category
	// Post 帖子 ID（字符串形式）
	Post() string
	// Participants 两个角色的参与者标识，未知时为空串
	Participants() (string, string)
}

// MarketOrigin 二手市场：卖家与买家
type MarketOrigin struct {
	PostID string
	Seller string
	Buyer  string
}

func (o MarketOrigin) Category() model.Category       { return model.CategoryMarket }
func (o MarketOrigin) Post() string                   { return o.PostID }
func (o MarketOrigin) Participants() (string, string) { return o.Seller, o.Buyer }

// LostOrigin 失物招领：发帖人与对方
type LostOrigin struct {
	PostID   string
	Author   string
	Opponent string
}

func (o LostOrigin) Category() model.Category       { return model.CategoryLost }
func (o LostOrigin) Post() string                   { return o.PostID }
func (o LostOrigin) Participants() (string, string) { return o.Author, o.Opponent }

// GroupBuyOrigin 拼单：团长与参与者
type GroupBuyOrigin struct {
	PostID string
	Host   string
	Member string
}

func (o GroupBuyOrigin) Category() model.Category       { return model.CategoryGroup }
func (o GroupBuyOrigin) Post() string                   { return o.PostID }
func (o GroupBuyOrigin) Participants() (string, string) { return o.Host, o.Member }
