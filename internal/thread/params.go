package thread

import (
	"encoding/json"
	"strconv"
	"strings"

	"campus_chat/internal/model"
)

// 各字段的别名，按优先级排列；邮箱总是先于 ID
var (
	sourceAliases = []string{"source", "category", "type"}
	postAliases   = []string{"postId", "productId", "boardId"}
	// 角色 A：卖家 / 发帖人
	ownerAliases = []string{"sellerEmail", "authorEmail", "sellerId", "authorId", "userId"}
	// 角色 B：买家 / 对方
	peerAliases = []string{"buyerEmail", "opponentEmail", "buyerId", "opponentId", "toUserId"}
)

// sourceSynonyms 板块名同义词表，目前只有拼单有多种写法
var sourceSynonyms = map[string]model.Category{
	"market":    model.CategoryMarket,
	"lost":      model.CategoryLost,
	"group":     model.CategoryGroup,
	"groupbuy":  model.CategoryGroup,
	"group_buy": model.CategoryGroup,
	"group-buy": model.CategoryGroup,
}

// transientParams 只用于驱动一次性 UI 行为的字段，持久化前必须去掉
var transientParams = []string{"initialMessage", "draft", "autoSend", "autoSendMessage", "prefillMessage"}

// CanonicalSource 归一化板块名，未知板块返回 false
func CanonicalSource(source string) (model.Category, bool) {
	c, ok := sourceSynonyms[strings.ToLower(strings.TrimSpace(source))]
	return c, ok
}

// FromParams 把 UI / 网络层传入的松散参数转换为 Origin
// 板块或帖子 ID 无法确定时返回 false
func FromParams(params map[string]any) (Origin, bool) {
	if len(params) == 0 {
		return nil, false
	}
	category, ok := CanonicalSource(firstString(params, sourceAliases))
	if !ok {
		return nil, false
	}
	postID := firstString(params, postAliases)
	if postID == "" {
		return nil, false
	}
	owner := NormalizeID(firstString(params, ownerAliases))
	peer := NormalizeID(firstString(params, peerAliases))

	switch category {
	case model.CategoryMarket:
		return MarketOrigin{PostID: postID, Seller: owner, Buyer: peer}, true
	case model.CategoryLost:
		return LostOrigin{PostID: postID, Author: owner, Opponent: peer}, true
	default:
		return GroupBuyOrigin{PostID: postID, Host: owner, Member: peer}, true
	}
}

// FromRoomOrigin 从持久化的 RoomOrigin 恢复 Origin
// Params 中没有板块字段时使用 Source
func FromRoomOrigin(o *model.RoomOrigin) (Origin, bool) {
	if o == nil {
		return nil, false
	}
	return FromParams(WithSource(o.Params, o.Source))
}

// Sanitize 返回去掉一次性字段后的参数副本
func Sanitize(params map[string]any) map[string]any {
	if params == nil {
		return nil
	}
	out := make(map[string]any, len(params))
	for k, v := range params {
		out[k] = v
	}
	for _, k := range transientParams {
		delete(out, k)
	}
	return out
}

// NormalizeID 参与者标识归一化：去空白并转小写
func NormalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// firstString 按别名顺序返回第一个非空值
func firstString(params map[string]any, aliases []string) string {
	for _, k := range aliases {
		if s := stringify(params[k]); s != "" {
			return s
		}
	}
	return ""
}

// stringify 把 JSON 解出来的值转成字符串；数字不带指数和多余的小数位
func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	default:
		return ""
	}
}

// WithSelf 上下文里只有发帖方时，用当前用户补全另一方
// 当前用户已经是某一方、或双方都已知时原样返回
func WithSelf(params map[string]any, self string) map[string]any {
	self = NormalizeID(self)
	if self == "" || len(params) == 0 {
		return params
	}
	owner := NormalizeID(firstString(params, ownerAliases))
	peer := NormalizeID(firstString(params, peerAliases))
	if owner == "" || peer != "" || owner == self {
		return params
	}
	out := make(map[string]any, len(params)+1)
	for k, v := range params {
		out[k] = v
	}
	if strings.Contains(self, "@") {
		out["buyerEmail"] = self
	} else {
		out["buyerId"] = self
	}
	return out
}

// WithSource params 中没有板块字段时补上 source
func WithSource(params map[string]any, source string) map[string]any {
	if strings.TrimSpace(source) == "" || firstString(params, sourceAliases) != "" {
		return params
	}
	out := make(map[string]any, len(params)+1)
	for k, v := range params {
		out[k] = v
	}
	out["source"] = source
	return out
}

// PostID 取出帖子 ID，不存在时为空串
func PostID(params map[string]any) string {
	return firstString(params, postAliases)
}

// WithContext 打开、发送、按上下文查找都先经过这里，保证同一会话得到同一个线程键
// 依次补上板块和当前用户
func WithContext(params map[string]any, source, self string) map[string]any {
	return WithSelf(WithSource(params, source), self)
}
