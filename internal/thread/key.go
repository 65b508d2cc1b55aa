package thread

import (
	"sort"
	"strings"
)

const (
	partSeparator = "::"
	pairSeparator = "|"
)

// Policy 线程键的形成条件
type Policy struct {
	// MinParticipants 至少需要解析出的参与者数量（0-2）
	MinParticipants int
}

// DefaultPolicy 至少一个参与者。
// 没有任何参与者时不生成键，否则同一帖子下所有对话都会被合并到一起
var DefaultPolicy = Policy{MinParticipants: 1}

// Resolver 按 Policy 推导线程键
type Resolver struct {
	policy Policy
}

// NewResolver 创建 Resolver，越界的 MinParticipants 被夹到 [0, 2]
func NewResolver(policy Policy) Resolver {
	if policy.MinParticipants < 0 {
		policy.MinParticipants = 0
	}
	if policy.MinParticipants > 2 {
		policy.MinParticipants = 2
	}
	return Resolver{policy: policy}
}

// Key 生成 "<板块>::<帖子ID>::<排序后的参与者对>"
func (r Resolver) Key(o Origin) (string, bool) {
	if o == nil || !o.Category().Valid() || strings.TrimSpace(o.Post()) == "" {
		return "", false
	}
	a, b := o.Participants()
	pair := make([]string, 0, 2)
	for _, p := range []string{NormalizeID(a), NormalizeID(b)} {
		if p != "" {
			pair = append(pair, p)
		}
	}
	if len(pair) < r.policy.MinParticipants {
		return "", false
	}
	sort.Strings(pair)
	return strings.Join([]string{
		string(o.Category()),
		strings.TrimSpace(o.Post()),
		strings.Join(pair, pairSeparator),
	}, partSeparator), true
}

// KeyFromParams 松散参数直接得到线程键
func (r Resolver) KeyFromParams(params map[string]any) (string, bool) {
	o, ok := FromParams(params)
	if !ok {
		return "", false
	}
	return r.Key(o)
}

var defaultResolver = NewResolver(DefaultPolicy)

// Key 使用 DefaultPolicy
func Key(o Origin) (string, bool) { return defaultResolver.Key(o) }

// KeyFromParams 使用 DefaultPolicy
func KeyFromParams(params map[string]any) (string, bool) {
	return defaultResolver.KeyFromParams(params)
}
