package jwt

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Self 当前登录用户，从后端签发的 Access Token 中读出
// 本地桥接只用它补全上下文，不做鉴权，因此不校验签名
type Self struct {
	UserID string
	Email  string
}

// Claims 后端 Access Token 中关心的声明
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// ParseSelf 不校验签名地解析 token
// user_id 缺失时退回 sub
func ParseSelf(tokenString string) (*Self, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, err
	}
	self := &Self{
		UserID: strings.TrimSpace(claims.UserID),
		Email:  strings.ToLower(strings.TrimSpace(claims.Email)),
	}
	if self.UserID == "" {
		self.UserID = strings.TrimSpace(claims.Subject)
	}
	if self.UserID == "" && self.Email == "" {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return self, nil
}

// Identity 用于线程键的标识，邮箱优先
func (s *Self) Identity() string {
	if s == nil {
		return ""
	}
	if s.Email != "" {
		return s.Email
	}
	return s.UserID
}
