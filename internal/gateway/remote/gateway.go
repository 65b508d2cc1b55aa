// Package remote 调用后端的 create-or-get 房间接口
// 核心只消费返回的数字房间 ID，不解释其余字段
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"campus_chat/internal/config"
	"campus_chat/pkg/errorx"

	"go.uber.org/zap"
)

// CreateRoomRequest create-or-get 请求体
type CreateRoomRequest struct {
	Type        string `json:"type"`
	TypeId      string `json:"typeId"`
	ToUserId    int64  `json:"toUserId"`
	Message     string `json:"message"`
	MessageType string `json:"messageType"`
}

// RoomID 远端房间 ID，兼容数字和数字字符串
type RoomID int64

func (r *RoomID) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*r = 0
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	*r = RoomID(v)
	return nil
}

// RoomInfo 远端房间信息，只关心 roomId
type RoomInfo struct {
	RoomId RoomID `json:"roomId"`
}

// CreateRoomResponse create-or-get 响应
type CreateRoomResponse struct {
	RoomInfo RoomInfo          `json:"roomInfo"`
	Messages []json.RawMessage `json:"messages"`
}

// envelope 后端统一响应包装 {code, msg, data}
type envelope struct {
	Code *int            `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// Gateway 远端房间网关
type Gateway interface {
	CreateOrGetRoom(ctx context.Context, req CreateRoomRequest) (*CreateRoomResponse, error)
	Enabled() bool
}

// Disabled 未配置后端地址时使用，不发起任何请求
type Disabled struct{}

func (Disabled) CreateOrGetRoom(context.Context, CreateRoomRequest) (*CreateRoomResponse, error) {
	return nil, errorx.New(errorx.CodeGatewayError, "远端网关未启用")
}

func (Disabled) Enabled() bool { return false }

// Client 基于 net/http 的网关实现
type Client struct {
	url  string
	http *http.Client
}

// New 按配置创建网关，baseURL 为空时返回 Disabled
func New(conf *config.GatewayConfig) Gateway {
	if strings.TrimSpace(conf.BaseURL) == "" {
		return Disabled{}
	}
	return NewClient(conf, nil)
}

// NewClient 创建 Client，httpClient 为 nil 时按 timeoutSec 新建
func NewClient(conf *config.GatewayConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: time.Duration(conf.TimeoutSec) * time.Second}
	}
	return &Client{
		url:  strings.TrimRight(conf.BaseURL, "/") + "/" + strings.TrimLeft(conf.RoomPath, "/"),
		http: httpClient,
	}
}

func (c *Client) Enabled() bool { return true }

// CreateOrGetRoom 创建或获取远端房间
func (c *Client) CreateOrGetRoom(ctx context.Context, req CreateRoomRequest) (*CreateRoomResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeGatewayError, "序列化建房请求")
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeGatewayError, "构造建房请求")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if token := TokenFrom(ctx); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, errorx.Wrapf(err, errorx.CodeGatewayError, "请求 %s", c.url)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeGatewayError, "读取建房响应")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		zap.L().Warn("远端建房失败",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(raw)),
		)
		return nil, errorx.Newf(errorx.CodeGatewayError, "远端返回 HTTP %d", resp.StatusCode)
	}
	return decodeResponse(raw)
}

// decodeResponse 有包装时取 data，否则直接解析
func decodeResponse(raw []byte) (*CreateRoomResponse, error) {
	payload := raw
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Code != nil {
		if len(env.Data) == 0 || string(env.Data) == "null" {
			return nil, errorx.Newf(errorx.CodeGatewayError, "远端返回错误 code=%d msg=%s", *env.Code, env.Msg)
		}
		payload = env.Data
	}

	var out CreateRoomResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, errorx.Wrap(err, errorx.CodeGatewayError, "解析建房响应")
	}
	if out.RoomInfo.RoomId == 0 {
		return nil, errorx.New(errorx.CodeGatewayError, "建房响应缺少 roomId")
	}
	return &out, nil
}

type tokenKey struct{}

// WithToken 把调用方的 bearer token 放进 context，网关请求时透传
func WithToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFrom 取出 WithToken 放入的 token
func TokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}
