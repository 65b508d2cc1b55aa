// Package chat 编排进入聊天、发送和接收三个流程
// 本地房间始终是 UI 的数据来源，远端网关失败不会回滚本地房间
package chat

import (
	"context"
	"strings"
	"time"

	"campus_chat/internal/dto/request"
	"campus_chat/internal/dto/respond"
	"campus_chat/internal/gateway/remote"
	"campus_chat/internal/model"
	"campus_chat/internal/thread"
	"campus_chat/pkg/errorx"
	"campus_chat/pkg/util/random"

	"go.uber.org/zap"
)

const defaultMessageType = "TEXT"

// RoomStore chat 流程用到的房间存储操作
type RoomStore interface {
	ResolveRoomIdForOpen(ctx context.Context, params map[string]any, proposedId string) (string, error)
	UpsertRoomOnOpen(ctx context.Context, req request.UpsertRoomRequest) (*model.RoomSummary, error)
	UpdateRoomOnSendSmart(ctx context.Context, req request.SmartSendRequest) (string, error)
	UpdateRoomOnReceive(ctx context.Context, roomId, preview string, ts *time.Time) error
	LinkRemoteRoom(ctx context.Context, localId string, remoteId int64) error
	RemoteRoomID(ctx context.Context, localId string) (int64, bool, error)
}

// chatService 聊天编排实现
type chatService struct {
	rooms   RoomStore
	gateway remote.Gateway
}

// NewChatService 构造函数，gateway 为 nil 时视为未启用
func NewChatService(rooms RoomStore, gateway remote.Gateway) *chatService {
	if gateway == nil {
		gateway = remote.Disabled{}
	}
	return &chatService{rooms: rooms, gateway: gateway}
}

// OpenChat 进入聊天
//  1. 生成（或沿用）提议的房间 ID
//  2. 解析规范房间 ID
//  3. 本地打开房间
//  4. 远端 create-or-get，成功后记录本地/远端映射
func (s *chatService) OpenChat(ctx context.Context, req request.OpenChatRequest) (*respond.OpenChatRespond, error) {
	if req.Origin == nil {
		return nil, errorx.New(errorx.CodeInvalidParam, "缺少 origin")
	}
	params := thread.WithContext(req.Origin.Params, req.Origin.Source, req.Self)

	category := req.Category
	if category == "" {
		category = req.Origin.Source
	}
	if c, ok := thread.CanonicalSource(category); ok {
		category = string(c)
	}
	postID := thread.PostID(params)

	// 1. 提议的房间 ID
	proposed := strings.TrimSpace(req.ProposedRoomId)
	if proposed == "" {
		proposed = random.ProposeRoomID(category, postID)
	}

	// 2. 规范房间优先
	resolved, err := s.rooms.ResolveRoomIdForOpen(ctx, params, proposed)
	if err != nil {
		return nil, err
	}

	// 3. 本地打开
	room, err := s.rooms.UpsertRoomOnOpen(ctx, request.UpsertRoomRequest{
		RoomId:          resolved,
		Category:        category,
		Nickname:        req.Nickname,
		ProductTitle:    req.ProductTitle,
		ProductPrice:    req.ProductPrice,
		ProductImageUri: req.ProductImageUri,
		Origin:          &model.RoomOrigin{Source: req.Origin.Source, Params: params},
	})
	if err != nil {
		return nil, err
	}
	rsp := &respond.OpenChatRespond{
		Room:   *room,
		Reused: room.RoomId != proposed,
	}

	// 4. 远端
	if s.gateway.Enabled() && req.ToUserId != 0 {
		s.linkRemote(ctx, req, params, category, postID, rsp)
	}
	if rsp.RemoteRoomId == nil {
		remoteId, ok, err := s.rooms.RemoteRoomID(ctx, room.RoomId)
		if err != nil {
			return nil, err
		}
		if ok {
			rsp.RemoteRoomId = &remoteId
		}
	}

	zap.L().Info("进入聊天",
		zap.String("proposed", proposed),
		zap.String("room_id", room.RoomId),
		zap.Bool("reused", rsp.Reused),
		zap.Bool("remote_linked", rsp.RemoteLinked),
	)
	return rsp, nil
}

// linkRemote 远端失败只记录，不影响本地结果
func (s *chatService) linkRemote(ctx context.Context, req request.OpenChatRequest, params map[string]any, category, postID string, rsp *respond.OpenChatRespond) {
	message := req.Message
	if message == "" {
		// 初始草稿只用于这一次远端请求，本地持久化前已被去掉
		if v, ok := params["initialMessage"].(string); ok {
			message = v
		}
	}
	messageType := req.MessageType
	if messageType == "" {
		messageType = defaultMessageType
	}

	remoteRsp, err := s.gateway.CreateOrGetRoom(ctx, remote.CreateRoomRequest{
		Type:        category,
		TypeId:      postID,
		ToUserId:    req.ToUserId,
		Message:     message,
		MessageType: messageType,
	})
	if err != nil {
		zap.L().Warn("远端建房失败，保留本地房间",
			zap.String("room_id", rsp.Room.RoomId),
			zap.Error(err),
		)
		rsp.RemoteError = err.Error()
		return
	}

	remoteId := int64(remoteRsp.RoomInfo.RoomId)
	if err := s.rooms.LinkRemoteRoom(ctx, rsp.Room.RoomId, remoteId); err != nil {
		zap.L().Error("记录远端房间映射失败",
			zap.String("room_id", rsp.Room.RoomId),
			zap.Int64("remote_id", remoteId),
			zap.Error(err),
		)
		rsp.RemoteError = err.Error()
		return
	}
	rsp.RemoteRoomId = &remoteId
	rsp.RemoteLinked = true
}

// RecordSend 本地消息发送后刷新预览；找不到房间时返回 found=false
// 上下文按打开时的方式补全，保证与打开时得到同一个线程键
func (s *chatService) RecordSend(ctx context.Context, req request.RecordSendRequest) (*respond.RoomIdRespond, error) {
	content := req.Content
	roomId, err := s.rooms.UpdateRoomOnSendSmart(ctx, request.SmartSendRequest{
		RoomId:       req.RoomId,
		OriginParams: thread.WithContext(req.OriginParams, req.Source, req.Self),
		Preview:      &content,
		LastTs:       req.SentAt,
		Nickname:     req.Nickname,
	})
	if err != nil {
		return nil, err
	}
	return &respond.RoomIdRespond{RoomId: roomId, Found: roomId != ""}, nil
}

// RecordReceive 收到消息后刷新预览并累加未读
func (s *chatService) RecordReceive(ctx context.Context, req request.RecordReceiveRequest) error {
	var ts *time.Time
	if req.ReceivedAt != nil {
		t := time.UnixMilli(*req.ReceivedAt)
		ts = &t
	}
	return s.rooms.UpdateRoomOnReceive(ctx, req.RoomId, req.Content, ts)
}
