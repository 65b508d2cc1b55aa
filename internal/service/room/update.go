package room

import (
	"context"
	"strings"
	"time"

	"campus_chat/internal/dto/request"
	"campus_chat/internal/model"
	"campus_chat/internal/thread"
)

// UpdateRoomOnSend 本地消息落盘后无条件刷新预览；房间不存在时什么也不做
func (s *roomStore) UpdateRoomOnSend(ctx context.Context, roomId, preview string, ts *time.Time) error {
	var millis *int64
	if ts != nil {
		m := ts.UnixMilli()
		millis = &m
	}
	return s.mutate(ctx, roomId, func(room *model.RoomSummary) {
		room.LastMessage = normalizePreview(preview)
		room.LastTs = s.tsOrNow(millis)
	})
}

// UpdateRoomOnReceive 收到对方消息：刷新预览并累加未读
func (s *roomStore) UpdateRoomOnReceive(ctx context.Context, roomId, preview string, ts *time.Time) error {
	var millis *int64
	if ts != nil {
		m := ts.UnixMilli()
		millis = &m
	}
	return s.mutate(ctx, roomId, func(room *model.RoomSummary) {
		room.LastMessage = normalizePreview(preview)
		room.LastTs = s.tsOrNow(millis)
		room.UnreadCount++
	})
}

// MarkRoomRead 未读清零
func (s *roomStore) MarkRoomRead(ctx context.Context, roomId string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return err
	}
	i := indexOf(snap.rooms, roomId)
	if i < 0 || snap.rooms[i].UnreadCount == 0 {
		return nil
	}
	snap.rooms[i].UnreadCount = 0
	if err := s.commit(ctx, snap, docRooms); err != nil {
		return err
	}
	s.publish(ctx, model.RoomRead, roomId)
	return nil
}

// UpdateRoomOnSendSmart 房间 ID 可能尚未确定时的预览刷新
// 依次尝试 roomId 精确匹配、上下文解析；都找不到时静默返回空串，不会创建房间
func (s *roomStore) UpdateRoomOnSendSmart(ctx context.Context, req request.SmartSendRequest) (string, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return "", err
	}

	i := indexOf(snap.rooms, req.RoomId)
	if i < 0 && req.OriginParams != nil {
		if key, ok := s.keyOfParams(thread.WithSource(req.OriginParams, req.Source)); ok {
			i = s.findByKey(snap, key)
		}
	}
	if i < 0 {
		return "", nil
	}

	room := &snap.rooms[i]
	changed := false
	if req.Preview != nil {
		room.LastMessage = normalizePreview(*req.Preview)
		room.LastTs = s.tsOrNow(req.LastTs)
		changed = true
	}
	if v := strings.TrimSpace(req.Nickname); v != "" && v != room.Nickname {
		room.Nickname = v
		changed = true
	}
	roomId := room.RoomId
	if !changed {
		return roomId, nil
	}
	if err := s.commit(ctx, snap, docRooms); err != nil {
		return "", err
	}
	s.publish(ctx, model.RoomUpdated, roomId)
	return roomId, nil
}

// mutate 在锁内修改单个房间并提交
func (s *roomStore) mutate(ctx context.Context, roomId string, apply func(room *model.RoomSummary)) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return err
	}
	i := indexOf(snap.rooms, roomId)
	if i < 0 {
		return nil
	}
	apply(&snap.rooms[i])
	if err := s.commit(ctx, snap, docRooms); err != nil {
		return err
	}
	s.publish(ctx, model.RoomUpdated, roomId)
	return nil
}
