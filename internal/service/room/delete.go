package room

import (
	"context"

	"campus_chat/internal/model"

	"go.uber.org/zap"
)

// DeleteChatRoom 删除单个房间
func (s *roomStore) DeleteChatRoom(ctx context.Context, roomId string) error {
	return s.DeleteChatRooms(ctx, []string{roomId})
}

// DeleteChatRooms 删除房间并清理索引与远端映射
// 索引中值为被删房间 ID 的条目、以及键等于被删房间自身线程键的条目都会被移除
// 索引文档无论是否为空都会重新写入
func (s *roomStore) DeleteChatRooms(ctx context.Context, roomIds []string) error {
	if len(roomIds) == 0 {
		return nil
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return err
	}
	return s.deleteLocked(ctx, snap, roomIds)
}

// DeleteByContext 按上下文解析出规范房间后删除，返回被删除的房间 ID
func (s *roomStore) DeleteByContext(ctx context.Context, params map[string]any) (string, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	key, ok := s.keyOfParams(params)
	if !ok {
		return "", nil
	}
	snap, err := s.load(ctx)
	if err != nil {
		return "", err
	}
	i := s.findByKey(snap, key)
	if i < 0 {
		return "", nil
	}
	roomId := snap.rooms[i].RoomId
	if err := s.deleteLocked(ctx, snap, []string{roomId}); err != nil {
		return "", err
	}
	return roomId, nil
}

func (s *roomStore) deleteLocked(ctx context.Context, snap *snapshot, roomIds []string) error {
	doomed := make(map[string]struct{}, len(roomIds))
	for _, id := range roomIds {
		if id != "" {
			doomed[id] = struct{}{}
		}
	}

	// 1. 从列表移除，同时记下被删房间自身的线程键
	kept := snap.rooms[:0:0]
	staleKeys := make(map[string]struct{})
	var deleted []string
	for _, r := range snap.rooms {
		if _, ok := doomed[r.RoomId]; !ok {
			kept = append(kept, r)
			continue
		}
		deleted = append(deleted, r.RoomId)
		if key, ok := s.keyOfOrigin(r.Origin); ok {
			staleKeys[key] = struct{}{}
		}
	}
	snap.rooms = kept

	// 2. 清理索引：值指向被删房间，或键等于被删房间的线程键
	for key, id := range snap.index {
		_, byValue := doomed[id]
		_, byKey := staleKeys[key]
		if byValue || byKey {
			delete(snap.index, key)
		}
	}

	// 3. 清理远端映射
	docs := docRooms | docIndex
	for id := range doomed {
		if _, ok := snap.links[id]; ok {
			delete(snap.links, id)
			docs |= docLinks
		}
	}

	if err := s.commit(ctx, snap, docs); err != nil {
		return err
	}
	zap.L().Info("删除房间",
		zap.Strings("requested", roomIds),
		zap.Strings("deleted", deleted),
	)
	for _, id := range deleted {
		s.publish(ctx, model.RoomDeleted, id)
	}
	return nil
}
