package room

import (
	"context"

	"campus_chat/internal/model"
)

// LinkRemoteRoom 记录本地房间对应的远端房间 ID；本地房间不存在时忽略
func (s *roomStore) LinkRemoteRoom(ctx context.Context, localId string, remoteId int64) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return err
	}
	if indexOf(snap.rooms, localId) < 0 {
		return nil
	}
	if current, ok := snap.links[localId]; ok && current == remoteId {
		return nil
	}
	snap.links[localId] = remoteId
	if err := s.commit(ctx, snap, docLinks); err != nil {
		return err
	}
	s.publish(ctx, model.RoomLinked, localId)
	return nil
}

// RemoteRoomID 查询本地房间关联的远端房间 ID
func (s *roomStore) RemoteRoomID(ctx context.Context, localId string) (int64, bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return 0, false, err
	}
	id, ok := snap.links[localId]
	return id, ok, nil
}
