package room

import (
	"context"
	"strings"

	"campus_chat/internal/dto/request"
	"campus_chat/internal/model"
	"campus_chat/internal/thread"
	"campus_chat/pkg/errorx"

	"go.uber.org/zap"
)

// UpsertRoomOnOpen 打开或创建房间
// 先按 roomId 精确匹配，再按线程键匹配；两者不一致时以线程键对应的规范房间为准
func (s *roomStore) UpsertRoomOnOpen(ctx context.Context, req request.UpsertRoomRequest) (*model.RoomSummary, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	// 1. 计算线程键（可能没有）
	var params map[string]any
	if req.Origin != nil {
		params = req.Origin.Params
	}
	key, hasKey := s.keyOfOrigin(req.Origin)

	// 2. 定位已有房间，线程键优先
	target := indexOf(snap.rooms, req.RoomId)
	if hasKey {
		if i := s.findByKey(snap, key); i >= 0 {
			if target >= 0 && i != target {
				zap.L().Info("线程键命中规范房间，忽略提议的房间 ID",
					zap.String("proposed", req.RoomId),
					zap.String("canonical", snap.rooms[i].RoomId),
				)
			}
			target = i
		}
	}

	// 板块写进 params，之后按上下文查找时只凭 params 就能得到同一个线程键
	var origin *model.RoomOrigin
	if req.Origin != nil {
		origin = &model.RoomOrigin{
			Source: req.Origin.Source,
			Params: thread.Sanitize(thread.WithSource(params, req.Origin.Source)),
		}
	}
	preview := normalizePreview(req.Preview)

	eventType := model.RoomUpdated
	if target < 0 {
		if strings.TrimSpace(req.RoomId) == "" {
			return nil, errorx.New(errorx.CodeInvalidParam, "roomId 不能为空")
		}
		// 3. 新建房间，插入列表头部
		room := model.RoomSummary{
			RoomId:      req.RoomId,
			Category:    s.categoryOf(req.Category, req.Origin),
			LastMessage: s.placeholder,
			LastTs:      s.nowMillis(),
			Origin:      origin,
		}
		if preview != "" {
			room.LastMessage = preview
			room.LastTs = s.tsOrNow(req.LastTs)
		}
		mergeDetails(&room, req)
		snap.rooms = append([]model.RoomSummary{room}, snap.rooms...)
		target = 0
		eventType = model.RoomCreated
	} else {
		// 4. 合并到已有房间，空值不覆盖已知信息
		room := &snap.rooms[target]
		mergeDetails(room, req)
		if origin != nil {
			room.Origin = origin
		}
		if preview != "" {
			room.LastMessage = preview
			room.LastTs = s.tsOrNow(req.LastTs)
		}
	}

	roomId := snap.rooms[target].RoomId
	if hasKey {
		snap.index[key] = roomId
	}
	result := snap.rooms[target]

	if err := s.commit(ctx, snap, docRooms|docIndex); err != nil {
		return nil, err
	}
	s.publish(ctx, eventType, roomId)
	return &result, nil
}

// FindExistingRoomIdByContext 按上下文查找规范房间，未命中返回空串
func (s *roomStore) FindExistingRoomIdByContext(ctx context.Context, params map[string]any) (string, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.findIdLocked(ctx, params)
}

// ResolveRoomIdForOpen 有规范房间时返回其 ID，否则原样返回提议的 ID
func (s *roomStore) ResolveRoomIdForOpen(ctx context.Context, params map[string]any, proposedId string) (string, error) {
	id, err := s.FindExistingRoomIdByContext(ctx, params)
	if err != nil {
		return "", err
	}
	if id != "" {
		return id, nil
	}
	return proposedId, nil
}

func (s *roomStore) findIdLocked(ctx context.Context, params map[string]any) (string, error) {
	key, ok := s.keyOfParams(params)
	if !ok {
		return "", nil
	}
	snap, err := s.load(ctx)
	if err != nil {
		return "", err
	}
	if i := s.findByKey(snap, key); i >= 0 {
		return snap.rooms[i].RoomId, nil
	}
	return "", nil
}

// categoryOf 请求里的板块优先，其次取 origin 的板块，都没有时归为二手市场
func (s *roomStore) categoryOf(category string, origin *model.RoomOrigin) model.Category {
	if c, ok := thread.CanonicalSource(category); ok {
		return c
	}
	if o, ok := thread.FromRoomOrigin(origin); ok {
		return o.Category()
	}
	if origin != nil {
		if c, ok := thread.CanonicalSource(origin.Source); ok {
			return c
		}
	}
	return model.CategoryMarket
}

// mergeDetails 只用非空的新值覆盖冗余字段
func mergeDetails(room *model.RoomSummary, req request.UpsertRoomRequest) {
	if v := strings.TrimSpace(req.Nickname); v != "" {
		room.Nickname = v
	}
	if v := strings.TrimSpace(req.ProductTitle); v != "" {
		room.ProductTitle = v
	}
	if req.ProductPrice != nil {
		price := *req.ProductPrice
		room.ProductPrice = &price
	}
	if req.ProductImageUri != nil && strings.TrimSpace(*req.ProductImageUri) != "" {
		uri := strings.TrimSpace(*req.ProductImageUri)
		room.ProductImageUri = &uri
	}
}
