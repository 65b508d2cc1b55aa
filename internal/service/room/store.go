// Package room 维护本地房间摘要列表、线程索引和远端房间映射
// 三份文档通过一次 MultiSet 一起提交，所有操作由同一把锁串行化
package room

import (
	"context"
	"sort"
	"sync"
	"time"

	"campus_chat/internal/dao/kv"
	"campus_chat/internal/infrastructure/mq"
	"campus_chat/internal/model"
	"campus_chat/internal/thread"
	"campus_chat/pkg/constants"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Keys 房间相关文档的存储键
type Keys struct {
	Rooms string // 房间摘要列表
	Index string // ThreadKey -> roomId
	Links string // 本地 roomId -> 远端 roomId
}

// DefaultKeys 默认存储键
var DefaultKeys = Keys{
	Rooms: constants.ROOM_LIST_KEY,
	Index: constants.THREAD_INDEX_KEY,
	Links: constants.REMOTE_LINK_KEY,
}

// 需要提交的文档
const (
	docRooms = 1 << iota
	docIndex
	docLinks
)

// roomStore 房间摘要存储
type roomStore struct {
	mutex       sync.Mutex
	kv          kv.Store
	keys        Keys
	resolver    thread.Resolver
	placeholder string
	now         func() time.Time
	publisher   mq.EventPublisher
}

// Option 构造选项
type Option func(*roomStore)

// WithClock 替换时钟，测试使用
func WithClock(now func() time.Time) Option {
	return func(s *roomStore) { s.now = now }
}

// WithPublisher 设置事件发布者
func WithPublisher(p mq.EventPublisher) Option {
	return func(s *roomStore) { s.publisher = p }
}

// WithPolicy 设置线程键策略
func WithPolicy(p thread.Policy) Option {
	return func(s *roomStore) { s.resolver = thread.NewResolver(p) }
}

// WithPlaceholder 设置新房间的默认预览
func WithPlaceholder(text string) Option {
	return func(s *roomStore) {
		if text != "" {
			s.placeholder = text
		}
	}
}

// WithKeys 设置存储键，空字段保持默认
func WithKeys(k Keys) Option {
	return func(s *roomStore) {
		if k.Rooms != "" {
			s.keys.Rooms = k.Rooms
		}
		if k.Index != "" {
			s.keys.Index = k.Index
		}
		if k.Links != "" {
			s.keys.Links = k.Links
		}
	}
}

// NewRoomStore 构造函数
func NewRoomStore(store kv.Store, opts ...Option) *roomStore {
	s := &roomStore{
		kv:          store,
		keys:        DefaultKeys,
		resolver:    thread.NewResolver(thread.DefaultPolicy),
		placeholder: constants.DEFAULT_PLACEHOLDER,
		now:         time.Now,
		publisher:   mq.Nop{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// snapshot 一次加载出的三份文档
type snapshot struct {
	rooms []model.RoomSummary
	index map[string]string
	links map[string]int64
}

// load 一次 MultiGet 读取全部文档，缺失的文档取空值
func (s *roomStore) load(ctx context.Context) (*snapshot, error) {
	values, err := s.kv.MultiGet(ctx, []string{s.keys.Rooms, s.keys.Index, s.keys.Links})
	if err != nil {
		return nil, err
	}
	snap := &snapshot{
		rooms: []model.RoomSummary{},
		index: map[string]string{},
		links: map[string]int64{},
	}
	if _, err := kv.Decode(values, s.keys.Rooms, &snap.rooms); err != nil {
		return nil, err
	}
	if _, err := kv.Decode(values, s.keys.Index, &snap.index); err != nil {
		return nil, err
	}
	if _, err := kv.Decode(values, s.keys.Links, &snap.links); err != nil {
		return nil, err
	}
	// 解码 null 时 map 会被置空
	if snap.rooms == nil {
		snap.rooms = []model.RoomSummary{}
	}
	if snap.index == nil {
		snap.index = map[string]string{}
	}
	if snap.links == nil {
		snap.links = map[string]int64{}
	}
	sortRooms(snap.rooms)
	return snap, nil
}

// commit 把指定文档放进同一批次提交
func (s *roomStore) commit(ctx context.Context, snap *snapshot, docs int) error {
	batch := kv.NewBatch()
	if docs&docRooms != 0 {
		sortRooms(snap.rooms)
		if err := batch.Put(s.keys.Rooms, snap.rooms); err != nil {
			return err
		}
	}
	if docs&docIndex != 0 {
		if err := batch.Put(s.keys.Index, snap.index); err != nil {
			return err
		}
	}
	if docs&docLinks != 0 {
		if err := batch.Put(s.keys.Links, snap.links); err != nil {
			return err
		}
	}
	if err := batch.Commit(ctx, s.kv); err != nil {
		zap.L().Error("提交房间文档失败", zap.Int("docs", docs), zap.Error(err))
		return err
	}
	return nil
}

// publish 尽力投递事件，失败只记日志
func (s *roomStore) publish(ctx context.Context, typ model.RoomEventType, roomID string) {
	event := model.RoomEvent{
		ID:     uuid.NewString(),
		Type:   typ,
		RoomID: roomID,
		At:     s.nowMillis(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		zap.L().Warn("房间事件投递失败",
			zap.String("type", string(typ)),
			zap.String("room_id", roomID),
			zap.Error(err),
		)
	}
}

func (s *roomStore) nowMillis() int64 {
	return s.now().UnixMilli()
}

// tsOrNow 毫秒时间戳，nil 时取当前时间
func (s *roomStore) tsOrNow(ts *int64) int64 {
	if ts != nil {
		return *ts
	}
	return s.nowMillis()
}

// keyOfParams 从松散参数推导线程键
func (s *roomStore) keyOfParams(params map[string]any) (string, bool) {
	return s.resolver.KeyFromParams(params)
}

// keyOfOrigin 从房间自身的 origin 推导线程键
func (s *roomStore) keyOfOrigin(o *model.RoomOrigin) (string, bool) {
	origin, ok := thread.FromRoomOrigin(o)
	if !ok {
		return "", false
	}
	return s.resolver.Key(origin)
}

// findByKey 先查索引，索引缺失或已失效时全量扫描房间的 origin
func (s *roomStore) findByKey(snap *snapshot, key string) int {
	if id, ok := snap.index[key]; ok {
		if i := indexOf(snap.rooms, id); i >= 0 {
			return i
		}
	}
	for i := range snap.rooms {
		if k, ok := s.keyOfOrigin(snap.rooms[i].Origin); ok && k == key {
			return i
		}
	}
	return -1
}

// LoadRooms 房间列表，按 lastTs 降序
func (s *roomStore) LoadRooms(ctx context.Context) ([]model.RoomSummary, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return snap.rooms, nil
}

// GetRoom 按 ID 获取单个房间
func (s *roomStore) GetRoom(ctx context.Context, roomId string) (*model.RoomSummary, bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return nil, false, err
	}
	i := indexOf(snap.rooms, roomId)
	if i < 0 {
		return nil, false, nil
	}
	room := snap.rooms[i]
	return &room, true, nil
}

// CountUnread 所有房间的未读总数
func (s *roomStore) CountUnread(ctx context.Context) (int, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, r := range snap.rooms {
		total += r.UnreadCount
	}
	return total, nil
}

func indexOf(rooms []model.RoomSummary, roomId string) int {
	if roomId == "" {
		return -1
	}
	for i := range rooms {
		if rooms[i].RoomId == roomId {
			return i
		}
	}
	return -1
}

// sortRooms 按 lastTs 降序，相同时间保持原有顺序
func sortRooms(rooms []model.RoomSummary) {
	sort.SliceStable(rooms, func(i, j int) bool {
		return rooms[i].LastTs > rooms[j].LastTs
	})
}
