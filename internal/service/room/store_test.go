package room

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"campus_chat/internal/dao/kv"
	"campus_chat/internal/dto/request"
	"campus_chat/internal/infrastructure/mq"
	"campus_chat/internal/model"
	"campus_chat/internal/thread"
	"campus_chat/pkg/constants"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock 每次读取前进一毫秒
type fakeClock struct {
	mutex sync.Mutex
	t     time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.t = c.t.Add(time.Millisecond)
	return c.t
}

func newTestStore(t *testing.T, opts ...Option) (*roomStore, kv.Store) {
	t.Helper()
	backend := kv.NewMemoryStore()
	clock := &fakeClock{t: time.UnixMilli(1_700_000_000_000)}
	opts = append([]Option{WithClock(clock.Now)}, opts...)
	return NewRoomStore(backend, opts...), backend
}

func marketParams(seller, buyer string) map[string]any {
	return map[string]any{
		"source":      "market",
		"postId":      "P1",
		"sellerEmail": seller,
		"buyerEmail":  buyer,
	}
}

func openReq(roomId string, params map[string]any) request.UpsertRoomRequest {
	return request.UpsertRoomRequest{
		RoomId: roomId,
		Origin: &model.RoomOrigin{Source: "market", Params: params},
	}
}

func strPtr(s string) *string { return &s }

func readIndex(t *testing.T, backend kv.Store) map[string]string {
	t.Helper()
	index := map[string]string{}
	_, err := kv.LoadJSON(context.Background(), backend, constants.THREAD_INDEX_KEY, &index)
	require.NoError(t, err)
	return index
}

func TestUpsertRoomOnOpen_CreatesWithPlaceholder(t *testing.T) {
	ctx := context.Background()
	s, backend := newTestStore(t)

	room, err := s.UpsertRoomOnOpen(ctx, request.UpsertRoomRequest{
		RoomId:       "roomX",
		Nickname:     "seller",
		ProductTitle: "desk lamp",
		Origin:       &model.RoomOrigin{Source: "market", Params: marketParams("s@x.com", "a@x.com")},
	})
	require.NoError(t, err)
	assert.Equal(t, "roomX", room.RoomId)
	assert.Equal(t, model.CategoryMarket, room.Category)
	assert.Equal(t, constants.DEFAULT_PLACEHOLDER, room.LastMessage)
	assert.NotZero(t, room.LastTs)
	assert.Equal(t, 0, room.UnreadCount)

	index := readIndex(t, backend)
	assert.Equal(t, map[string]string{"market::P1::a@x.com|s@x.com": "roomX"}, index)
}

func TestUpsertRoomOnOpen_CanonicalReuse(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	params := marketParams("S@x.com", "a@x.com")

	_, err := s.UpsertRoomOnOpen(ctx, openReq("roomX", params))
	require.NoError(t, err)

	// 同一上下文，角色对调、提议了新 ID
	swapped := marketParams("a@x.com", "s@x.com")
	room, err := s.UpsertRoomOnOpen(ctx, openReq("roomY", swapped))
	require.NoError(t, err)
	assert.Equal(t, "roomX", room.RoomId)

	rooms, err := s.LoadRooms(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "roomX", rooms[0].RoomId)

	resolved, err := s.ResolveRoomIdForOpen(ctx, params, "roomY")
	require.NoError(t, err)
	assert.Equal(t, "roomX", resolved)
}

func TestUpsertRoomOnOpen_ThreadKeyWinsOverExistingProposedId(t *testing.T) {
	ctx := context.Background()
	s, backend := newTestStore(t)

	// roomB 没有上下文，roomA 是该线程的规范房间
	_, err := s.UpsertRoomOnOpen(ctx, request.UpsertRoomRequest{RoomId: "roomB"})
	require.NoError(t, err)
	_, err = s.UpsertRoomOnOpen(ctx, openReq("roomA", marketParams("s@x.com", "b@x.com")))
	require.NoError(t, err)

	room, err := s.UpsertRoomOnOpen(ctx, openReq("roomB", marketParams("s@x.com", "b@x.com")))
	require.NoError(t, err)
	assert.Equal(t, "roomA", room.RoomId)
	assert.Equal(t, "roomA", readIndex(t, backend)["market::P1::b@x.com|s@x.com"])

	rooms, err := s.LoadRooms(ctx)
	require.NoError(t, err)
	assert.Len(t, rooms, 2)
}

func TestUpsertRoomOnOpen_MergeDoesNotClobber(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	price := int64(15000)
	params := marketParams("s@x.com", "b@x.com")

	_, err := s.UpsertRoomOnOpen(ctx, request.UpsertRoomRequest{
		RoomId:          "r1",
		Nickname:        "Kim",
		ProductTitle:    "bike",
		ProductPrice:    &price,
		ProductImageUri: strPtr("file:///bike.jpg"),
		Origin:          &model.RoomOrigin{Source: "market", Params: params},
	})
	require.NoError(t, err)
	require.NoError(t, s.UpdateRoomOnSend(ctx, "r1", "hello", nil))

	// 再次打开，不带任何冗余字段和预览
	room, err := s.UpsertRoomOnOpen(ctx, request.UpsertRoomRequest{RoomId: "r1", ProductImageUri: strPtr("  ")})
	require.NoError(t, err)
	assert.Equal(t, "Kim", room.Nickname)
	assert.Equal(t, "bike", room.ProductTitle)
	require.NotNil(t, room.ProductPrice)
	assert.EqualValues(t, 15000, *room.ProductPrice)
	require.NotNil(t, room.ProductImageUri)
	assert.Equal(t, "file:///bike.jpg", *room.ProductImageUri)
	assert.Equal(t, "hello", room.LastMessage)
	require.NotNil(t, room.Origin, "origin survives an open without context")

	// 新值会覆盖
	room, err = s.UpsertRoomOnOpen(ctx, request.UpsertRoomRequest{RoomId: "r1", Nickname: "Lee", Preview: "  new preview "})
	require.NoError(t, err)
	assert.Equal(t, "Lee", room.Nickname)
	assert.Equal(t, "new preview", room.LastMessage)
}

func TestUpsertRoomOnOpen_SanitizesOrigin(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	params := marketParams("s@x.com", "b@x.com")
	params["initialMessage"] = "is this still available?"
	params["autoSend"] = true

	_, err := s.UpsertRoomOnOpen(ctx, openReq("r1", params))
	require.NoError(t, err)

	room, found, err := s.GetRoom(ctx, "r1")
	require.NoError(t, err)
	require.True(t, found)
	assert.NotContains(t, room.Origin.Params, "initialMessage")
	assert.NotContains(t, room.Origin.Params, "autoSend")
	assert.Equal(t, "P1", room.Origin.Params["postId"])
	// 调用方的参数不被修改
	assert.Contains(t, params, "initialMessage")
}

func TestUpsertRoomOnOpen_NoKeyMeansRoomIdOnly(t *testing.T) {
	ctx := context.Background()
	s, backend := newTestStore(t)
	noPost := map[string]any{"source": "market", "sellerEmail": "s@x.com"}

	_, err := s.UpsertRoomOnOpen(ctx, openReq("r1", noPost))
	require.NoError(t, err)
	_, err = s.UpsertRoomOnOpen(ctx, openReq("r2", noPost))
	require.NoError(t, err)

	rooms, err := s.LoadRooms(ctx)
	require.NoError(t, err)
	assert.Len(t, rooms, 2)
	assert.Empty(t, readIndex(t, backend))
}

func TestUpsertRoomOnOpen_EmptyRoomIdRejected(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.UpsertRoomOnOpen(context.Background(), request.UpsertRoomRequest{})
	assert.Error(t, err)
}

func TestUpsertRoomOnOpen_CategoryFromOrigin(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	room, err := s.UpsertRoomOnOpen(ctx, request.UpsertRoomRequest{
		RoomId: "g1",
		Origin: &model.RoomOrigin{Source: "group_buy", Params: map[string]any{"postId": 7, "sellerId": 3}},
	})
	require.NoError(t, err)
	assert.Equal(t, model.CategoryGroup, room.Category)

	room, err = s.UpsertRoomOnOpen(ctx, request.UpsertRoomRequest{RoomId: "l1", Category: "lost"})
	require.NoError(t, err)
	assert.Equal(t, model.CategoryLost, room.Category)
}

func TestUpdateRoomOnSend_PreviewAndTimestamp(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	_, err := s.UpsertRoomOnOpen(ctx, request.UpsertRoomRequest{RoomId: "r1"})
	require.NoError(t, err)

	at := time.UnixMilli(1_800_000_000_000)
	require.NoError(t, s.UpdateRoomOnSend(ctx, "r1", "hello", &at))
	room, _, err := s.GetRoom(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "hello", room.LastMessage)
	assert.Equal(t, at.UnixMilli(), room.LastTs)

	// 再次打开不清空预览
	room, err = s.UpsertRoomOnOpen(ctx, request.UpsertRoomRequest{RoomId: "r1"})
	require.NoError(t, err)
	assert.Equal(t, "hello", room.LastMessage)
	assert.Equal(t, at.UnixMilli(), room.LastTs)

	require.NoError(t, s.UpdateRoomOnSend(ctx, "r1", "   ", nil))
	room, _, err = s.GetRoom(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "", room.LastMessage)
	assert.Greater(t, room.LastTs, int64(0))

	// 不存在的房间静默忽略
	require.NoError(t, s.UpdateRoomOnSend(ctx, "ghost", "x", nil))
	rooms, err := s.LoadRooms(ctx)
	require.NoError(t, err)
	assert.Len(t, rooms, 1)
}

func TestPreviewTruncation(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	_, err := s.UpsertRoomOnOpen(ctx, request.UpsertRoomRequest{RoomId: "r1"})
	require.NoError(t, err)

	exact := strings.Repeat("a", 80)
	require.NoError(t, s.UpdateRoomOnSend(ctx, "r1", exact, nil))
	room, _, err := s.GetRoom(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, exact, room.LastMessage)

	long := strings.Repeat("b", 85)
	require.NoError(t, s.UpdateRoomOnSend(ctx, "r1", long, nil))
	room, _, err = s.GetRoom(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("b", 80)+"…", room.LastMessage)

	// 按字符而非字节计数
	korean := strings.Repeat("가", 81)
	assert.Equal(t, strings.Repeat("가", 80)+"…", normalizePreview(korean))
	assert.Equal(t, strings.Repeat("가", 80), normalizePreview(strings.Repeat("가", 80)))
}

func TestLoadRooms_SortedDescending(t *testing.T) {
	ctx := context.Background()
	s, backend := newTestStore(t)

	for i := 0; i < 5; i++ {
		_, err := s.UpsertRoomOnOpen(ctx, request.UpsertRoomRequest{RoomId: fmt.Sprintf("r%d", i)})
		require.NoError(t, err)
	}
	old := time.UnixMilli(1_000)
	require.NoError(t, s.UpdateRoomOnSend(ctx, "r4", "oldest", &old))
	require.NoError(t, s.UpdateRoomOnSend(ctx, "r0", "newest", nil))
	require.NoError(t, s.UpdateRoomOnReceive(ctx, "r2", "incoming", nil))

	// 存储里的顺序被打乱也不影响读取结果
	scrambled := []model.RoomSummary{{RoomId: "z", LastTs: 1}, {RoomId: "y", LastTs: 3}, {RoomId: "x", LastTs: 2}}
	other := NewRoomStore(backend, WithKeys(Keys{Rooms: "scrambled"}))
	require.NoError(t, kv.SaveJSON(ctx, backend, "scrambled", scrambled))
	got, err := other.LoadRooms(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"y", "x", "z"}, ids(got))

	rooms, err := s.LoadRooms(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 5)
	for i := 1; i < len(rooms); i++ {
		assert.GreaterOrEqual(t, rooms[i-1].LastTs, rooms[i].LastTs)
	}
	assert.Equal(t, "r2", rooms[0].RoomId)
	assert.Equal(t, "r4", rooms[4].RoomId)
}

func ids(rooms []model.RoomSummary) []string {
	out := make([]string, len(rooms))
	for i, r := range rooms {
		out[i] = r.RoomId
	}
	return out
}

func TestUpdateRoomOnSendSmart(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	params := marketParams("s@x.com", "b@x.com")
	_, err := s.UpsertRoomOnOpen(ctx, openReq("roomX", params))
	require.NoError(t, err)

	t.Run("fallback to origin params", func(t *testing.T) {
		id, err := s.UpdateRoomOnSendSmart(ctx, request.SmartSendRequest{
			OriginParams: marketParams("B@x.com", "S@x.com"),
			Preview:      strPtr("sent before id resolved"),
		})
		require.NoError(t, err)
		assert.Equal(t, "roomX", id)

		rooms, err := s.LoadRooms(ctx)
		require.NoError(t, err)
		require.Len(t, rooms, 1)
		assert.Equal(t, "sent before id resolved", rooms[0].LastMessage)
	})

	t.Run("exact room id first", func(t *testing.T) {
		ts := int64(1_900_000_000_000)
		id, err := s.UpdateRoomOnSendSmart(ctx, request.SmartSendRequest{
			RoomId:       "roomX",
			OriginParams: map[string]any{"source": "lost", "postId": "other", "authorId": 1},
			Preview:      strPtr("by id"),
			LastTs:       &ts,
		})
		require.NoError(t, err)
		assert.Equal(t, "roomX", id)
		room, _, err := s.GetRoom(ctx, "roomX")
		require.NoError(t, err)
		assert.Equal(t, "by id", room.LastMessage)
		assert.Equal(t, ts, room.LastTs)
	})

	t.Run("nickname only", func(t *testing.T) {
		id, err := s.UpdateRoomOnSendSmart(ctx, request.SmartSendRequest{RoomId: "roomX", Nickname: "Park"})
		require.NoError(t, err)
		assert.Equal(t, "roomX", id)
		room, _, err := s.GetRoom(ctx, "roomX")
		require.NoError(t, err)
		assert.Equal(t, "Park", room.Nickname)
		assert.Equal(t, "by id", room.LastMessage)
	})

	t.Run("unresolvable is a silent no-op", func(t *testing.T) {
		id, err := s.UpdateRoomOnSendSmart(ctx, request.SmartSendRequest{
			RoomId:       "ghost",
			OriginParams: marketParams("x@x.com", "y@x.com"),
			Preview:      strPtr("lost message"),
		})
		require.NoError(t, err)
		assert.Equal(t, "", id)
		rooms, err := s.LoadRooms(ctx)
		require.NoError(t, err)
		assert.Len(t, rooms, 1)
	})
}

func TestMarkRoomReadAndReceive(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	_, err := s.UpsertRoomOnOpen(ctx, request.UpsertRoomRequest{RoomId: "r1"})
	require.NoError(t, err)
	_, err = s.UpsertRoomOnOpen(ctx, request.UpsertRoomRequest{RoomId: "r2"})
	require.NoError(t, err)

	require.NoError(t, s.UpdateRoomOnReceive(ctx, "r1", "hi", nil))
	require.NoError(t, s.UpdateRoomOnReceive(ctx, "r1", "there", nil))
	require.NoError(t, s.UpdateRoomOnReceive(ctx, "r2", "yo", nil))

	total, err := s.CountUnread(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	require.NoError(t, s.MarkRoomRead(ctx, "r1"))
	require.NoError(t, s.MarkRoomRead(ctx, "ghost"))
	room, _, err := s.GetRoom(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, 0, room.UnreadCount)
	assert.Equal(t, "there", room.LastMessage)

	total, err = s.CountUnread(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestDeleteChatRoom_Cleanup(t *testing.T) {
	ctx := context.Background()
	s, backend := newTestStore(t)
	params := marketParams("s@x.com", "b@x.com")

	_, err := s.UpsertRoomOnOpen(ctx, openReq("roomX", params))
	require.NoError(t, err)
	_, err = s.UpsertRoomOnOpen(ctx, openReq("keep", marketParams("s@x.com", "c@x.com")))
	require.NoError(t, err)
	require.NoError(t, s.LinkRemoteRoom(ctx, "roomX", 901))

	require.NoError(t, s.DeleteChatRoom(ctx, "roomX"))

	rooms, err := s.LoadRooms(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"keep"}, ids(rooms))
	for _, v := range readIndex(t, backend) {
		assert.NotEqual(t, "roomX", v)
	}
	_, linked, err := s.RemoteRoomID(ctx, "roomX")
	require.NoError(t, err)
	assert.False(t, linked)

	// 同一上下文再次打开得到新房间，旧 ID 不会复活
	room, err := s.UpsertRoomOnOpen(ctx, openReq("roomZ", params))
	require.NoError(t, err)
	assert.Equal(t, "roomZ", room.RoomId)
}

func TestDeleteChatRooms_ScrubsDriftedIndex(t *testing.T) {
	ctx := context.Background()
	s, backend := newTestStore(t)
	params := marketParams("s@x.com", "b@x.com")
	_, err := s.UpsertRoomOnOpen(ctx, openReq("roomX", params))
	require.NoError(t, err)

	// 手工制造漂移：索引键正确但值指向别处，另有一条指向已删房间的残留
	require.NoError(t, kv.SaveJSON(ctx, backend, constants.THREAD_INDEX_KEY, map[string]string{
		"market::P1::b@x.com|s@x.com": "elsewhere",
		"lost::9::z@x.com":            "roomX",
		"group::1::q@x.com":           "survivor",
	}))

	require.NoError(t, s.DeleteChatRooms(ctx, []string{"roomX"}))
	assert.Equal(t, map[string]string{"group::1::q@x.com": "survivor"}, readIndex(t, backend))
}

func TestDeleteChatRooms_AlwaysWritesIndex(t *testing.T) {
	ctx := context.Background()
	s, backend := newTestStore(t)

	require.NoError(t, s.DeleteChatRooms(ctx, []string{"nothing"}))
	_, found, err := backend.Get(ctx, constants.THREAD_INDEX_KEY)
	require.NoError(t, err)
	assert.True(t, found)

	require.NoError(t, s.DeleteChatRooms(ctx, nil))
}

func TestDeleteChatRooms_Many(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	for _, id := range []string{"a", "b", "c"} {
		_, err := s.UpsertRoomOnOpen(ctx, request.UpsertRoomRequest{RoomId: id})
		require.NoError(t, err)
	}
	require.NoError(t, s.DeleteChatRooms(ctx, []string{"a", "c", "missing"}))
	rooms, err := s.LoadRooms(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids(rooms))
}

func TestDeleteByContext(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	params := marketParams("s@x.com", "b@x.com")
	_, err := s.UpsertRoomOnOpen(ctx, openReq("roomX", params))
	require.NoError(t, err)

	id, err := s.DeleteByContext(ctx, map[string]any{"source": "market"})
	require.NoError(t, err)
	assert.Equal(t, "", id)

	id, err = s.DeleteByContext(ctx, marketParams("b@x.com", "s@x.com"))
	require.NoError(t, err)
	assert.Equal(t, "roomX", id)

	rooms, err := s.LoadRooms(ctx)
	require.NoError(t, err)
	assert.Empty(t, rooms)

	id, err = s.DeleteByContext(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, "", id)
}

func TestFindExistingRoomIdByContext_FallbackScan(t *testing.T) {
	ctx := context.Background()
	s, backend := newTestStore(t)
	params := marketParams("s@x.com", "b@x.com")
	_, err := s.UpsertRoomOnOpen(ctx, openReq("roomX", params))
	require.NoError(t, err)

	// 索引丢失，仍能通过房间自身的 origin 找到
	require.NoError(t, backend.Remove(ctx, constants.THREAD_INDEX_KEY))
	id, err := s.FindExistingRoomIdByContext(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, "roomX", id)

	// 索引指向已不存在的房间时同样回退到扫描
	require.NoError(t, kv.SaveJSON(ctx, backend, constants.THREAD_INDEX_KEY, map[string]string{
		"market::P1::b@x.com|s@x.com": "gone",
	}))
	id, err = s.FindExistingRoomIdByContext(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, "roomX", id)

	id, err = s.FindExistingRoomIdByContext(ctx, marketParams("nobody@x.com", ""))
	require.NoError(t, err)
	assert.Equal(t, "", id)

	resolved, err := s.ResolveRoomIdForOpen(ctx, nil, "proposed")
	require.NoError(t, err)
	assert.Equal(t, "proposed", resolved)
}

// 状态机：Unknown -> Open -> Open(同一 ID) -> Deleted -> Open(新 ID)
func TestResolutionStateMachine(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	params := map[string]any{"source": "groupbuy", "postId": 42, "sellerEmail": "a@x.com", "buyerEmail": "b@y.com"}
	origin := &model.RoomOrigin{Source: "groupbuy", Params: params}

	id, err := s.ResolveRoomIdForOpen(ctx, params, "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", id)

	_, err = s.UpsertRoomOnOpen(ctx, request.UpsertRoomRequest{RoomId: id, Origin: origin})
	require.NoError(t, err)

	for _, proposed := range []string{"p2", "p3", "p4"} {
		id, err := s.ResolveRoomIdForOpen(ctx, params, proposed)
		require.NoError(t, err)
		assert.Equal(t, "p1", id)
		room, err := s.UpsertRoomOnOpen(ctx, request.UpsertRoomRequest{RoomId: proposed, Origin: origin})
		require.NoError(t, err)
		assert.Equal(t, "p1", room.RoomId)
	}

	require.NoError(t, s.DeleteChatRoom(ctx, "p1"))
	id, err = s.ResolveRoomIdForOpen(ctx, params, "p5")
	require.NoError(t, err)
	assert.Equal(t, "p5", id)
}

func TestLinkRemoteRoom(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	require.NoError(t, s.LinkRemoteRoom(ctx, "ghost", 1))
	_, ok, err := s.RemoteRoomID(ctx, "ghost")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.UpsertRoomOnOpen(ctx, request.UpsertRoomRequest{RoomId: "r1"})
	require.NoError(t, err)
	require.NoError(t, s.LinkRemoteRoom(ctx, "r1", 77))
	remote, ok, err := s.RemoteRoomID(ctx, "r1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.EqualValues(t, 77, remote)
}

func TestPolicyStrictRequiresBothParticipants(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, WithPolicy(thread.Policy{MinParticipants: 2}))
	oneSided := map[string]any{"source": "market", "postId": "P1", "sellerEmail": "s@x.com"}

	_, err := s.UpsertRoomOnOpen(ctx, openReq("r1", oneSided))
	require.NoError(t, err)
	_, err = s.UpsertRoomOnOpen(ctx, openReq("r2", oneSided))
	require.NoError(t, err)

	rooms, err := s.LoadRooms(ctx)
	require.NoError(t, err)
	assert.Len(t, rooms, 2)
}

func TestConcurrentOpensProduceOneRoom(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	params := marketParams("s@x.com", "b@x.com")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.UpsertRoomOnOpen(ctx, openReq(fmt.Sprintf("proposal-%d", i), params))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	rooms, err := s.LoadRooms(ctx)
	require.NoError(t, err)
	assert.Len(t, rooms, 1)
}

type brokenStore struct {
	kv.Store
	failGet bool
	failSet bool
}

var errDisk = errors.New("disk full")

func (b *brokenStore) MultiGet(ctx context.Context, keys []string) (map[string][]byte, error) {
	if b.failGet {
		return nil, errDisk
	}
	return b.Store.MultiGet(ctx, keys)
}

func (b *brokenStore) MultiSet(ctx context.Context, entries map[string][]byte) error {
	if b.failSet {
		return errDisk
	}
	return b.Store.MultiSet(ctx, entries)
}

func TestStorageErrorsPropagate(t *testing.T) {
	ctx := context.Background()
	backend := &brokenStore{Store: kv.NewMemoryStore()}
	s := NewRoomStore(backend)
	_, err := s.UpsertRoomOnOpen(ctx, request.UpsertRoomRequest{RoomId: "r1"})
	require.NoError(t, err)

	backend.failSet = true
	_, err = s.UpsertRoomOnOpen(ctx, request.UpsertRoomRequest{RoomId: "r2"})
	assert.ErrorIs(t, err, errDisk)
	assert.ErrorIs(t, s.UpdateRoomOnSend(ctx, "r1", "x", nil), errDisk)
	assert.ErrorIs(t, s.DeleteChatRoom(ctx, "r1"), errDisk)

	backend.failSet = false
	backend.failGet = true
	_, err = s.LoadRooms(ctx)
	assert.ErrorIs(t, err, errDisk)
	_, err = s.FindExistingRoomIdByContext(ctx, marketParams("a", "b"))
	assert.ErrorIs(t, err, errDisk)

	// 解析不出键时不需要读存储
	id, err := s.FindExistingRoomIdByContext(ctx, map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, "", id)
}

func TestEventsPublished(t *testing.T) {
	ctx := context.Background()
	broker := mq.NewChannelBroker()
	defer broker.Close()
	events, cancel := broker.Subscribe()
	defer cancel()

	s, _ := newTestStore(t, WithPublisher(broker))
	_, err := s.UpsertRoomOnOpen(ctx, request.UpsertRoomRequest{RoomId: "r1"})
	require.NoError(t, err)
	require.NoError(t, s.UpdateRoomOnReceive(ctx, "r1", "hi", nil))
	require.NoError(t, s.MarkRoomRead(ctx, "r1"))
	require.NoError(t, s.LinkRemoteRoom(ctx, "r1", 5))
	require.NoError(t, s.DeleteChatRoom(ctx, "r1"))

	var types []model.RoomEventType
	for i := 0; i < 5; i++ {
		ev := <-events
		assert.Equal(t, "r1", ev.RoomID)
		assert.NotEmpty(t, ev.ID)
		types = append(types, ev.Type)
	}
	assert.Equal(t, []model.RoomEventType{
		model.RoomCreated, model.RoomUpdated, model.RoomRead, model.RoomLinked, model.RoomDeleted,
	}, types)
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, model.RoomEvent) error { return errors.New("offline") }
func (failingPublisher) Close()                                         {}

func TestPublishFailureDoesNotFailMutation(t *testing.T) {
	s, _ := newTestStore(t, WithPublisher(failingPublisher{}))
	_, err := s.UpsertRoomOnOpen(context.Background(), request.UpsertRoomRequest{RoomId: "r1"})
	assert.NoError(t, err)
}

func TestFileBackedStoreSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	path := t.TempDir() + "/chat.json"
	backend, err := kv.NewFileStore(path)
	require.NoError(t, err)

	s := NewRoomStore(backend)
	_, err = s.UpsertRoomOnOpen(ctx, openReq("roomX", marketParams("s@x.com", "b@x.com")))
	require.NoError(t, err)

	reopened, err := kv.NewFileStore(path)
	require.NoError(t, err)
	id, err := NewRoomStore(reopened).ResolveRoomIdForOpen(ctx, marketParams("b@x.com", "s@x.com"), "roomY")
	require.NoError(t, err)
	assert.Equal(t, "roomX", id)
}

func TestContextLookupsAgreeWithOpenWhenSourceOnlyInOrigin(t *testing.T) {
	ctx := context.Background()
	s, backend := newTestStore(t)
	params := map[string]any{
		"postId":      "P1",
		"sellerEmail": "s@x.com",
		"buyerEmail":  "b@x.com",
	}

	opened, err := s.UpsertRoomOnOpen(ctx, request.UpsertRoomRequest{
		RoomId: "roomX",
		Origin: &model.RoomOrigin{Source: "market", Params: params},
	})
	require.NoError(t, err)
	// 板块被写进持久化的 params
	assert.Equal(t, "market", opened.Origin.Params["source"])
	_, hasSource := params["source"]
	assert.False(t, hasSource)

	id, err := s.ResolveRoomIdForOpen(ctx, opened.Origin.Params, "roomY")
	require.NoError(t, err)
	assert.Equal(t, "roomX", id)

	id, err = s.UpdateRoomOnSendSmart(ctx, request.SmartSendRequest{
		Source:       "market",
		OriginParams: params,
		Preview:      strPtr("hi"),
	})
	require.NoError(t, err)
	assert.Equal(t, "roomX", id)

	// 索引丢失后全量扫描也能命中
	require.NoError(t, backend.Remove(ctx, constants.THREAD_INDEX_KEY))
	id, err = s.FindExistingRoomIdByContext(ctx, thread.WithSource(params, "market"))
	require.NoError(t, err)
	assert.Equal(t, "roomX", id)

	id, err = s.DeleteByContext(ctx, thread.WithSource(params, "market"))
	require.NoError(t, err)
	assert.Equal(t, "roomX", id)

	rooms, err := s.LoadRooms(ctx)
	require.NoError(t, err)
	assert.Empty(t, rooms)
}
