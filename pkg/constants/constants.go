package constants

const (
	CHANNEL_SIZE        = 100 // 事件通道大小
	PREVIEW_MAX_RUNES   = 80  // 会话列表预览最大字符数（按 rune 计）
	REMOTE_TIMEOUT_SECS = 10  // 远端网关默认超时（秒）
	KV_TABLE_NAME       = "kv_entry"
	// 新建房间的默认预览文案
	DEFAULT_PLACEHOLDER = "대화를 시작해보세요"
)

// 房间相关存储键（实际键名会加上 storeConfig.keyPrefix 前缀）
const (
	ROOM_LIST_KEY    = "chat_rooms"
	THREAD_INDEX_KEY = "chat_thread_index"
	REMOTE_LINK_KEY  = "chat_remote_links"
)
