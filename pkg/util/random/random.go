package random

import (
	"crypto/rand"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GetNowAndLenRandomString 生成带日期前缀的随机字符串
// 格式: YYMMDD + 字母数字混合
// 示例: 241230AbCdE1
func GetNowAndLenRandomString(length int) string {
	result := make([]byte, length)
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	charsetLen := big.NewInt(int64(len(charset)))
	for i := range result {
		n, err := rand.Int(rand.Reader, charsetLen)
		if err != nil {
			result[i] = 'x'
			continue
		}
		result[i] = charset[n.Int64()]
	}
	return time.Now().Format("060102") + string(result)
}

// ProposeRoomID 客户端侧提议的房间 ID：<板块>_<帖子ID>_<随机串>
// 同一会话多次提议会得到不同的 ID，由线程索引收敛到规范房间
// 板块或帖子为空时退化为 room_<uuid>
func ProposeRoomID(category, postID string) string {
	category = strings.TrimSpace(category)
	postID = strings.TrimSpace(postID)
	if category == "" || postID == "" {
		return "room_" + uuid.NewString()
	}
	return category + "_" + postID + "_" + GetNowAndLenRandomString(8)
}
