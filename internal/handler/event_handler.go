package handler

import (
	"net/http"
	"time"

	"campus_chat/internal/infrastructure/mq"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	pongWait   = pingPeriod * 2
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 2048,
	// 桥接只监听本机，UI 壳的 origin 不固定
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// EventHandler 房间事件推送
type EventHandler struct {
	broker *mq.ChannelBroker
}

// NewEventHandler broker 为 nil 时（messageMode = none）不提供事件流
func NewEventHandler(broker *mq.ChannelBroker) *EventHandler {
	return &EventHandler{broker: broker}
}

// Enabled 是否有事件源
func (h *EventHandler) Enabled() bool {
	return h.broker != nil
}

// Stream 升级为 websocket 并持续推送房间事件
// GET /ws/rooms
func (h *EventHandler) Stream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zap.L().Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	events, cancel := h.broker.Subscribe()
	zap.L().Info("房间事件订阅者已连接", zap.String("remote", c.ClientIP()))

	// 读循环只处理 pong 和关闭帧，连接断开时取消订阅
	go func() {
		defer cancel()
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		cancel()
		_ = conn.Close()
		zap.L().Info("房间事件订阅者已断开", zap.String("remote", c.ClientIP()))
	}()

	for {
		select {
		case event, ok := <-events:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				zap.L().Warn("推送房间事件失败", zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
