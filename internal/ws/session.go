package ws

import (
	"Linkup/internal/api/config"
	"Linkup/internal/pkg/metrics"
	log "log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const defaultSendBuffer = 64

func sendBufferSize() int {
	if config.Cfg != nil && config.Cfg.WS.SendBufferSize > 0 {
		return config.Cfg.WS.SendBufferSize
	}
	return defaultSendBuffer
}

// Session 一条已认证的长连接，归属于单个用户。
// 写由独立的 WriteLoop 串行完成，其余 goroutine 只向 send 队列投递。
type Session struct {
	ID     string
	UserID uint64

	conn *websocket.Conn
	send chan []byte

	closeOnce sync.Once
	done      chan struct{}
}

func NewSession(userID uint64, conn *websocket.Conn) *Session {
	return &Session{
		ID:     uuid.New().String(),
		UserID: userID,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize()),
		done:   make(chan struct{}),
	}
}

// SendFrame 非阻塞入队，队列满时丢帧而不是拖慢其他连接
func (s *Session) SendFrame(buf []byte) bool {
	select {
	case <-s.done:
		return false
	default:
	}

	select {
	case s.send <- buf:
		return true
	default:
		metrics.EmitDropped.Inc()
		log.Warn("WS 发送队列已满，丢弃消息", "session_id", s.ID, "user_id", s.UserID)
		return false
	}
}

// Send 编码并入队单条事件
func (s *Session) Send(event string, data any) bool {
	buf, err := EncodeFrame(event, data)
	if err != nil {
		log.Error("WS 事件编码失败", "event", event, "err", err)
		return false
	}
	return s.SendFrame(buf)
}

// WriteLoop 串行写出队列中的帧，写失败即关闭会话
func (s *Session) WriteLoop(writeTimeout time.Duration) {
	for {
		select {
		case <-s.done:
			return
		case buf := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := s.conn.WriteMessage(websocket.TextMessage, buf); err != nil {
				log.Error("WS 推送失败", "session_id", s.ID, "user_id", s.UserID, "err", err)
				s.Close()
				return
			}
		}
	}
}

// Close 幂等关闭
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		if s.conn != nil {
			_ = s.conn.Close()
		}
	})
}

// Done 会话关闭信号
func (s *Session) Done() <-chan struct{} {
	return s.done
}
