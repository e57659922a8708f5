package ws

import (
	"Linkup/internal/pkg/consts"
	"Linkup/internal/pkg/metrics"
	log "log/slog"
	"sync"
)

// Hub 进程内的连接登记簿：身份 → 活跃会话，以及房间成员表。
// 生命周期明确：认证成功时登记，断开时清除。多实例部署需要把
// 这份登记簿换成外部共享注册中心，当前版本不做跨进程协调。
type Hub struct {
	mu       sync.RWMutex
	sessions map[uint64]*Session
	rooms    map[string]map[*Session]struct{}
	joined   map[*Session]map[string]struct{}
}

func NewHub() *Hub {
	return &Hub{
		sessions: make(map[uint64]*Session),
		rooms:    make(map[string]map[*Session]struct{}),
		joined:   make(map[*Session]map[string]struct{}),
	}
}

// Register 登记会话并加入个人房间。同一身份后连者胜出，
// 被顶掉的旧会话不强制关闭，留在原房间内直至自然断开。
func (h *Hub) Register(s *Session) {
	h.mu.Lock()
	if prev, ok := h.sessions[s.UserID]; ok {
		log.Warn("同一身份重复连接，旧会话被顶替", "user_id", s.UserID, "prev_session", prev.ID)
	}
	h.sessions[s.UserID] = s
	h.joinRoomLocked(consts.UserRoom(s.UserID), s)
	metrics.SessionsOnline.Set(float64(len(h.sessions)))
	h.mu.Unlock()
}

// Unregister 清除会话的全部登记并关闭连接
func (h *Hub) Unregister(s *Session) {
	h.mu.Lock()
	if cur, ok := h.sessions[s.UserID]; ok && cur == s {
		delete(h.sessions, s.UserID)
	}
	for room := range h.joined[s] {
		h.leaveRoomLocked(room, s)
	}
	delete(h.joined, s)
	metrics.SessionsOnline.Set(float64(len(h.sessions)))
	h.mu.Unlock()

	s.Close()
}

func (h *Hub) SessionOf(userID uint64) (*Session, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s, ok := h.sessions[userID]
	return s, ok
}

func (h *Hub) IsOnline(userID uint64) bool {
	_, ok := h.SessionOf(userID)
	return ok
}

func (h *Hub) JoinRoom(room string, s *Session) {
	h.mu.Lock()
	h.joinRoomLocked(room, s)
	h.mu.Unlock()
}

func (h *Hub) LeaveRoom(room string, s *Session) {
	h.mu.Lock()
	h.leaveRoomLocked(room, s)
	h.mu.Unlock()
}

func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

func (h *Hub) joinRoomLocked(room string, s *Session) {
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Session]struct{})
	}
	h.rooms[room][s] = struct{}{}

	if h.joined[s] == nil {
		h.joined[s] = make(map[string]struct{})
	}
	h.joined[s][room] = struct{}{}
}

func (h *Hub) leaveRoomLocked(room string, s *Session) {
	if set, ok := h.rooms[room]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(h.rooms, room)
		}
	}
	if set, ok := h.joined[s]; ok {
		delete(set, room)
	}
}

// EmitToRoom 向房间内全部会话投递，except 非空时跳过该会话，返回投递数
func (h *Hub) EmitToRoom(room string, event string, data any, except *Session) int {
	buf, err := EncodeFrame(event, data)
	if err != nil {
		log.Error("WS 事件编码失败", "event", event, "err", err)
		return 0
	}

	h.mu.RLock()
	targets := make([]*Session, 0, len(h.rooms[room]))
	for s := range h.rooms[room] {
		if s != except {
			targets = append(targets, s)
		}
	}
	h.mu.RUnlock()

	delivered := 0
	for _, s := range targets {
		if s.SendFrame(buf) {
			delivered++
		}
	}
	return delivered
}

// EmitToUser 两级投递：先走个人房间，房间为空时按最近登记的会话直发。
// 每次发射都打上 precise / fallback 标记，降级不再是静默路径。
func (h *Hub) EmitToUser(userID uint64, event string, data any) bool {
	room := consts.UserRoom(userID)
	if h.RoomSize(room) > 0 {
		delivered := h.EmitToRoom(room, event, data, nil)
		metrics.EmitTotal.WithLabelValues(metrics.ScopeUser, metrics.PathPrecise).Inc()
		return delivered > 0
	}

	s, ok := h.SessionOf(userID)
	if !ok {
		return false
	}

	metrics.EmitTotal.WithLabelValues(metrics.ScopeUser, metrics.PathFallback).Inc()
	log.Warn("个人房间为空，降级为会话直发", "user_id", userID, "event", event)
	return s.Send(event, data)
}

// EmitToGroup 两级投递：群房间为空时降级为全局广播。
// 可能造成过量投递，这是可用性优先的取舍，按 fallback 标记暴露。
func (h *Hub) EmitToGroup(groupID uint64, event string, data any) int {
	room := consts.GroupRoom(groupID)
	if h.RoomSize(room) > 0 {
		delivered := h.EmitToRoom(room, event, data, nil)
		metrics.EmitTotal.WithLabelValues(metrics.ScopeGroup, metrics.PathPrecise).Inc()
		return delivered
	}

	metrics.EmitTotal.WithLabelValues(metrics.ScopeGroup, metrics.PathFallback).Inc()
	log.Warn("群房间无在线会话，降级为全局广播", "group_id", groupID, "event", event)
	return h.broadcastAll(event, data)
}

// BroadcastAll 尽力向所有已登记会话投递
func (h *Hub) BroadcastAll(event string, data any) {
	metrics.EmitTotal.WithLabelValues(metrics.ScopeAll, metrics.PathPrecise).Inc()
	h.broadcastAll(event, data)
}

func (h *Hub) broadcastAll(event string, data any) int {
	buf, err := EncodeFrame(event, data)
	if err != nil {
		log.Error("WS 事件编码失败", "event", event, "err", err)
		return 0
	}

	h.mu.RLock()
	targets := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, s := range targets {
		if s.SendFrame(buf) {
			delivered++
		}
	}
	return delivered
}
