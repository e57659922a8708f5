package service

import (
	"Linkup/internal/ws"
)

// Broadcaster 各服务对推送层的依赖面，由 *ws.Hub 实现
type Broadcaster interface {
	EmitToUser(userID uint64, event string, data any) bool
	EmitToGroup(groupID uint64, event string, data any) int
	EmitToRoom(room string, event string, data any, except *ws.Session) int
	BroadcastAll(event string, data any)
	IsOnline(userID uint64) bool
	JoinRoom(room string, s *ws.Session)
	LeaveRoom(room string, s *ws.Session)
}
