package dto

import "time"

// PresenceDTO 在线状态查询响应与 presence-changed 推送载体
type PresenceDTO struct {
	UserID   uint64    `json:"user_id"`
	IsOnline bool      `json:"is_online"`
	LastSeen time.Time `json:"last_seen"`
}

// MessageAckDTO message-acknowledged 推送：回执给发送方
type MessageAckDTO struct {
	ConversationID uint64    `json:"conversation_id"`
	Content        string    `json:"content"`
	Timestamp      time.Time `json:"timestamp"`
	Status         string    `json:"status"`
}

// MessageDeliveredDTO message-delivered 推送：投递给接收方
type MessageDeliveredDTO struct {
	ConversationID uint64    `json:"conversation_id"`
	Content        string    `json:"content"`
	SenderID       uint64    `json:"sender_id"`
	Timestamp      time.Time `json:"timestamp"`
	Status         string    `json:"status"`
}

// ReadReceiptDTO messages-marked-read 推送
type ReadReceiptDTO struct {
	ConversationID uint64 `json:"conversation_id"`
	ReaderID       uint64 `json:"reader_id"`
}

// TypingDTO typing-started / typing-stopped 推送，单聊带会话 ID，群聊带群 ID
type TypingDTO struct {
	ConversationID uint64 `json:"conversation_id,omitempty"`
	GroupID        uint64 `json:"group_id,omitempty"`
	UserID         uint64 `json:"user_id"`
}

// GroupMembershipDTO group-membership-changed 推送
type GroupMembershipDTO struct {
	GroupID uint64 `json:"group_id"`
	UserID  uint64 `json:"user_id"`
	Action  string `json:"action"` // joined / left
}

// GroupMessageDTO group-message-broadcast 推送
type GroupMessageDTO struct {
	GroupID   uint64    `json:"group_id"`
	MessageID string    `json:"message_id"`
	SenderID  uint64    `json:"sender_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// UnreadCountDTO unread-count-changed 推送
type UnreadCountDTO struct {
	ChatID        uint64 `json:"chat_id"`
	IsGroup       bool   `json:"is_group"`
	UnreadCount   uint64 `json:"unread_count"`
	LastMessageID string `json:"last_message_id,omitempty"`
}

// WSErrorDTO error 推送：只回给出错的那条连接
type WSErrorDTO struct {
	Event   string `json:"event,omitempty"`
	Message string `json:"message"`
}

// DirectSendReq 上行 direct-send
type DirectSendReq struct {
	ConversationID uint64 `json:"conversation_id" binding:"required"`
	Content        string `json:"content" binding:"required"`
}

// DirectReadReq 上行 direct-read
type DirectReadReq struct {
	ConversationID uint64 `json:"conversation_id" binding:"required"`
}

// DirectTypingReq 上行 direct-typing-start / direct-typing-stop
type DirectTypingReq struct {
	ConversationID uint64 `json:"conversation_id" binding:"required"`
}

// GroupTargetReq 上行 group-join / group-leave / group-typing-*
type GroupTargetReq struct {
	GroupID uint64 `json:"group_id" binding:"required"`
}

// DirectMessageEventReq 持久化层落库后回调：单聊消息事件
type DirectMessageEventReq struct {
	ConversationID uint64    `json:"conversation_id" binding:"required"`
	SenderID       uint64    `json:"sender_id" binding:"required"`
	RecipientID    uint64    `json:"recipient_id" binding:"required"`
	MessageID      string    `json:"message_id" binding:"required"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// GroupMessageEventReq 持久化层落库后回调：群聊消息事件
type GroupMessageEventReq struct {
	GroupID   uint64    `json:"group_id" binding:"required"`
	SenderID  uint64    `json:"sender_id" binding:"required"`
	MessageID string    `json:"message_id" binding:"required"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
