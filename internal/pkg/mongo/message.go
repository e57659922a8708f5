package mongo

import (
	"time"
)

// 消息状态只允许单向推进：sent -> delivered -> read
const (
	StatusSent      = "sent"
	StatusDelivered = "delivered"
	StatusRead      = "read"
)

// Message MongoDB 单聊消息明细模型
type Message struct {
	ID             string    `bson:"_id,omitempty" json:"id"`
	ConversationID uint64    `bson:"conversation_id" json:"conversationId"` // 关联 MySQL 的会话 ID
	SenderID       uint64    `bson:"sender_id" json:"senderId"`
	Content        string    `bson:"content" json:"content"`
	Status         string    `bson:"status" json:"status"`
	CreatedAt      time.Time `bson:"created_at" json:"createdAt"`
	ReadAt         time.Time `bson:"read_at,omitempty" json:"readAt,omitempty"`
}

// GroupMessage MongoDB 群聊消息模型
type GroupMessage struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	GroupID   uint64    `bson:"group_id" json:"groupId"` // 关联 MySQL 的群组 ID
	SenderID  uint64    `bson:"sender_id" json:"senderId"`
	Content   string    `bson:"content" json:"content"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// GroupMessageReceipt 群消息按 (消息, 读者) 维度的已读回执
type GroupMessageReceipt struct {
	MessageID string    `bson:"message_id" json:"messageId"`
	GroupID   uint64    `bson:"group_id" json:"groupId"`
	ReaderID  uint64    `bson:"reader_id" json:"readerId"`
	ReadAt    time.Time `bson:"read_at" json:"readAt"`
}
