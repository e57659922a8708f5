package model

import "time"

// UnreadCounter 按 (用户, 会话/群组) 维度的未读计数。
// 只允许原子自增与归零，归零只能由计数归属的用户触发。
type UnreadCounter struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        uint64    `gorm:"uniqueIndex:idx_user_chat" json:"userId"`
	ChatID        uint64    `gorm:"uniqueIndex:idx_user_chat" json:"chatId"`
	IsGroup       bool      `gorm:"uniqueIndex:idx_user_chat" json:"isGroup"`
	UnreadCount   uint64    `gorm:"not null;default:0" json:"unreadCount"`
	LastMessageID string    `gorm:"type:varchar(64)" json:"lastMessageId"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (UnreadCounter) TableName() string { return "unread_counters" }
