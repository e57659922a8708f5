package model

import "time"

// Conversation 单聊会话主表
type Conversation struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	PeerKey   string    `gorm:"uniqueIndex;type:varchar(64)" json:"peerKey"` // uid1_uid2，小号在前，保证无序对唯一
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Conversation) TableName() string { return "conversations" }
