package model

import "time"

// Presence 用户在线状态表，仅由 Presence Tracker 在连接/断开时写入
type Presence struct {
	UserID    uint64    `gorm:"primaryKey" json:"userId"`
	IsOnline  bool      `gorm:"not null;default:false" json:"isOnline"`
	LastSeen  time.Time `gorm:"index" json:"lastSeen"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Presence) TableName() string { return "presences" }
