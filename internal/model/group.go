package model

import "time"

// Group 群组主表
type Group struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(128);not null" json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Group) TableName() string { return "groups" }

// GroupMember 群组成员表
type GroupMember struct {
	ID       uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	GroupID  uint64    `gorm:"uniqueIndex:idx_group_user" json:"groupId"`
	UserID   uint64    `gorm:"uniqueIndex:idx_group_user;index" json:"userId"`
	IsAdmin  bool      `gorm:"not null;default:false" json:"isAdmin"`
	JoinedAt time.Time `json:"joinedAt"`
}

func (GroupMember) TableName() string { return "group_members" }
